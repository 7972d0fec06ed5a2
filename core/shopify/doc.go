// Package shopify provides the transport layer for the Shopify Admin
// GraphQL API.
//
// The client wraps every call with a retry loop for 429 and 5xx responses,
// backing off exponentially (base 1s, factor 1.5 by default) unless the
// server supplies a Retry-After hint, which is honored with a one second
// floor. After the retry budget is exhausted the last failing response is
// surfaced as a *RequestError carrying the status and a truncated body
// preview; callers count it as a failed unit of work and continue.
//
// A fixed delay (200ms by default) follows every call so that sequential
// batch mutations stay inside the shop's cost budget without relying on
// server pushback alone.
//
// # Usage
//
//	client := shopify.NewClient(cfg, nil, log)
//	var data productsQueryData
//	err := client.Execute(ctx, query, map[string]any{"first": 250}, &data)
package shopify
