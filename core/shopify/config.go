package shopify

import "time"

// Config holds configuration for the Shopify Admin GraphQL client.
type Config struct {
	// ShopDomain is the myshopify domain, e.g. "example.myshopify.com".
	// A scheme prefix is optional; https is assumed when absent.
	ShopDomain string `mapstructure:"shop_domain" default:""`
	// AccessToken is the Admin API access token (shpat_...).
	AccessToken string `mapstructure:"access_token" default:""`
	// APIVersion is the Admin GraphQL API version.
	APIVersion string `mapstructure:"api_version" default:"2025-07"`
	// TimeoutSeconds is the HTTP request timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// MaxRetries is the maximum number of retries on 429/5xx responses.
	MaxRetries int `mapstructure:"max_retries" default:"5"`
	// BackoffBaseMS is the base backoff wait in milliseconds.
	BackoffBaseMS int `mapstructure:"backoff_base_ms" default:"1000"`
	// BackoffFactor is the exponential backoff multiplier.
	BackoffFactor float64 `mapstructure:"backoff_factor" default:"1.5"`
	// InterCallDelayMS is the fixed self-throttle delay in milliseconds
	// inserted after every successful call.
	InterCallDelayMS int `mapstructure:"inter_call_delay_ms" default:"200"`
	// PageSize is the page size for cursor-paginated queries (max 250).
	PageSize int `mapstructure:"page_size" default:"250"`
	// BatchSize is the number of inventory quantities per mutation call.
	BatchSize int `mapstructure:"batch_size" default:"250"`
}

// Timeout returns the HTTP timeout as a duration.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// BackoffBase returns the base backoff wait as a duration.
func (c Config) BackoffBase() time.Duration {
	if c.BackoffBaseMS <= 0 {
		return time.Second
	}
	return time.Duration(c.BackoffBaseMS) * time.Millisecond
}

// InterCallDelay returns the fixed post-call delay as a duration.
func (c Config) InterCallDelay() time.Duration {
	if c.InterCallDelayMS < 0 {
		return 0
	}
	return time.Duration(c.InterCallDelayMS) * time.Millisecond
}
