package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// Client issues Admin GraphQL calls against a single shop, retrying on
// rate-limit and server-error responses. All calls are synchronous; the
// client self-throttles with a fixed delay after every call so batched
// mutations respect the shop's cost budget.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Shopify GraphQL client. A nil httpClient gets a
// default one with the configured timeout.
func NewClient(cfg Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout()}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Config returns the client configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Execute posts a GraphQL query and decodes the data payload into out.
// Top-level GraphQL errors and non-2xx responses are returned as errors;
// user errors inside mutation payloads are left to the caller.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any, out any) error {
	endpoint, err := c.endpoint()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(graphQLRequest{
		Query:     strings.TrimSpace(query),
		Variables: variables,
	})
	if err != nil {
		return err
	}

	res, err := c.postWithRetries(ctx, endpoint, payload)
	if err != nil {
		return err
	}

	// Fixed self-throttle independent of server-driven backoff.
	if err := sleepWithContext(ctx, c.cfg.InterCallDelay()); err != nil {
		return err
	}

	if res.statusCode != http.StatusOK {
		return newRequestError(res.statusCode, res.status, res.body)
	}

	var envelope graphQLEnvelope
	if err := json.Unmarshal(res.body, &envelope); err != nil {
		return fmt.Errorf("decode graphql response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("shopify graphql errors: %s", formatGraphQLErrors(envelope.Errors))
	}
	if out == nil {
		return nil
	}
	if len(envelope.Data) == 0 {
		return errors.New("shopify graphql response missing data")
	}
	return json.Unmarshal(envelope.Data, out)
}

type httpResult struct {
	statusCode int
	status     string
	header     http.Header
	body       []byte
}

// postWithRetries retries on 429 and 5xx with exponential backoff, honoring
// a Retry-After hint (floored at one second). After exhausting retries the
// last failing result is returned, not an error; the caller decides how to
// interpret a persistent failure.
func (c *Client) postWithRetries(ctx context.Context, endpoint string, payload []byte) (*httpResult, error) {
	attempt := 0
	for {
		res, err := c.post(ctx, endpoint, payload)
		if err != nil {
			return nil, err
		}

		c.logger.Debug("shopify response",
			zap.Int("status", res.statusCode),
			zap.String("cost", res.header.Get("X-Request-Cost")),
			zap.String("call_limit", res.header.Get("X-Shopify-Shop-Api-Call-Limit")),
		)

		if !isRetryableStatus(res.statusCode) {
			return res, nil
		}
		if attempt >= c.cfg.MaxRetries {
			return res, nil
		}

		wait := c.retryWait(res.header.Get("Retry-After"), attempt)
		c.logger.Warn("shopify rate limited, retrying",
			zap.Int("status", res.statusCode),
			zap.Duration("wait", wait),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", c.cfg.MaxRetries),
		)
		if err := sleepWithContext(ctx, wait); err != nil {
			return nil, err
		}
		attempt++
	}
}

func (c *Client) post(ctx context.Context, endpoint string, payload []byte) (*httpResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.cfg.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &httpResult{
		statusCode: resp.StatusCode,
		status:     resp.Status,
		header:     resp.Header,
		body:       body,
	}, nil
}

func (c *Client) endpoint() (string, error) {
	domain := strings.TrimSpace(c.cfg.ShopDomain)
	if domain == "" {
		return "", errors.New("shopify shop domain is empty")
	}
	if !strings.HasPrefix(domain, "http://") && !strings.HasPrefix(domain, "https://") {
		domain = "https://" + domain
	}
	domain = strings.TrimRight(domain, "/")
	if strings.TrimSpace(c.cfg.APIVersion) == "" {
		return "", errors.New("shopify api version is empty")
	}
	return domain + "/admin/api/" + c.cfg.APIVersion + "/graphql.json", nil
}

// retryWait computes the backoff for the given attempt. A parseable
// Retry-After wins, floored at one second. An unparseable hint falls back
// to a doubled backoff curve, matching how a malformed server hint is
// treated as "wait a bit longer than usual".
func (c *Client) retryWait(retryAfter string, attempt int) time.Duration {
	factor := c.cfg.BackoffFactor
	if factor <= 0 {
		factor = 1.5
	}
	base := c.cfg.BackoffBase()

	if retryAfter != "" {
		if secs, err := strconv.ParseFloat(strings.TrimSpace(retryAfter), 64); err == nil {
			wait := time.Duration(secs * float64(time.Second))
			if wait < time.Second {
				wait = time.Second
			}
			return wait
		}
		return time.Duration(2 * float64(base) * math.Pow(factor, float64(attempt)))
	}
	return time.Duration(float64(base) * math.Pow(factor, float64(attempt)))
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || (statusCode >= 500 && statusCode < 600)
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
