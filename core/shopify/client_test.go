package shopify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(url string) Config {
	return Config{
		ShopDomain:       url,
		AccessToken:      "shpat_test",
		APIVersion:       "2025-07",
		MaxRetries:       3,
		BackoffBaseMS:    1,
		BackoffFactor:    1.5,
		InterCallDelayMS: 0,
	}
}

func TestExecute_DecodesData(t *testing.T) {
	var gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Shopify-Access-Token")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"shop":{"name":"testshop"}}}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil, nil)

	var data struct {
		Shop struct {
			Name string `json:"name"`
		} `json:"shop"`
	}
	err := client.Execute(context.Background(), `query { shop { name } }`, nil, &data)
	require.NoError(t, err)
	assert.Equal(t, "testshop", data.Shop.Name)
	assert.Equal(t, "shpat_test", gotToken)
}

func TestExecute_RetriesOnThrottle(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"ok":true}}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil, nil)

	var data struct {
		OK bool `json:"ok"`
	}
	err := client.Execute(context.Background(), `query { ok }`, nil, &data)
	require.NoError(t, err)
	assert.True(t, data.OK)
	assert.Equal(t, 3, calls)
}

func TestExecute_ExhaustedRetriesReturnLastResponse(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`upstream unavailable`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.MaxRetries = 2
	client := NewClient(cfg, nil, nil)

	err := client.Execute(context.Background(), `query { ok }`, nil, nil)
	require.Error(t, err)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusServiceUnavailable, reqErr.StatusCode)
	assert.Contains(t, reqErr.Body, "upstream unavailable")
	// Initial attempt plus two retries.
	assert.Equal(t, 3, calls)
}

func TestExecute_NonRetryableStatusFailsImmediately(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":"invalid token"}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil, nil)

	err := client.Execute(context.Background(), `query { ok }`, nil, nil)
	require.Error(t, err)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusUnauthorized, reqErr.StatusCode)
	assert.Equal(t, 1, calls)
}

func TestExecute_TopLevelGraphQLErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[{"message":"Field 'foo' doesn't exist"}]}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil, nil)

	err := client.Execute(context.Background(), `query { foo }`, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Field 'foo' doesn't exist")
}

func TestRetryWait(t *testing.T) {
	cfg := Config{BackoffBaseMS: 1000, BackoffFactor: 1.5}
	client := NewClient(cfg, nil, nil)

	tests := []struct {
		name       string
		retryAfter string
		attempt    int
		want       time.Duration
	}{
		{name: "hint respected", retryAfter: "3", attempt: 0, want: 3 * time.Second},
		{name: "hint floored at one second", retryAfter: "0.2", attempt: 0, want: time.Second},
		{name: "no hint first attempt", retryAfter: "", attempt: 0, want: time.Second},
		{name: "no hint third attempt", retryAfter: "", attempt: 2, want: 2250 * time.Millisecond},
		{name: "unparseable hint", retryAfter: "soon", attempt: 0, want: 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, client.retryWait(tt.retryAfter, tt.attempt))
		})
	}
}

func TestEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		domain  string
		want    string
		wantErr bool
	}{
		{
			name:   "bare domain gets https",
			domain: "example.myshopify.com",
			want:   "https://example.myshopify.com/admin/api/2025-07/graphql.json",
		},
		{
			name:   "explicit scheme kept",
			domain: "http://localhost:8080/",
			want:   "http://localhost:8080/admin/api/2025-07/graphql.json",
		},
		{
			name:    "empty domain",
			domain:  "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(Config{ShopDomain: tt.domain, APIVersion: "2025-07"}, nil, nil)
			got, err := client.endpoint()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
