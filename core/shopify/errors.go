package shopify

import (
	"fmt"
	"strings"
)

// bodyPreviewLimit caps how much of a failing response body is kept for
// diagnostics.
const bodyPreviewLimit = 800

// RequestError is returned when a request ultimately fails at the HTTP
// level, either because the status is not retryable or because all retries
// were exhausted. It carries the status and a truncated body preview.
type RequestError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *RequestError) Error() string {
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("shopify request failed: %s", e.Status)
	}
	return fmt.Sprintf("shopify request failed: %s: %s", e.Status, e.Body)
}

func newRequestError(statusCode int, status string, body []byte) error {
	preview := strings.TrimSpace(string(body))
	if len(preview) > bodyPreviewLimit {
		preview = preview[:bodyPreviewLimit]
	}
	return &RequestError{
		StatusCode: statusCode,
		Status:     status,
		Body:       preview,
	}
}

// GraphQLError is a top-level error entry in a GraphQL response envelope.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// UserError is a field/message error returned inside mutation payloads.
// A non-empty user error list means the mutation did not (fully) apply.
type UserError struct {
	Code    string   `json:"code,omitempty"`
	Field   []string `json:"field,omitempty"`
	Message string   `json:"message"`
}

// FormatUserErrors renders a user error list for logging.
func FormatUserErrors(errs []UserError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		msg := strings.TrimSpace(e.Message)
		if msg == "" {
			continue
		}
		if len(e.Field) > 0 {
			msg = fmt.Sprintf("%s: %s", strings.Join(e.Field, "."), msg)
		}
		parts = append(parts, msg)
	}
	if len(parts) == 0 {
		return "unknown user error"
	}
	return strings.Join(parts, "; ")
}

func formatGraphQLErrors(errs []GraphQLError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		msg := strings.TrimSpace(e.Message)
		if msg == "" {
			continue
		}
		if len(e.Path) > 0 {
			msg = fmt.Sprintf("%s (path: %v)", msg, e.Path)
		}
		parts = append(parts, msg)
	}
	if len(parts) == 0 {
		return "unknown graphql error"
	}
	return strings.Join(parts, "; ")
}
