package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrorKind is the closed set of provider failure categories
type ErrorKind string

const (
	KindAuth          ErrorKind = "auth_error"
	KindQuota         ErrorKind = "quota_error"
	KindRateLimited   ErrorKind = "rate_limited"
	KindTimeout       ErrorKind = "timeout"
	KindTransient     ErrorKind = "transient"
	KindEmptyResponse ErrorKind = "empty_response"
)

// Terminal reports whether a failure of this kind rules out further
// attempts against the same provider.
func (k ErrorKind) Terminal() bool {
	switch k {
	case KindAuth, KindQuota, KindRateLimited:
		return true
	case KindTimeout, KindTransient, KindEmptyResponse:
		return false
	default:
		return false
	}
}

func (k ErrorKind) String() string {
	return string(k)
}

// Classify maps a non-2xx response to an ErrorKind.
// Status codes and error-body tokens are consulted first; the free-text
// message is only matched when neither is conclusive.
func Classify(statusCode int, body []byte) ErrorKind {
	if kind, ok := classifyStatus(statusCode); ok {
		return kind
	}

	apiErr := parseAPIError(body)
	if apiErr != nil {
		if kind, ok := classifyTokens(apiErr.Type, fmt.Sprint(apiErr.Code)); ok {
			return kind
		}
		if kind, ok := classifyMessage(apiErr.Message); ok {
			return kind
		}
	}

	if kind, ok := classifyMessage(string(body)); ok {
		return kind
	}
	return KindTransient
}

// ClassifyTransportError maps an error raised before any HTTP status was
// received (dial failures, resets, deadlines).
func ClassifyTransportError(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	if kind, ok := classifyMessage(err.Error()); ok {
		return kind
	}
	return KindTransient
}

// ErrorMessage extracts a human readable message from an error body,
// falling back to the HTTP status text.
func ErrorMessage(statusCode int, body []byte) string {
	if apiErr := parseAPIError(body); apiErr != nil && apiErr.Message != "" {
		return apiErr.Message
	}
	if text := http.StatusText(statusCode); text != "" {
		return fmt.Sprintf("HTTP %d: %s", statusCode, text)
	}
	return fmt.Sprintf("HTTP %d", statusCode)
}

func classifyStatus(statusCode int) (ErrorKind, bool) {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth, true
	case http.StatusPaymentRequired:
		return KindQuota, true
	case http.StatusTooManyRequests:
		return KindRateLimited, true
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return KindTimeout, true
	}
	return "", false
}

func classifyTokens(tokens ...string) (ErrorKind, bool) {
	for _, raw := range tokens {
		token := strings.ToLower(raw)
		switch {
		case token == "" || token == "<nil>":
			continue
		case strings.Contains(token, "invalid_api_key"),
			strings.Contains(token, "authentication"),
			strings.Contains(token, "unauthorized"):
			return KindAuth, true
		case strings.Contains(token, "insufficient_quota"),
			strings.Contains(token, "billing"):
			return KindQuota, true
		case strings.Contains(token, "rate_limit"):
			return KindRateLimited, true
		case strings.Contains(token, "timeout"):
			return KindTimeout, true
		}
	}
	return "", false
}

func classifyMessage(msg string) (ErrorKind, bool) {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "invalid api key"):
		return KindAuth, true
	case strings.Contains(lower, "quota"):
		return KindQuota, true
	case strings.Contains(lower, "rate limit"):
		return KindRateLimited, true
	}
	return "", false
}

func parseAPIError(body []byte) *openai.APIError {
	if len(body) == 0 {
		return nil
	}
	var resp openai.ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil
	}
	return resp.Error
}
