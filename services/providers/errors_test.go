package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
)

func TestErrorKind_Terminal(t *testing.T) {
	terminal := map[ErrorKind]bool{
		KindAuth:          true,
		KindQuota:         true,
		KindRateLimited:   true,
		KindTimeout:       false,
		KindTransient:     false,
		KindEmptyResponse: false,
	}

	for kind, want := range terminal {
		if got := kind.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", kind, got, want)
		}
	}
}

// Each fixture mirrors an error shape seen from the gateway or an upstream vendor.
func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   ErrorKind
	}{
		// status codes
		{"401 unauthorized", 401, `{"error":{"message":"No auth credentials found","code":401}}`, KindAuth},
		{"403 forbidden", 403, `{"error":{"message":"Forbidden","code":403}}`, KindAuth},
		{"402 credits", 402, `{"error":{"message":"Insufficient credits","code":402}}`, KindQuota},
		{"429 too many requests", 429, `{"error":{"message":"slow down","code":429}}`, KindRateLimited},
		{"408 request timeout", 408, ``, KindTimeout},
		{"504 gateway timeout", 504, `<html>Gateway Timeout</html>`, KindTimeout},

		// structured body tokens
		{"openai invalid_api_key code", 400, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`, KindAuth},
		{"anthropic authentication_error type", 400, `{"error":{"message":"bad key","type":"authentication_error"}}`, KindAuth},
		{"openai insufficient_quota", 400, `{"error":{"message":"You exceeded your current plan","type":"insufficient_quota","code":"insufficient_quota"}}`, KindQuota},
		{"rate_limit_exceeded code", 400, `{"error":{"message":"Too many","type":"requests","code":"rate_limit_exceeded"}}`, KindRateLimited},

		// free-text baseline
		{"invalid api key message", 400, `{"error":{"message":"Invalid API key"}}`, KindAuth},
		{"quota message", 500, `{"error":{"message":"Monthly quota exhausted"}}`, KindQuota},
		{"rate limit message", 503, `{"error":{"message":"Upstream Rate Limit reached"}}`, KindRateLimited},
		{"unstructured body with quota", 400, `quota exceeded for model`, KindQuota},

		// everything else
		{"500 internal", 500, `{"error":{"message":"Internal Server Error","code":500}}`, KindTransient},
		{"502 bad gateway", 502, ``, KindTransient},
		{"503 overloaded", 503, `{"error":{"message":"Overloaded","type":"overloaded_error"}}`, KindTransient},
		{"400 bad request", 400, `{"error":{"message":"model not found","code":400}}`, KindTransient},
		{"garbage body", 500, `not json`, KindTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.status, []byte(tt.body)); got != tt.want {
				t.Errorf("Classify(%d, %s) = %s, want %s", tt.status, tt.body, got, tt.want)
			}
		})
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestClassifyTransportError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), KindTimeout},
		{"net timeout", &net.OpError{Op: "dial", Err: timeoutErr{}}, KindTimeout},
		{"connection refused", errors.New("dial tcp 127.0.0.1:1: connect: connection refused"), KindTransient},
		{"canceled", context.Canceled, KindTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyTransportError(tt.err); got != tt.want {
				t.Errorf("ClassifyTransportError() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	if got := ErrorMessage(401, []byte(`{"error":{"message":"No auth credentials found"}}`)); got != "No auth credentials found" {
		t.Errorf("ErrorMessage() = %q", got)
	}
	if got := ErrorMessage(502, []byte(`<html>`)); got != "HTTP 502: Bad Gateway" {
		t.Errorf("ErrorMessage() = %q", got)
	}
}
