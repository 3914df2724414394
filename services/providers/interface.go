package providers

import (
	"context"
	"time"
)

// Executor performs a single completion attempt against one provider.
// Implementations never retry and never panic: every call yields exactly one Outcome.
type Executor interface {
	Execute(ctx context.Context, call Call) Outcome
}

// ExecutorFunc adapts an ordinary function to the Executor interface
type ExecutorFunc func(ctx context.Context, call Call) Outcome

// Execute calls f(ctx, call)
func (f ExecutorFunc) Execute(ctx context.Context, call Call) Outcome {
	return f(ctx, call)
}

// Call is one request to one provider
type Call struct {
	// Provider is the model id to address, e.g. "openai/gpt-4o-mini"
	Provider string

	// System and User are the rendered prompt messages
	System string
	User   string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature controls randomness
	Temperature float64

	// Timeout bounds this single attempt; zero means the executor default
	Timeout time.Duration
}

// Response is a successful completion
type Response struct {
	Content  string
	Provider string
	Latency  time.Duration
}

// Outcome holds either a Response or a classified error, never both
type Outcome struct {
	Response *Response
	Err      *ProviderError
}

// OK reports whether the attempt produced a usable response
func (o Outcome) OK() bool {
	return o.Err == nil && o.Response != nil
}

// Success builds a successful Outcome
func Success(provider, content string, latency time.Duration) Outcome {
	return Outcome{Response: &Response{Content: content, Provider: provider, Latency: latency}}
}

// Failure builds a failed Outcome
func Failure(err *ProviderError) Outcome {
	return Outcome{Err: err}
}

// ProviderError represents an error from a provider
type ProviderError struct {
	// Provider that generated the error
	Provider string

	// Kind is the classified failure category
	Kind ErrorKind

	// Message is the error message
	Message string

	// StatusCode is the HTTP status code (if applicable)
	StatusCode int

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap implements error unwrapping
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether another attempt against the same provider may succeed
func (e *ProviderError) Retryable() bool {
	return !e.Kind.Terminal()
}

// NewProviderError creates a new provider error
func NewProviderError(provider string, kind ErrorKind, message string, statusCode int, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Kind:       kind,
		Message:    message,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if provErr, ok := err.(*ProviderError); ok {
		return provErr.Retryable()
	}
	return false
}
