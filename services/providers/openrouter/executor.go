package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/cybe4sent1nel/CODERIPPER-sub001/services/providers"
)

const (
	DefaultBaseURL  = "https://openrouter.ai/api/v1"
	DefaultAppURL   = "https://coderipper.vercel.app"
	DefaultAppTitle = "CodeRipper AI Editor"

	defaultTimeout = 30 * time.Second

	// Fixed sampling parameters sent with every call
	topP             = 0.9
	frequencyPenalty = 0.0
	presencePenalty  = 0.0

	maxResponseBytes = 4 << 20
)

// Config holds gateway connection settings
type Config struct {
	// APIKey for authentication
	APIKey string

	// BaseURL for the API (optional override)
	BaseURL string

	// AppURL is sent as HTTP-Referer for gateway attribution
	AppURL string

	// AppTitle is sent as X-Title
	AppTitle string

	// Timeout is the default per-attempt bound when a Call carries none
	Timeout time.Duration
}

// Executor performs single chat completion attempts against an
// OpenAI-compatible gateway. It never retries.
type Executor struct {
	config     Config
	httpClient *http.Client
}

// NewExecutor creates a new gateway executor
func NewExecutor(config Config, httpClient *http.Client) *Executor {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.AppURL == "" {
		config.AppURL = DefaultAppURL
	}
	if config.AppTitle == "" {
		config.AppTitle = DefaultAppTitle
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if httpClient == nil {
		// deadlines come from the per-call context
		httpClient = &http.Client{}
	}

	return &Executor{
		config:     config,
		httpClient: httpClient,
	}
}

var _ providers.Executor = (*Executor)(nil)

// Execute performs exactly one POST to /chat/completions
func (e *Executor) Execute(ctx context.Context, call providers.Call) providers.Outcome {
	startTime := time.Now()

	timeout := call.Timeout
	if timeout <= 0 {
		timeout = e.config.Timeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reqBody, err := json.Marshal(buildChatRequest(call))
	if err != nil {
		return e.fail(call, providers.KindTransient, "failed to marshal request", 0, err)
	}

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, e.config.BaseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return e.fail(call, providers.KindTransient, "failed to create request", 0, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+e.config.APIKey)
	httpReq.Header.Set("HTTP-Referer", e.config.AppURL)
	httpReq.Header.Set("X-Title", e.config.AppTitle)

	httpResp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return e.transportFailure(call, callCtx, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return e.transportFailure(call, callCtx, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return e.handleErrorResponse(call, httpResp.StatusCode, respBody)
	}

	var chatResp openai.ChatCompletionResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return e.fail(call, providers.KindTransient, "failed to decode response", httpResp.StatusCode, err)
	}

	if len(chatResp.Choices) == 0 {
		return e.fail(call, providers.KindEmptyResponse, "response contained no choices", httpResp.StatusCode, nil)
	}
	content := chatResp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return e.fail(call, providers.KindEmptyResponse, "empty response from model", httpResp.StatusCode, nil)
	}

	return providers.Success(call.Provider, content, time.Since(startTime))
}

// handleErrorResponse classifies a non-2xx gateway response
func (e *Executor) handleErrorResponse(call providers.Call, statusCode int, body []byte) providers.Outcome {
	kind := providers.Classify(statusCode, body)
	return e.fail(call, kind, providers.ErrorMessage(statusCode, body), statusCode, nil)
}

func (e *Executor) transportFailure(call providers.Call, callCtx context.Context, err error) providers.Outcome {
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return e.fail(call, providers.KindTimeout, "request timed out", 0, context.DeadlineExceeded)
	}
	if errors.Is(callCtx.Err(), context.Canceled) {
		return e.fail(call, providers.KindTransient, "request canceled", 0, context.Canceled)
	}
	return e.fail(call, providers.ClassifyTransportError(err), "HTTP request failed", 0, err)
}

func (e *Executor) fail(call providers.Call, kind providers.ErrorKind, message string, statusCode int, cause error) providers.Outcome {
	return providers.Failure(providers.NewProviderError(call.Provider, kind, message, statusCode, cause))
}

// chatRequest is the gateway request body. The penalty fields are always
// serialised, unlike openai.ChatCompletionRequest which omits zero values.
type chatRequest struct {
	Model            string                         `json:"model"`
	Messages         []openai.ChatCompletionMessage `json:"messages"`
	MaxTokens        int                            `json:"max_tokens"`
	Temperature      float64                        `json:"temperature"`
	TopP             float64                        `json:"top_p"`
	FrequencyPenalty float64                        `json:"frequency_penalty"`
	PresencePenalty  float64                        `json:"presence_penalty"`
}

func buildChatRequest(call providers.Call) chatRequest {
	return chatRequest{
		Model: call.Provider,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: call.System},
			{Role: openai.ChatMessageRoleUser, Content: call.User},
		},
		MaxTokens:        call.MaxTokens,
		Temperature:      call.Temperature,
		TopP:             topP,
		FrequencyPenalty: frequencyPenalty,
		PresencePenalty:  presencePenalty,
	}
}
