package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cybe4sent1nel/CODERIPPER-sub001/middleware"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/models"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/services"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/services/inference"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/services/providers"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/services/routing"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockAIService is a mock implementation of AIService
type MockAIService struct {
	mock.Mock
}

func (m *MockAIService) Process(ctx context.Context, req inference.Request) (*inference.Result, error) {
	args := m.Called(ctx, req)
	if res := args.Get(0); res != nil {
		return res.(*inference.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAIService) Models() inference.ModelsResponse {
	return m.Called().Get(0).(inference.ModelsResponse)
}

func (m *MockAIService) GetExecution(ctx context.Context, id uuid.UUID) (*models.ExecutionRecord, error) {
	args := m.Called(ctx, id)
	if rec := args.Get(0); rec != nil {
		return rec.(*models.ExecutionRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAIService) RecentExecutions(ctx context.Context, limit int) ([]*models.ExecutionRecord, error) {
	args := m.Called(ctx, limit)
	if recs := args.Get(0); recs != nil {
		return recs.([]*models.ExecutionRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func newAIRouter(svc AIService) http.Handler {
	h := NewAIHandler(svc, zap.NewNop())
	r := chi.NewRouter()
	r.Use(middleware.RequestContext)
	r.Get("/api/v1/ai", h.HandleModels)
	r.Post("/api/v1/ai", h.HandleExecute)
	r.Get("/api/v1/ai/models", h.HandleModels)
	r.Get("/api/v1/ai/executions", h.HandleListExecutions)
	r.Get("/api/v1/ai/executions/{id}", h.HandleGetExecution)
	r.MethodNotAllowed(h.HandleMethodNotAllowed)
	return r
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func testModels() inference.ModelsResponse {
	return inference.ModelsResponse{
		Models: []providers.ProviderSpec{
			providers.NewProviderSpec("openai/gpt-4o-mini", 1),
			providers.NewProviderSpec("anthropic/claude-3-haiku", 2),
		},
		Configured: true,
	}
}

func TestHandleExecute_Success(t *testing.T) {
	svc := new(MockAIService)
	executionID := uuid.New()

	svc.On("Process", mock.Anything, mock.MatchedBy(func(req inference.Request) bool {
		return req.Action == "explain" && req.Code == "x := 1" && req.Language == "go" && req.RequestID != ""
	})).Return(&inference.Result{
		ExecutionID: executionID,
		ExecutionResult: routing.ExecutionResult{
			Success:         true,
			Response:        "assigns 1",
			Model:           "anthropic/claude-3-haiku",
			FallbackUsed:    true,
			Attempts:        2,
			ExecutionTimeMs: 321,
		},
	}, nil)

	w := doRequest(t, newAIRouter(svc), http.MethodPost, "/api/v1/ai",
		`{"action":"explain","code":"x := 1","language":"go"}`)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "assigns 1", body["response"])
	assert.Equal(t, "anthropic/claude-3-haiku", body["model"])
	assert.Equal(t, true, body["fallbackUsed"])
	assert.Equal(t, float64(2), body["attempts"])
	assert.Equal(t, float64(321), body["executionTime"])
	assert.Equal(t, executionID.String(), body["executionId"])
	svc.AssertExpectations(t)
}

func TestHandleExecute_FailureIs500(t *testing.T) {
	svc := new(MockAIService)
	svc.On("Process", mock.Anything, mock.Anything).Return(&inference.Result{
		ExecutionID: uuid.New(),
		ExecutionResult: routing.ExecutionResult{
			Success:  false,
			Error:    "All AI models failed. Last error: a/x: boom",
			Attempts: 3,
		},
	}, nil)

	w := doRequest(t, newAIRouter(svc), http.MethodPost, "/api/v1/ai",
		`{"action":"debug","code":"x","language":"go","output":"panic"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "All AI models failed. Last error: a/x: boom", body["error"])
	assert.Equal(t, false, body["fallbackUsed"])
}

func TestHandleExecute_ModelsAction(t *testing.T) {
	svc := new(MockAIService)
	svc.On("Models").Return(testModels())

	w := doRequest(t, newAIRouter(svc), http.MethodPost, "/api/v1/ai", `{"action":"models"}`)

	assert.Equal(t, http.StatusOK, w.Code)

	var body inference.ModelsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.True(t, body.Configured)
	require.Len(t, body.Models, 2)
	assert.Equal(t, "anthropic", body.Models[1].SourceNamespace)
	svc.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
}

func TestHandleExecute_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"missing action", `{"code":"x","language":"go"}`, "Missing action field"},
		{"missing code", `{"action":"explain","language":"go"}`, "Missing required fields: code and language"},
		{"blank language", `{"action":"explain","code":"x","language":"  "}`, "Missing required fields: code and language"},
		{"language too long", `{"action":"explain","code":"x","language":"` + strings.Repeat("g", 65) + `"}`, "Validation failed"},
		{"malformed JSON", `{"action":`, "invalid JSON"},
		{"empty body", ``, "request body is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAIService)
			w := doRequest(t, newAIRouter(svc), http.MethodPost, "/api/v1/ai", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var body FailureResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Contains(t, body.Error, tt.wantMsg)
			svc.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
		})
	}
}

func TestHandleExecute_InvalidAction(t *testing.T) {
	svc := new(MockAIService)
	svc.On("Process", mock.Anything, mock.Anything).Return(nil,
		services.NewDomainError(services.ErrorTypeValidation, `invalid action "translate"`, nil).
			WithDetail("field", "action"))

	w := doRequest(t, newAIRouter(svc), http.MethodPost, "/api/v1/ai",
		`{"action":"translate","code":"x","language":"go"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body FailureResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "Invalid action. Must be one of: explain, optimize, comment, debug, convert, generate, review", body.Error)
}

func TestHandleExecute_ServiceError(t *testing.T) {
	svc := new(MockAIService)
	svc.On("Process", mock.Anything, mock.Anything).Return(nil, services.WrapInternal("boom", errors.New("x")))

	w := doRequest(t, newAIRouter(svc), http.MethodPost, "/api/v1/ai",
		`{"action":"review","code":"x","language":"go"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleModels_GET(t *testing.T) {
	for _, path := range []string{"/api/v1/ai", "/api/v1/ai/models"} {
		t.Run(path, func(t *testing.T) {
			svc := new(MockAIService)
			svc.On("Models").Return(inference.ModelsResponse{Models: []providers.ProviderSpec{}, Configured: false})

			w := doRequest(t, newAIRouter(svc), http.MethodGet, path, "")

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"models":[],"configured":false}`, w.Body.String())
		})
	}
}

func TestHandleMethodNotAllowed(t *testing.T) {
	w := doRequest(t, newAIRouter(new(MockAIService)), http.MethodDelete, "/api/v1/ai", "")

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	var body FailureResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "Method not allowed", body.Error)
}

func TestHandleListExecutions(t *testing.T) {
	svc := new(MockAIService)
	rec := models.NewExecutionRecord(uuid.New(), "explain", "go")
	svc.On("RecentExecutions", mock.Anything, 5).Return([]*models.ExecutionRecord{rec}, nil)

	w := doRequest(t, newAIRouter(svc), http.MethodGet, "/api/v1/ai/executions?limit=5", "")

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Executions []models.ExecutionRecord `json:"executions"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Len(t, body.Executions, 1)
	assert.Equal(t, rec.ID, body.Executions[0].ID)
}

func TestHandleListExecutions_BadLimit(t *testing.T) {
	w := doRequest(t, newAIRouter(new(MockAIService)), http.MethodGet, "/api/v1/ai/executions?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleListExecutions_StoreUnavailable(t *testing.T) {
	svc := new(MockAIService)
	svc.On("RecentExecutions", mock.Anything, 0).Return(nil, services.ErrAuditStoreUnavailable)

	w := doRequest(t, newAIRouter(svc), http.MethodGet, "/api/v1/ai/executions", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandleGetExecution(t *testing.T) {
	svc := new(MockAIService)
	rec := models.NewExecutionRecord(uuid.New(), "debug", "python")
	svc.On("GetExecution", mock.Anything, rec.ID).Return(rec, nil)

	w := doRequest(t, newAIRouter(svc), http.MethodGet, "/api/v1/ai/executions/"+rec.ID.String(), "")

	assert.Equal(t, http.StatusOK, w.Code)

	var body models.ExecutionRecord
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "python", body.Language)
}

func TestHandleGetExecution_Errors(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		w := doRequest(t, newAIRouter(new(MockAIService)), http.MethodGet, "/api/v1/ai/executions/nope", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(MockAIService)
		id := uuid.New()
		svc.On("GetExecution", mock.Anything, id).Return(nil, services.ErrExecutionNotFound)

		w := doRequest(t, newAIRouter(svc), http.MethodGet, "/api/v1/ai/executions/"+id.String(), "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
