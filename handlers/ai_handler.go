package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/cybe4sent1nel/CODERIPPER-sub001/middleware"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/models"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/services"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/services/inference"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/services/prompt"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/utils"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// modelsAction is the pseudo-action that returns the models listing instead of running a request
const modelsAction = "models"

// AIService defines the operations the AI endpoints need
type AIService interface {
	Process(ctx context.Context, req inference.Request) (*inference.Result, error)
	Models() inference.ModelsResponse
	GetExecution(ctx context.Context, id uuid.UUID) (*models.ExecutionRecord, error)
	RecentExecutions(ctx context.Context, limit int) ([]*models.ExecutionRecord, error)
}

// FailureResponse is the error shape of the AI endpoint
type FailureResponse struct {
	Success bool                   `json:"success"`
	Error   string                 `json:"error"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// AIHandler handles the code-assistance endpoints
type AIHandler struct {
	service AIService
	logger  *zap.Logger
}

// NewAIHandler creates a new AIHandler
func NewAIHandler(service AIService, logger *zap.Logger) *AIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIHandler{
		service: service,
		logger:  logger,
	}
}

// HandleExecute handles POST /api/v1/ai
func (h *AIHandler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	var req inference.Request
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		h.writeFailure(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if strings.EqualFold(strings.TrimSpace(req.Action), modelsAction) {
		h.HandleModels(w, r)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		fields := utils.GetValidationFields(err)
		h.writeFailure(w, http.StatusBadRequest, validationMessage(fields, err), utils.FieldDetails(fields))
		return
	}

	req.RequestID = middleware.GetRequestIDFromContext(r.Context())

	result, err := h.service.Process(r.Context(), req)
	if err != nil {
		if services.IsValidationError(err) {
			details := services.GetErrorDetails(err)
			message := err.Error()
			if details["field"] == "action" {
				message = "Invalid action. Must be one of: " + strings.Join(prompt.ActionNames(), ", ")
			}
			h.writeFailure(w, http.StatusBadRequest, message, details)
			return
		}
		HandleServiceError(w, err, h.logger)
		return
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusInternalServerError
	}
	if err := utils.WriteJSON(w, status, result); err != nil {
		h.logger.Error("failed to write AI response", zap.Error(err))
	}
}

// HandleModels handles GET /api/v1/ai and GET /api/v1/ai/models
func (h *AIHandler) HandleModels(w http.ResponseWriter, r *http.Request) {
	if err := utils.WriteJSON(w, http.StatusOK, h.service.Models()); err != nil {
		h.logger.Error("failed to write models response", zap.Error(err))
	}
}

// HandleListExecutions handles GET /api/v1/ai/executions
func (h *AIHandler) HandleListExecutions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			_ = utils.WriteBadRequest(w, "limit must be a non-negative integer", nil)
			return
		}
		limit = n
	}

	recs, err := h.service.RecentExecutions(r.Context(), limit)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"executions": recs})
}

// HandleGetExecution handles GET /api/v1/ai/executions/{id}
func (h *AIHandler) HandleGetExecution(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	rec, err := h.service.GetExecution(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteJSON(w, http.StatusOK, rec)
}

// HandleMethodNotAllowed answers unsupported methods on the AI endpoint
func (h *AIHandler) HandleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "GET, POST, OPTIONS")
	h.writeFailure(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
}

func (h *AIHandler) writeFailure(w http.ResponseWriter, status int, message string, details map[string]interface{}) {
	if len(details) == 0 {
		details = nil
	}
	if err := utils.WriteJSON(w, status, FailureResponse{Error: message, Details: details}); err != nil {
		h.logger.Error("failed to write failure response", zap.Error(err))
	}
}

func validationMessage(fields map[string]string, err error) string {
	if fields == nil {
		return err.Error()
	}
	if _, ok := fields["action"]; ok {
		return "Missing action field"
	}
	for _, name := range []string{"code", "language"} {
		if msg, ok := fields[name]; ok && strings.HasSuffix(msg, "is required") {
			return "Missing required fields: code and language"
		}
	}
	return "Validation failed"
}
