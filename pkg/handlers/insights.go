package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/storelens/storelens-engine/pkg/charts"
	"github.com/storelens/storelens-engine/pkg/models"
	"github.com/storelens/storelens-engine/pkg/services"
)

// InsightsHandler exposes the insight pipeline over HTTP. The handlers are
// deliberately thin: parse the request, call the service, map the pipeline
// error to a status code and its user-safe message.
type InsightsHandler struct {
	insights services.InsightService
	logger   *zap.Logger
}

// NewInsightsHandler creates a new InsightsHandler.
func NewInsightsHandler(insights services.InsightService, logger *zap.Logger) *InsightsHandler {
	return &InsightsHandler{insights: insights, logger: logger}
}

// RegisterRoutes registers the insight routes on the given mux.
func (h *InsightsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/insights/ask", h.Ask)
	mux.HandleFunc("POST /api/insights/chart/convert", h.ConvertChart)
}

// AskRequest is the body of POST /api/insights/ask.
type AskRequest struct {
	Question string `json:"question"`
}

// Ask handles POST /api/insights/ask. The store id comes from the
// X-Store-ID header, which the upstream gateway sets after authentication;
// it is never read from the request body.
func (h *InsightsHandler) Ask(w http.ResponseWriter, r *http.Request) {
	storeID := r.Header.Get("X-Store-ID")

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}

	answer, err := h.insights.Ask(r.Context(), storeID, req.Question)
	if err != nil {
		h.writePipelineError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, answer); err != nil {
		h.logger.Error("Failed to encode insight answer", zap.Error(err))
	}
}

// ConvertChartRequest is the body of POST /api/insights/chart/convert.
type ConvertChartRequest struct {
	Artifact   *models.ChartArtifact  `json:"chartArtifact"`
	Rows       []map[string]any       `json:"rows"`
	TargetType models.ChartType       `json:"targetType"`
	Metadata   charts.ConvertMetadata `json:"metadata"`
}

// ConvertChart handles POST /api/insights/chart/convert.
func (h *InsightsHandler) ConvertChart(w http.ResponseWriter, r *http.Request) {
	var req ConvertChartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}

	converted, err := h.insights.ConvertChart(req.Artifact, req.Rows, req.TargetType, req.Metadata)
	if err != nil {
		h.writePipelineError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, converted); err != nil {
		h.logger.Error("Failed to encode converted chart", zap.Error(err))
	}
}

// writePipelineError maps a pipeline error to a status code and writes its
// user-safe message. Internal detail was already logged by the service.
func (h *InsightsHandler) writePipelineError(w http.ResponseWriter, err error) {
	pe := services.AsPipelineError(err)

	status := http.StatusInternalServerError
	switch pe.Kind {
	case services.KindInvalidInput:
		status = http.StatusBadRequest
	case services.KindUnsafeQuery:
		status = http.StatusUnprocessableEntity
	case services.KindGeneration:
		status = http.StatusBadGateway
	case services.KindExecTimeout:
		status = http.StatusGatewayTimeout
	case services.KindExecPermission, services.KindExecSyntax, services.KindExecFailure:
		status = http.StatusBadGateway
	}

	_ = ErrorResponse(w, status, string(pe.Kind), pe.UserMessage())
}
