package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storelens/storelens-engine/pkg/charts"
	"github.com/storelens/storelens-engine/pkg/models"
	"github.com/storelens/storelens-engine/pkg/services"
)

type stubInsightService struct {
	answer     *models.InsightAnswer
	askErr     error
	converted  *models.ChartArtifact
	convertErr error
	gotStoreID string
	gotText    string
}

func (s *stubInsightService) Ask(ctx context.Context, storeID, questionText string) (*models.InsightAnswer, error) {
	s.gotStoreID = storeID
	s.gotText = questionText
	if s.askErr != nil {
		return nil, s.askErr
	}
	return s.answer, nil
}

func (s *stubInsightService) ConvertChart(existing *models.ChartArtifact, rows []map[string]any, target models.ChartType, meta charts.ConvertMetadata) (*models.ChartArtifact, error) {
	if s.convertErr != nil {
		return nil, s.convertErr
	}
	return s.converted, nil
}

func newTestMux(svc *stubInsightService) *http.ServeMux {
	mux := http.NewServeMux()
	NewInsightsHandler(svc, zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func TestAsk_OK(t *testing.T) {
	svc := &stubInsightService{answer: &models.InsightAnswer{
		Query:  models.GeneratedQuery{SQL: "SELECT 1", Explanation: "ok"},
		Result: models.ExecutionResult{RowCount: 1, Rows: []map[string]any{{"n": 1}}},
	}}
	mux := newTestMux(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/insights/ask",
		strings.NewReader(`{"question": "how many orders"}`))
	req.Header.Set("X-Store-ID", "store-1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "store-1", svc.gotStoreID)
	assert.Equal(t, "how many orders", svc.gotText)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "query")
	assert.Contains(t, body, "result")
}

func TestAsk_MalformedBody(t *testing.T) {
	mux := newTestMux(&stubInsightService{})

	req := httptest.NewRequest(http.MethodPost, "/api/insights/ask", strings.NewReader("not json"))
	req.Header.Set("X-Store-ID", "store-1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAsk_PipelineErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "invalid input",
			err:        services.NewPipelineError(services.StageInput, services.KindInvalidInput, errors.New("question is empty")),
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_input",
		},
		{
			name:       "unsafe query",
			err:        services.NewPipelineError(services.StageValidation, services.KindUnsafeQuery, errors.New("forbidden keyword DROP")),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "unsafe_query",
		},
		{
			name:       "generation failure",
			err:        services.NewPipelineError(services.StageGeneration, services.KindGeneration, errors.New("no valid JSON")),
			wantStatus: http.StatusBadGateway,
			wantCode:   "generation_failed",
		},
		{
			name:       "timeout",
			err:        services.NewPipelineError(services.StageExecution, services.KindExecTimeout, errors.New("statement timeout")),
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   "execution_timeout",
		},
		{
			name:       "internal",
			err:        errors.New("untagged"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newTestMux(&stubInsightService{askErr: tt.err})

			req := httptest.NewRequest(http.MethodPost, "/api/insights/ask",
				strings.NewReader(`{"question": "q"}`))
			req.Header.Set("X-Store-ID", "store-1")
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body["error"])
			assert.NotEmpty(t, body["message"])
			// The violated rule never leaks into the response.
			assert.NotContains(t, body["message"], "DROP")
		})
	}
}

func TestConvertChart_OK(t *testing.T) {
	svc := &stubInsightService{converted: &models.ChartArtifact{
		Type:  models.ChartTypeTable,
		Table: &models.TableResult{Headers: []string{"n"}, Rows: [][]any{{1}}},
	}}
	mux := newTestMux(svc)

	body := `{"chartArtifact": {"type": "bar"}, "rows": [{"n": 1}], "targetType": "table", "metadata": {}}`
	req := httptest.NewRequest(http.MethodPost, "/api/insights/chart/convert", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var artifact models.ChartArtifact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &artifact))
	assert.Equal(t, models.ChartTypeTable, artifact.Type)
}

func TestConvertChart_InvalidInput(t *testing.T) {
	svc := &stubInsightService{convertErr: services.NewPipelineError(
		services.StageInput, services.KindInvalidInput, errors.New("no chart artifact to convert"))}
	mux := newTestMux(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/insights/chart/convert",
		strings.NewReader(`{"targetType": "table"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
