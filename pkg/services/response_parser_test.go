package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storelens/storelens-engine/pkg/models"
)

func TestParseCandidateQuery(t *testing.T) {
	logger := zap.NewNop()

	t.Run("plain JSON object", func(t *testing.T) {
		raw := `{"sql": "SELECT COUNT(*) FROM orders WHERE store_id = $1", "explanation": "Counts the store's orders.", "chartSpec": null}`

		candidate, err := ParseCandidateQuery(raw, logger)
		require.NoError(t, err)
		assert.Equal(t, "SELECT COUNT(*) FROM orders WHERE store_id = $1", candidate.SQL)
		assert.Equal(t, "Counts the store's orders.", candidate.Explanation)
		assert.Nil(t, candidate.Chart)
	})

	t.Run("fenced JSON", func(t *testing.T) {
		raw := "Here is the query:\n```json\n{\"sql\": \"SELECT 1\", \"explanation\": \"ok\"}\n```"

		candidate, err := ParseCandidateQuery(raw, logger)
		require.NoError(t, err)
		assert.Equal(t, "SELECT 1", candidate.SQL)
	})

	t.Run("chart spec retained when complete", func(t *testing.T) {
		raw := `{
			"sql": "SELECT month, total_revenue FROM orders WHERE store_id = $1",
			"explanation": "Monthly revenue.",
			"chartSpec": {"type": "bar", "title": "Monthly Revenue", "dataKey": "total_revenue", "labelKey": "month"}
		}`

		candidate, err := ParseCandidateQuery(raw, logger)
		require.NoError(t, err)
		require.NotNil(t, candidate.Chart)
		assert.Equal(t, models.ChartTypeBar, candidate.Chart.Type)
		assert.Equal(t, "total_revenue", candidate.Chart.DataKey)
	})

	t.Run("malformed chart spec is discarded not fatal", func(t *testing.T) {
		tests := []struct {
			name string
			spec string
		}{
			{"unknown type", `{"type": "sparkline", "title": "T", "dataKey": "d", "labelKey": "l"}`},
			{"missing dataKey", `{"type": "bar", "title": "T", "labelKey": "l"}`},
			{"missing title", `{"type": "bar", "dataKey": "d", "labelKey": "l"}`},
			{"wrong shape", `["bar"]`},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				raw := `{"sql": "SELECT 1", "explanation": "ok", "chartSpec": ` + tt.spec + `}`
				candidate, err := ParseCandidateQuery(raw, logger)
				require.NoError(t, err)
				assert.Nil(t, candidate.Chart)
				assert.Equal(t, "SELECT 1", candidate.SQL)
			})
		}
	})

	t.Run("rejections", func(t *testing.T) {
		tests := []struct {
			name string
			raw  string
		}{
			{"not JSON", "I cannot answer that question."},
			{"JSON array", `[{"sql": "SELECT 1"}]`},
			{"missing sql", `{"explanation": "ok"}`},
			{"missing explanation", `{"sql": "SELECT 1"}`},
			{"sql not a string", `{"sql": 42, "explanation": "ok"}`},
			{"explanation not a string", `{"sql": "SELECT 1", "explanation": {"text": "ok"}}`},
			{"empty sql", `{"sql": "   ", "explanation": "ok"}`},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := ParseCandidateQuery(tt.raw, logger)
				assert.Error(t, err)
			})
		}
	})
}
