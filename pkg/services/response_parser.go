package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/storelens/storelens-engine/pkg/llm"
	"github.com/storelens/storelens-engine/pkg/models"
)

// ParseCandidateQuery strictly parses the model's raw response into a
// candidate query. The sql and explanation fields are required; a missing
// or malformed chartSpec is discarded rather than failing the response,
// because a broken chart must never block an otherwise valid answer.
func ParseCandidateQuery(raw string, logger *zap.Logger) (models.CandidateQuery, error) {
	jsonStr, err := llm.ExtractJSON(raw)
	if err != nil {
		return models.CandidateQuery{}, fmt.Errorf("response is not JSON: %w", err)
	}

	if !strings.HasPrefix(strings.TrimSpace(jsonStr), "{") {
		return models.CandidateQuery{}, fmt.Errorf("response is not a JSON object")
	}

	var payload struct {
		SQL         json.RawMessage `json:"sql"`
		Explanation json.RawMessage `json:"explanation"`
		ChartSpec   json.RawMessage `json:"chartSpec"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return models.CandidateQuery{}, fmt.Errorf("decode response object: %w", err)
	}

	sql, err := requiredString(payload.SQL, "sql")
	if err != nil {
		return models.CandidateQuery{}, err
	}

	explanation, err := requiredString(payload.Explanation, "explanation")
	if err != nil {
		return models.CandidateQuery{}, err
	}

	return models.CandidateQuery{
		SQL:         sql,
		Explanation: explanation,
		Chart:       parseChartSpec(payload.ChartSpec, logger),
	}, nil
}

func requiredString(raw json.RawMessage, field string) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("response is missing %q", field)
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", fmt.Errorf("response field %q is not a string", field)
	}
	if field == "sql" && strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("response field %q is empty", field)
	}
	return value, nil
}

// parseChartSpec validates the chart spec strictly and fails closed:
// any field mismatch discards the spec instead of guessing.
func parseChartSpec(raw json.RawMessage, logger *zap.Logger) *models.ChartSpec {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var spec models.ChartSpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		logger.Debug("discarding malformed chart spec", zap.Error(err))
		return nil
	}

	if !spec.Type.Valid() {
		logger.Debug("discarding chart spec with unknown type",
			zap.String("type", string(spec.Type)))
		return nil
	}
	if spec.Title == "" || spec.DataKey == "" || spec.LabelKey == "" {
		logger.Debug("discarding chart spec with missing fields")
		return nil
	}

	return &spec
}
