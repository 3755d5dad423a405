package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storelens/storelens-engine/pkg/charts"
	"github.com/storelens/storelens-engine/pkg/llm"
	"github.com/storelens/storelens-engine/pkg/logging"
	"github.com/storelens/storelens-engine/pkg/models"
	"github.com/storelens/storelens-engine/pkg/observability"
	"github.com/storelens/storelens-engine/pkg/prompts"
	"github.com/storelens/storelens-engine/pkg/sqlguard"
)

// InsightService answers free-text questions about a store's data.
type InsightService interface {
	// Ask runs the full pipeline: context, prompt, completion, parse,
	// validate, execute, chart. Any stage failure aborts the remaining
	// stages and returns a *PipelineError; no stage retries.
	Ask(ctx context.Context, storeID, questionText string) (*models.InsightAnswer, error)

	// ConvertChart re-derives an artifact for a different chart type from
	// the same rows without re-querying.
	ConvertChart(existing *models.ChartArtifact, rows []map[string]any, target models.ChartType, meta charts.ConvertMetadata) (*models.ChartArtifact, error)
}

type insightService struct {
	contexts    StoreContextProvider
	completions llm.CompletionClient
	validator   *sqlguard.Validator
	executor    QueryExecutor
	logger      *zap.Logger
}

// NewInsightService wires the pipeline stages together.
func NewInsightService(
	contexts StoreContextProvider,
	completions llm.CompletionClient,
	validator *sqlguard.Validator,
	executor QueryExecutor,
	logger *zap.Logger,
) InsightService {
	return &insightService{
		contexts:    contexts,
		completions: completions,
		validator:   validator,
		executor:    executor,
		logger:      logger.Named("insights"),
	}
}

func (s *insightService) Ask(ctx context.Context, storeID, questionText string) (*models.InsightAnswer, error) {
	start := time.Now()
	requestID := uuid.NewString()
	logger := s.logger.With(
		zap.String("request_id", requestID),
		zap.String("store_id", storeID))

	answer, err := s.ask(ctx, storeID, questionText, logger)
	if err != nil {
		pe := AsPipelineError(err)
		logger.Warn("question failed",
			zap.String("stage", string(pe.Stage)),
			zap.String("kind", string(pe.Kind)),
			zap.String("error", logging.SanitizeError(pe.Err)),
			zap.Duration("elapsed", time.Since(start)))
		observability.ObserveQuestion(string(pe.Kind), time.Since(start))
		return nil, pe
	}

	logger.Info("question answered",
		zap.Int("row_count", answer.Result.RowCount),
		zap.Bool("chart", answer.Artifact != nil),
		zap.Duration("elapsed", time.Since(start)))
	observability.ObserveQuestion("ok", time.Since(start))

	return answer, nil
}

func (s *insightService) ask(ctx context.Context, storeID, questionText string, logger *zap.Logger) (*models.InsightAnswer, error) {
	question, err := models.NewQuestion(storeID, questionText)
	if err != nil {
		return nil, NewPipelineError(StageInput, KindInvalidInput, err)
	}

	storeCtx, err := s.contexts.GetStoreContext(ctx, question.StoreID)
	if err != nil {
		return nil, NewPipelineError(StageContext, KindInternal, err)
	}

	systemPrompt := prompts.BuildInsightSQLPrompt(storeCtx)

	raw, err := s.completions.Complete(ctx, systemPrompt, question.Text)
	if err != nil {
		return nil, NewPipelineError(StageGeneration, KindGeneration, err)
	}

	candidate, err := ParseCandidateQuery(raw, logger)
	if err != nil {
		logger.Debug("unparseable completion",
			zap.String("question", logging.TruncateQuestion(question.Text)))
		return nil, NewPipelineError(StageGeneration, KindGeneration, err)
	}

	validation := s.validator.Validate(candidate.SQL)
	if !validation.Valid {
		// The violated rules are logged for diagnosis but never surfaced:
		// all rejections look identical to the caller.
		logger.Warn("candidate query rejected",
			zap.Strings("violations", validation.Errors),
			zap.String("sql", logging.TruncateSQL(candidate.SQL)))
		observability.IncrementValidationRejection()
		return nil, NewPipelineError(StageValidation, KindUnsafeQuery,
			errors.New(strings.Join(validation.Errors, "; ")))
	}

	// Params[0] is always the authenticated store id, never model output.
	query := models.GeneratedQuery{
		SQL:         validation.SQL,
		Params:      []any{question.StoreID},
		Explanation: candidate.Explanation,
		Chart:       candidate.Chart,
	}

	result, err := s.executor.Execute(ctx, query)
	if err != nil {
		return nil, err
	}

	return &models.InsightAnswer{
		Query:    query,
		Result:   result,
		Artifact: charts.Compile(candidate.Chart, result.Rows),
	}, nil
}

func (s *insightService) ConvertChart(existing *models.ChartArtifact, rows []map[string]any, target models.ChartType, meta charts.ConvertMetadata) (*models.ChartArtifact, error) {
	if existing == nil {
		return nil, NewPipelineError(StageInput, KindInvalidInput,
			errors.New("no chart artifact to convert"))
	}
	if !target.Valid() {
		return nil, NewPipelineError(StageInput, KindInvalidInput,
			errors.New("unknown chart type"))
	}

	converted := charts.Convert(existing, rows, target, meta)
	if converted == nil {
		return nil, NewPipelineError(StageInput, KindInvalidInput,
			errors.New("chart could not be converted"))
	}

	return converted, nil
}
