package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/storelens/storelens-engine/pkg/logging"
	"github.com/storelens/storelens-engine/pkg/models"
	"github.com/storelens/storelens-engine/pkg/observability"
)

// QueryExecutor runs validated queries against the read-only analytics pool.
type QueryExecutor interface {
	Execute(ctx context.Context, query models.GeneratedQuery) (models.ExecutionResult, error)
}

// Querier is the subset of pgxpool.Pool the executor needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// pgQueryExecutor executes queries through a pool whose statement timeout
// and read-only mode were fixed at connection creation.
type pgQueryExecutor struct {
	db      Querier
	maxRows int
	logger  *zap.Logger
}

// NewQueryExecutor creates an executor that truncates results past maxRows.
func NewQueryExecutor(db Querier, maxRows int, logger *zap.Logger) QueryExecutor {
	return &pgQueryExecutor{db: db, maxRows: maxRows, logger: logger.Named("executor")}
}

// Execute runs one validated query. It refuses to run without SQL text or
// parameters: the first parameter is the tenant id, and executing without
// it would bypass tenant isolation even if the validator were defective.
func (e *pgQueryExecutor) Execute(ctx context.Context, query models.GeneratedQuery) (models.ExecutionResult, error) {
	if strings.TrimSpace(query.SQL) == "" {
		return models.ExecutionResult{}, NewPipelineError(StageExecution, KindInternal,
			errors.New("refusing to execute empty SQL"))
	}
	if len(query.Params) == 0 {
		return models.ExecutionResult{}, NewPipelineError(StageExecution, KindInternal,
			errors.New("refusing to execute without tenant parameter"))
	}

	start := time.Now()

	rows, err := e.db.Query(ctx, query.SQL, query.Params...)
	if err != nil {
		return models.ExecutionResult{}, e.failed(query, time.Since(start), err)
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = string(fd.Name)
	}

	resultRows := make([]map[string]any, 0)
	truncated := false
	for rows.Next() {
		if len(resultRows) >= e.maxRows {
			truncated = true
			break
		}

		values, err := rows.Values()
		if err != nil {
			return models.ExecutionResult{}, e.failed(query, time.Since(start),
				fmt.Errorf("read row values: %w", err))
		}

		rowMap := make(map[string]any, len(columns))
		for i, col := range columns {
			rowMap[col] = normalizeValue(values[i])
		}
		resultRows = append(resultRows, rowMap)
	}

	if !truncated {
		if err := rows.Err(); err != nil {
			return models.ExecutionResult{}, e.failed(query, time.Since(start), err)
		}
	}

	elapsed := time.Since(start)
	result := models.ExecutionResult{
		Rows:       resultRows,
		RowCount:   len(resultRows),
		Duration:   elapsed,
		DurationMs: elapsed.Milliseconds(),
		Truncated:  truncated,
	}

	// Row contents are never logged.
	e.logger.Info("query executed",
		zap.Int("row_count", result.RowCount),
		zap.Bool("truncated", result.Truncated),
		zap.Duration("elapsed", elapsed))
	observability.ObserveQueryExecution(result.RowCount, result.Truncated, elapsed)

	return result, nil
}

// failed logs the attempt and converts the raw database error into a
// classified pipeline error. The raw text never reaches the caller.
func (e *pgQueryExecutor) failed(query models.GeneratedQuery, elapsed time.Duration, err error) error {
	kind := classifyExecutionError(err)
	e.logger.Warn("query execution failed",
		zap.String("kind", string(kind)),
		zap.String("sql", logging.TruncateSQL(query.SQL)),
		zap.String("error", logging.SanitizeError(err)),
		zap.Duration("elapsed", elapsed))
	return NewPipelineError(StageExecution, kind, err)
}

// classifyExecutionError maps database failures to the pipeline taxonomy:
// timeout, permission denied, syntax error, or a generic failure.
func classifyExecutionError(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindExecTimeout
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "57014": // query_canceled: statement_timeout fired
			return KindExecTimeout
		case "42501": // insufficient_privilege
			return KindExecPermission
		case "42601": // syntax_error
			return KindExecSyntax
		}
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "statement timeout") ||
		strings.Contains(lower, "canceling statement") ||
		strings.Contains(lower, "deadline exceeded"):
		return KindExecTimeout
	case strings.Contains(lower, "permission denied"):
		return KindExecPermission
	case strings.Contains(lower, "syntax error"):
		return KindExecSyntax
	}

	return KindExecFailure
}

// normalizeValue converts pgx driver types into plain Go values so the
// chart compiler and JSON encoding see ordinary numbers and strings.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case pgtype.Numeric:
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case [16]byte:
		return uuid.UUID(val).String()
	default:
		return v
	}
}
