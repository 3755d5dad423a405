package models

import "time"

// CandidateQuery is the parsed model output. The SQL is untrusted until it
// has passed the validator; the chart spec is best-effort and may be nil.
type CandidateQuery struct {
	SQL         string
	Explanation string
	Chart       *ChartSpec
}

// GeneratedQuery is a validated, executable query. Params[0] is always the
// authenticated store id and is never taken from model output.
type GeneratedQuery struct {
	SQL         string     `json:"sql"`
	Params      []any      `json:"params"`
	Explanation string     `json:"explanation"`
	Chart       *ChartSpec `json:"chartSpec,omitempty"`
}

// ExecutionResult holds the rows returned by a validated query.
// RowCount never exceeds the configured row cap; Truncated reports whether
// the underlying result was larger before slicing.
type ExecutionResult struct {
	Rows       []map[string]any `json:"rows"`
	RowCount   int              `json:"rowCount"`
	Duration   time.Duration    `json:"-"`
	DurationMs int64            `json:"durationMs"`
	Truncated  bool             `json:"truncated"`
}

// InsightAnswer is the caller-facing output of one pipeline invocation.
type InsightAnswer struct {
	Query    GeneratedQuery  `json:"query"`
	Result   ExecutionResult `json:"result"`
	Artifact *ChartArtifact  `json:"chartArtifact,omitempty"`
}
