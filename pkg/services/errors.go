package services

import (
	"errors"
	"fmt"
)

// Stage identifies where in the pipeline an error occurred.
type Stage string

const (
	StageInput      Stage = "input"
	StageContext    Stage = "store_context"
	StageGeneration Stage = "generation"
	StageValidation Stage = "validation"
	StageExecution  Stage = "execution"
)

// Kind classifies pipeline failures for user-facing mapping.
type Kind string

const (
	KindInvalidInput   Kind = "invalid_input"
	KindGeneration     Kind = "generation_failed"
	KindUnsafeQuery    Kind = "unsafe_query"
	KindExecTimeout    Kind = "execution_timeout"
	KindExecPermission Kind = "execution_permission"
	KindExecSyntax     Kind = "execution_syntax"
	KindExecFailure    Kind = "execution_failed"
	KindInternal       Kind = "internal"
)

// PipelineError is the tagged error type every stage returns. The internal
// detail stays in Err for logging; callers surface only UserMessage.
type PipelineError struct {
	Stage Stage
	Kind  Kind
	Err   error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s stage: %s: %v", e.Stage, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s stage: %s", e.Stage, e.Kind)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError creates a tagged pipeline error.
func NewPipelineError(stage Stage, kind Kind, err error) *PipelineError {
	return &PipelineError{Stage: stage, Kind: kind, Err: err}
}

// UserMessage maps the error to the string callers may show. Every
// safety-validation failure maps to the same message so the specific
// defense that fired is never disclosed; execution failures each get a
// distinct, user-safe message with no database detail.
func (e *PipelineError) UserMessage() string {
	switch e.Kind {
	case KindInvalidInput:
		// Input validation errors are the engine's own messages and are
		// safe to show as-is.
		if e.Err != nil {
			return e.Err.Error()
		}
		return "invalid request"
	case KindGeneration:
		return "We were unable to process this question. Please try again."
	case KindUnsafeQuery:
		return "We were unable to process this question. Please try rephrasing."
	case KindExecTimeout:
		return "The query took too long to run. Try asking about a narrower date range."
	case KindExecPermission:
		return "The query hit a permissions error and could not be completed."
	case KindExecSyntax:
		return "The generated query contained a syntax error. Please try rephrasing."
	case KindExecFailure:
		return "The query could not be completed."
	default:
		return "Something went wrong. Please try again."
	}
}

// AsPipelineError extracts a *PipelineError from err, or wraps err as an
// internal error when it is not one.
func AsPipelineError(err error) *PipelineError {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe
	}
	return NewPipelineError(StageExecution, KindInternal, err)
}
