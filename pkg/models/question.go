package models

import (
	"errors"
	"regexp"
	"strings"
)

// MaxQuestionLength is the maximum accepted length of a question, in characters.
const MaxQuestionLength = 2000

// storeIDPattern matches opaque store identifiers. Store ids come from the
// authenticated session, but we still refuse anything that does not look
// like an identifier before it reaches a query parameter.
var storeIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

var (
	ErrEmptyQuestion   = errors.New("question is empty")
	ErrQuestionTooLong = errors.New("question exceeds maximum length")
	ErrInvalidStoreID  = errors.New("invalid store id")
)

// Question is a single free-text question scoped to one store.
// It is ephemeral: one per request, never persisted by the engine.
type Question struct {
	StoreID string
	Text    string
}

// NewQuestion validates and normalizes the raw inputs into a Question.
func NewQuestion(storeID, text string) (Question, error) {
	if !storeIDPattern.MatchString(storeID) {
		return Question{}, ErrInvalidStoreID
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Question{}, ErrEmptyQuestion
	}
	if len([]rune(trimmed)) > MaxQuestionLength {
		return Question{}, ErrQuestionTooLong
	}

	return Question{StoreID: storeID, Text: trimmed}, nil
}
