package logging

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeConnectionString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "keyword form password",
			input:    "host=db port=5432 user=app password=s3cret dbname=store",
			expected: "host=db port=5432 user=app password=[REDACTED] dbname=store",
		},
		{
			name:     "url form credentials",
			input:    "postgres://app:s3cret@db:5432/store",
			expected: "postgres://[REDACTED]@[REDACTED]/store",
		},
		{
			name:     "no credentials",
			input:    "host=db port=5432 dbname=store",
			expected: "host=db port=5432 dbname=store",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeConnectionString(tt.input))
		})
	}
}

func TestSanitizeError(t *testing.T) {
	assert.Equal(t, "", SanitizeError(nil))

	err := errors.New("connect failed: postgres://app:s3cret@db:5432/store refused")
	got := SanitizeError(err)
	assert.NotContains(t, got, "s3cret")
	assert.Contains(t, got, "[REDACTED]")

	err = errors.New("request failed: api_key=" + strings.Repeat("k", 32))
	got = SanitizeError(err)
	assert.NotContains(t, got, strings.Repeat("k", 32))
}

func TestTruncate(t *testing.T) {
	short := "SELECT 1"
	assert.Equal(t, short, TruncateSQL(short))
	assert.Equal(t, short, TruncateQuestion(short))

	long := strings.Repeat("a", MaxSQLLogLength+50)
	got := TruncateSQL(long)
	assert.Len(t, got, MaxSQLLogLength+3)
	assert.True(t, strings.HasSuffix(got, "..."))

	question := strings.Repeat("q", MaxQuestionLogLength+1)
	got = TruncateQuestion(question)
	assert.Len(t, got, MaxQuestionLogLength+3)
}
