package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuestion(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		q, err := NewQuestion("store-1", "  How many orders did I get last week?  ")
		require.NoError(t, err)
		assert.Equal(t, "store-1", q.StoreID)
		assert.Equal(t, "How many orders did I get last week?", q.Text)
	})

	t.Run("length limit counts runes", func(t *testing.T) {
		q, err := NewQuestion("store-1", strings.Repeat("é", MaxQuestionLength))
		require.NoError(t, err)
		assert.Len(t, []rune(q.Text), MaxQuestionLength)

		_, err = NewQuestion("store-1", strings.Repeat("é", MaxQuestionLength+1))
		assert.ErrorIs(t, err, ErrQuestionTooLong)
	})

	tests := []struct {
		name     string
		storeID  string
		text     string
		expected error
	}{
		{"empty text", "store-1", "", ErrEmptyQuestion},
		{"whitespace text", "store-1", " \t\n ", ErrEmptyQuestion},
		{"empty store id", "", "hello", ErrInvalidStoreID},
		{"store id with spaces", "store 1", "hello", ErrInvalidStoreID},
		{"store id with quote", "store'1", "hello", ErrInvalidStoreID},
		{"store id too long", strings.Repeat("a", 65), "hello", ErrInvalidStoreID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewQuestion(tt.storeID, tt.text)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}
