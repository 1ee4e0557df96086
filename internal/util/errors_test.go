package util

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionErrorRecoverability(t *testing.T) {
	assert.True(t, NewSelectionError(CodeNoCandidates, "x").Recoverable())
	assert.True(t, NewSelectionError(CodeNoContextualMatch, "x").Recoverable())
	assert.False(t, NewSelectionError(CodeSystemError, "x").Recoverable())
	assert.False(t, NewSelectionError(CodeDatabaseError, "x").Recoverable())
}

func TestAsSelectionErrorUnwrapsChains(t *testing.T) {
	inner := WrapSelectionError(CodeDatabaseError, "query failed", errors.New("boom"))
	wrapped := fmt.Errorf("stage: %w", inner)

	se, ok := AsSelectionError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeDatabaseError, se.Code)

	_, ok = AsSelectionError(errors.New("plain"))
	assert.False(t, ok)
}

func TestSelectionErrorMessage(t *testing.T) {
	plain := NewSelectionError(CodeNoCandidates, "nothing matched")
	assert.Equal(t, "NO_CANDIDATES: nothing matched", plain.Error())

	wrapped := WrapSelectionError(CodeSystemError, "scoring", errors.New("boom"))
	assert.Contains(t, wrapped.Error(), "boom")
	assert.ErrorContains(t, wrapped, "SYSTEM_ERROR")
}
