package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	e := New(CodeInputSyntax, "line 2 malformed")
	assert.Equal(t, "[INPUT_SYNTAX_ERROR] line 2 malformed", e.Error())

	wrapped := Wrap(CodeDatabaseError, "saving run", fmt.Errorf("connection refused"))
	assert.Contains(t, wrapped.Error(), "DATABASE_ERROR")
	assert.Contains(t, wrapped.Error(), "connection refused")
}

func TestAppError_Is(t *testing.T) {
	e := Newf(CodeParamInfeasible, "t=%d exceeds %d columns", 5, 3)
	assert.True(t, stderrors.Is(e, ErrParamInfeasible))
	assert.False(t, stderrors.Is(e, ErrInputSyntax))
	assert.True(t, IsInfeasible(e))
	assert.False(t, IsInputError(e))
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("disk full")
	e := Wrap(CodeOutOfMemory, "cloning state", inner)
	assert.Equal(t, inner, stderrors.Unwrap(e))
	assert.True(t, IsOutOfMemory(e))
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsInputError(New(CodeInputSyntax, "x")))
	assert.True(t, IsInputError(New(CodeInputSemantics, "x")))
	assert.True(t, IsStagnation(New(CodeStagnation, "x")))
	assert.False(t, IsStagnation(fmt.Errorf("plain")))
}

func TestGetErrorCodeAndMessage(t *testing.T) {
	e := New(CodeStorageError, "upload failed")
	assert.Equal(t, CodeStorageError, GetErrorCode(e))
	assert.Equal(t, "upload failed", GetErrorMessage(e))

	wrapped := fmt.Errorf("outer: %w", e)
	assert.Equal(t, CodeStorageError, GetErrorCode(wrapped))

	assert.Equal(t, CodeUnknown, GetErrorCode(fmt.Errorf("plain")))
	assert.Equal(t, "plain", GetErrorMessage(fmt.Errorf("plain")))
	assert.Equal(t, "", GetErrorMessage(nil))
}
