package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Error(t *testing.T) {
	err := NewDomainError(ErrCodeInvalidInput, "bad question")
	assert.Equal(t, "[INVALID_INPUT] bad question", err.Error())

	wrapped := NewDomainErrorWithCause(ErrCodeStorage, "insert failed", fmt.Errorf("disk full"))
	assert.Equal(t, "[STORAGE_ERROR] insert failed: disk full", wrapped.Error())
}

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := IndexUnavailable("snapshot missing", errors.New("open vecs/all_emb.npy: no such file"))

	assert.True(t, errors.Is(err, ErrIndexUnavailable))
	assert.False(t, errors.Is(err, ErrStorage))

	wrapped := fmt.Errorf("serve: %w", err)
	assert.True(t, errors.Is(wrapped, ErrIndexUnavailable))
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := StorageError("record interaction", cause)
	assert.ErrorIs(t, err, cause)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeEmbeddingService, CodeOf(fmt.Errorf("x: %w", ErrEmbeddingService)))
	assert.Equal(t, ErrCodeInternalError, CodeOf(errors.New("plain")))
}
