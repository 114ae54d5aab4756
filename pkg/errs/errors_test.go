package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasKindMatchesWrappedKind(t *testing.T) {
	err := New(InvalidInterface, "missing update export")

	assert.True(t, HasKind(err, InvalidInterface))
	assert.False(t, HasKind(err, UnknownHostFunction))
}

func TestHasKindFalseForPlainError(t *testing.T) {
	assert.False(t, HasKind(errors.New("boom"), EngineError))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("trap")
	err := Wrap(EngineError, "guest update trapped", cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, HasKind(err, EngineError))
}

func TestWrapStackNilIsNil(t *testing.T) {
	assert.NoError(t, WrapStack(nil))
}
