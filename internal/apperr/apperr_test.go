package apperr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_UnwrapsErrorChain(t *testing.T) {
	wrapped := errors.New("pool exhausted")
	err := Storage(wrapped)

	assert.Equal(t, KindStorage, KindOf(err))
}

func TestKindOf_DefaultsToInternalForForeignErrors(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestWire_ValidationMapsToBadRequest(t *testing.T) {
	status, code := KindValidation.Wire()

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, CodeInvalidRequest, code)
}

func TestWire_LLMRateLimitedMapsToTooManyRequests(t *testing.T) {
	status, code := KindLLMRateLimited.Wire()

	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, CodeTooManyRequests, code)
}

func TestWire_StorageMapsToInternal(t *testing.T) {
	status, code := KindStorage.Wire()

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, CodeInternal, code)
}

func TestError_IncludesCauseWhenPresent(t *testing.T) {
	err := Storage(errors.New("connection refused"))

	assert.Contains(t, err.Error(), "connection refused")
}

func TestAs_FailsForForeignErrors(t *testing.T) {
	_, ok := As(errors.New("not ours"))

	assert.False(t, ok)
}
