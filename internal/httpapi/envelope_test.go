package httpapi

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/momo-run/momo/internal/apperr"
)

func TestWriteData_WrapsInDataEnvelope(t *testing.T) {
	w := httptest.NewRecorder()

	writeData(w, 201, map[string]string{"id": "m1"})

	assert.Equal(t, 201, w.Code)
	var got dataEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.NotNil(t, got.Data)
	assert.Nil(t, got.Meta)
}

func TestWriteErr_ValidationSurfacesMessage(t *testing.T) {
	w := httptest.NewRecorder()

	writeErr(w, zap.NewNop(), apperr.Validation("content must not be empty"))

	assert.Equal(t, 400, w.Code)
	var got errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "content must not be empty", got.Error.Message)
}

func TestWriteErr_InternalSanitizesMessage(t *testing.T) {
	w := httptest.NewRecorder()

	writeErr(w, zap.NewNop(), apperr.Internal("leaked detail: %s", "connection string"))

	assert.Equal(t, 500, w.Code)
	var got errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "an internal error occurred", got.Error.Message)
	assert.NotContains(t, got.Error.Message, "connection string")
}

func TestDecodeJSON_MalformedBodyIsValidationError(t *testing.T) {
	req := httptest.NewRequest("POST", "/x", nil)
	req.Body = nil

	var dest map[string]any
	err := decodeJSON(req, &dest)

	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
}
