package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestBearerAuth_RejectsMissingHeader(t *testing.T) {
	mw := bearerAuth([]string{"secret"}, zap.NewNop())
	req := httptest.NewRequest("GET", "/memories", nil)
	w := httptest.NewRecorder()

	mw(okHandler()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_RejectsMissingBearerPrefix(t *testing.T) {
	mw := bearerAuth([]string{"secret"}, zap.NewNop())
	req := httptest.NewRequest("GET", "/memories", nil)
	req.Header.Set("Authorization", "secret")
	w := httptest.NewRecorder()

	mw(okHandler()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_RejectsUnknownToken(t *testing.T) {
	mw := bearerAuth([]string{"secret"}, zap.NewNop())
	req := httptest.NewRequest("GET", "/memories", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()

	mw(okHandler()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_AcceptsConfiguredToken(t *testing.T) {
	mw := bearerAuth([]string{"secret"}, zap.NewNop())
	req := httptest.NewRequest("GET", "/memories", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()

	mw(okHandler()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBearerAuth_EmptyTokenSetRejectsEverything(t *testing.T) {
	mw := bearerAuth(nil, zap.NewNop())
	req := httptest.NewRequest("GET", "/memories", nil)
	req.Header.Set("Authorization", "Bearer anything")
	w := httptest.NewRecorder()

	mw(okHandler()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
