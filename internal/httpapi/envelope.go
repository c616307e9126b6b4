// Package httpapi wires every external endpoint to the core
// services behind the chi router, bearer-token auth, and the
// data/error JSON envelope.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/momo-run/momo/internal/apperr"
	"go.uber.org/zap"
)

type envelopeMeta struct {
	NextCursor string `json:"nextCursor,omitempty"`
	Total      int    `json:"total,omitempty"`
}

type dataEnvelope struct {
	Data any           `json:"data"`
	Meta *envelopeMeta `json:"meta,omitempty"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorPayload `json:"error"`
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, dataEnvelope{Data: data})
}

func writeDataWithTotal(w http.ResponseWriter, status int, data any, total int) {
	writeJSON(w, status, dataEnvelope{Data: data, Meta: &envelopeMeta{Total: total}})
}

func writeErr(w http.ResponseWriter, log *zap.Logger, err error) {
	status, code := apperr.KindOf(err).Wire()
	msg := "an internal error occurred"
	if status < 500 {
		msg = err.Error()
		if appErr, ok := apperr.As(err); ok {
			msg = appErr.Message
		}
	} else {
		log.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, errorEnvelope{Error: errorPayload{Code: string(code), Message: msg}})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return apperr.Validation("malformed request body: missing body")
	}
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return apperr.Validation("malformed request body: %v", err)
	}
	return nil
}
