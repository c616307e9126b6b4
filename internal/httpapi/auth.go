package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/momo-run/momo/internal/apperr"
)

// bearerAuth rejects any request whose Authorization header does not
// present one of the configured tokens. An empty token set means no
// bearer has ever been configured, so every request is rejected rather
// than silently left open.
func bearerAuth(tokens []string, log *zap.Logger) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		allowed[t] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token := strings.TrimPrefix(header, "Bearer ")
			if header == "" || token == header || !allowed[token] {
				writeErr(w, log, apperr.Unauthorized("missing or invalid bearer token"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
