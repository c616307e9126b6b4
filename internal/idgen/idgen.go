// Package idgen mints the opaque identifiers the core uses: 21-char
// URL-safe ids for documents and memories, plain UUIDs for ingestion
// tickets.
package idgen

import (
	"encoding/base64"

	"github.com/google/uuid"
)

// New returns a 21-character URL-safe opaque id. There is no
// nanoid-style library in play here; 16 random bytes from uuid's
// generator are base64url-encoded (22 chars with padding stripped)
// and trimmed to a fixed 21-character width.
func New() string {
	raw := uuid.New()
	encoded := base64.RawURLEncoding.EncodeToString(raw[:])
	return encoded[:21]
}

// Ticket mints a plain UUID string for an ingestion ticket.
func Ticket() string {
	return uuid.NewString()
}
