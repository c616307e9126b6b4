package postgres

import (
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
)

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// jsonUnmarshalLoose decodes a nullable JSONB column, treating an
// empty payload as a successful no-op rather than an error.
func jsonUnmarshalLoose(raw []byte, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// mustTagArray builds the single-element JSON array bound as a
// parameter for a JSONB containment match. Marshaling a string
// cannot fail, so the error is discarded.
func mustTagArray(tag string) []byte {
	b, _ := json.Marshal([]string{tag})
	return b
}
