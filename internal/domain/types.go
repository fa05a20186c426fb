package domain

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// --- Shared Custom Types ---

// JSONB is a helper for handling JSONB columns in Postgres as a map.
// Version snapshots and audit payloads travel through it.
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, j)
}

// TransactionManager runs fn inside a single database transaction. The
// transaction rides on the context so repositories pick it up transparently.
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
