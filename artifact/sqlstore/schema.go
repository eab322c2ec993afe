package sqlstore

import (
	"context"
	"database/sql"
)

const artifactsSchema = `
CREATE TABLE IF NOT EXISTS doc_artifacts (
    doc_id     TEXT PRIMARY KEY,
    "index"    BLOB,
    metadata   BLOB,
    updated_at INTEGER NOT NULL DEFAULT 0
);
`

// EnsureSchema creates the doc_artifacts table in the provided database if it
// does not already exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, artifactsSchema)
	return err
}
