// Package sqlstore keeps document artifacts in a SQLite table, one row per
// document with the index blob and the metadata in separate columns. A NULL
// or empty column marks the artifact as missing.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/viant/docvec/artifact"
)

// Store is a SQLite-backed artifact.Store.
type Store struct {
	db *sql.DB
}

// New creates a store over db and ensures its schema exists.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: db is nil")
	}
	if err := EnsureSchema(ctx, db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Save upserts both artifacts in one statement.
func (s *Store) Save(ctx context.Context, docID string, index, metadata []byte) error {
	if docID == "" {
		return fmt.Errorf("sqlstore: doc id is empty")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO doc_artifacts(doc_id, "index", metadata, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(doc_id) DO UPDATE SET
  "index" = excluded."index",
  metadata = excluded.metadata,
  updated_at = excluded.updated_at`, docID, index, metadata, time.Now().UnixNano())
	return err
}

// Load returns both artifacts of docID.
func (s *Store) Load(ctx context.Context, docID string) ([]byte, []byte, error) {
	var index, metadata []byte
	err := s.db.QueryRowContext(ctx, `SELECT "index", metadata FROM doc_artifacts WHERE doc_id = ?`, docID).Scan(&index, &metadata)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, artifact.ErrNotFound
		}
		return nil, nil, err
	}
	if len(index) == 0 || len(metadata) == 0 {
		return nil, nil, artifact.ErrNotFound
	}
	return index, metadata, nil
}

// Stat reports which artifacts of docID are stored.
func (s *Store) Stat(ctx context.Context, docID string) (artifact.Info, error) {
	row := s.db.QueryRowContext(ctx, `SELECT doc_id, length("index"), length(metadata), updated_at FROM doc_artifacts WHERE doc_id = ?`, docID)
	info, err := scanInfo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return artifact.Info{DocID: docID}, nil
	}
	return info, err
}

// Delete removes the row of docID.
func (s *Store) Delete(ctx context.Context, docID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM doc_artifacts WHERE doc_id = ?`, docID)
	return err
}

// List returns every stored document ordered by doc_id.
func (s *Store) List(ctx context.Context) ([]artifact.Info, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc_id, length("index"), length(metadata), updated_at FROM doc_artifacts ORDER BY doc_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []artifact.Info
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, err
		}
		if !info.Exists() {
			continue
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ artifact.Store = (*Store)(nil)

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanInfo(row scanner) (artifact.Info, error) {
	var (
		info      artifact.Info
		indexLen  sql.NullInt64
		metaLen   sql.NullInt64
		updatedAt int64
	)
	if err := row.Scan(&info.DocID, &indexLen, &metaLen, &updatedAt); err != nil {
		return info, err
	}
	info.HasIndex = indexLen.Valid && indexLen.Int64 > 0
	info.HasMetadata = metaLen.Valid && metaLen.Int64 > 0
	info.Size = indexLen.Int64 + metaLen.Int64
	if updatedAt > 0 {
		info.UpdatedAt = time.Unix(0, updatedAt)
	}
	return info, nil
}
