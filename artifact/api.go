package artifact

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Load when either artifact of a document is
// missing.
var ErrNotFound = errors.New("artifact: not found")

// Info describes which artifacts exist for a document.
type Info struct {
	DocID       string
	HasIndex    bool
	HasMetadata bool
	// HasSource reports a stored original upload (e.g. the PDF), when the
	// store keeps sources.
	HasSource bool
	// Size is the combined byte size of the stored artifacts and source.
	Size      int64
	UpdatedAt time.Time
}

// Complete reports whether both index artifacts are present.
func (i Info) Complete() bool { return i.HasIndex && i.HasMetadata }

// Exists reports whether anything is stored for the document.
func (i Info) Exists() bool { return i.HasIndex || i.HasMetadata || i.HasSource }

// Store persists the two artifacts of every document.
type Store interface {
	// Save writes both artifacts, replacing prior ones.
	Save(ctx context.Context, docID string, index, metadata []byte) error

	// Load returns both artifacts, or ErrNotFound when either is missing.
	Load(ctx context.Context, docID string) (index, metadata []byte, err error)

	// Stat reports which artifacts exist. A document with nothing stored
	// yields an Info with every flag false and a nil error.
	Stat(ctx context.Context, docID string) (Info, error)

	// Delete removes every artifact of the document. Missing artifacts are
	// not an error.
	Delete(ctx context.Context, docID string) error

	// List enumerates every known document ordered by DocID, complete or not.
	List(ctx context.Context) ([]Info, error)
}

// SourceSaver is implemented by stores that also keep the original upload.
type SourceSaver interface {
	SaveSource(ctx context.Context, docID string, data []byte) error
}
