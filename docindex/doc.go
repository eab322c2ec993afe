// Package docindex implements the per-document vector index: one exact
// inner-product index over unit-normalised chunk embeddings plus the chunk
// metadata aligned with it row by row.
//
// An index is persisted as two artifacts keyed by its doc_id (see package
// artifact): the binary index blob and a JSON array of chunks. Load reports
// a missing artifact as absent (ok == false) and unreadable or inconsistent
// artifacts as ErrCorruptArtifact.
package docindex
