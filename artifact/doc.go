// Package artifact defines where document indexes are persisted. Each
// document owns two artifacts keyed by its doc_id: the binary index blob and
// the chunk metadata. A document with only one of them is incomplete.
package artifact
