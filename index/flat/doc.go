// Package flat provides an exact vector index that answers kNN queries by
// scanning every row and scoring by inner product. Rows are expected to be
// unit length, which makes the score equal to cosine similarity. It uses a
// compact self-describing binary format for the index artifact.
package flat
