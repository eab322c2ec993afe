// Package vector holds the numeric helpers shared by the index packages:
//   - L2 normalisation and magnitude (backed by github.com/viant/vec)
//   - inner product and cosine similarity
//   - little-endian float32 encoding used by the index artifact
package vector
