package flat

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/viant/docvec/index"
	"github.com/viant/docvec/internal/topk"
	"github.com/viant/docvec/vector"
)

// Magic prefixes every serialized flat index.
const Magic = "FIP1"

const headerSize = len(Magic) + 8

// ErrCorrupt is returned by UnmarshalBinary for malformed data.
var ErrCorrupt = errors.New("flat: corrupt index data")

// Index is an exact inner-product index.
type Index struct {
	dim  int
	vecs [][]float32
}

var _ index.Index = (*Index)(nil)

// Build copies vectors into the index.
func (i *Index) Build(vectors [][]float32) error {
	if len(vectors) == 0 {
		i.vecs, i.dim = nil, 0
		return nil
	}
	dim := len(vectors[0])
	if dim == 0 {
		return fmt.Errorf("flat: zero-length vector")
	}
	vecs := make([][]float32, len(vectors))
	for j, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("flat: inconsistent vector dims %d vs %d at row %d", len(v), dim, j)
		}
		vecs[j] = append([]float32(nil), v...)
	}
	i.vecs = vecs
	i.dim = dim
	return nil
}

// Query returns the k rows with the highest inner product, ties broken by
// insertion order.
func (i *Index) Query(query []float32, k int) ([]int, []float64, error) {
	if i.dim == 0 || len(i.vecs) == 0 {
		return nil, nil, nil
	}
	if len(query) != i.dim {
		return nil, nil, fmt.Errorf("flat: query dim %d != index dim %d", len(query), i.dim)
	}
	if k <= 0 || k > len(i.vecs) {
		k = len(i.vecs)
	}
	sel := topk.New(k)
	for j, v := range i.vecs {
		sel.Push(j, vector.Dot(query, v))
	}
	best := sel.Sorted()
	positions := make([]int, len(best))
	scores := make([]float64, len(best))
	for n, c := range best {
		positions[n] = c.Pos
		scores[n] = c.Score
	}
	return positions, scores, nil
}

// Len returns the number of rows.
func (i *Index) Len() int { return len(i.vecs) }

// Dimension returns the row dimension.
func (i *Index) Dimension() int { return i.dim }

// Vector returns row pos. The returned slice must not be modified.
func (i *Index) Vector(pos int) []float32 { return i.vecs[pos] }

// MarshalBinary stores: magic, dim(uint32), n(uint32), then n*dim float32,
// all little-endian.
func (i *Index) MarshalBinary() ([]byte, error) {
	out := make([]byte, headerSize, headerSize+4*i.dim*len(i.vecs))
	copy(out, Magic)
	binary.LittleEndian.PutUint32(out[len(Magic):], uint32(i.dim))
	binary.LittleEndian.PutUint32(out[len(Magic)+4:], uint32(len(i.vecs)))
	for _, v := range i.vecs {
		out = vector.AppendEmbedding(out, v)
	}
	return out, nil
}

// UnmarshalBinary restores the index from bytes. The payload length must
// match the header exactly.
func (i *Index) UnmarshalBinary(data []byte) error {
	if len(data) < headerSize || string(data[:len(Magic)]) != Magic {
		return fmt.Errorf("%w: missing header", ErrCorrupt)
	}
	dim := int(binary.LittleEndian.Uint32(data[len(Magic):]))
	n := int(binary.LittleEndian.Uint32(data[len(Magic)+4:]))
	body := data[headerSize:]
	if (n > 0 && dim == 0) || uint64(len(body)) != uint64(n)*uint64(dim)*4 {
		return fmt.Errorf("%w: header says %d x %d, payload has %d bytes", ErrCorrupt, n, dim, len(body))
	}
	vecs := make([][]float32, n)
	rowSize := dim * 4
	for j := 0; j < n; j++ {
		v, err := vector.DecodeEmbedding(body[j*rowSize : (j+1)*rowSize])
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		vecs[j] = v
	}
	if n == 0 {
		i.vecs, i.dim = nil, 0
		return nil
	}
	i.vecs = vecs
	i.dim = dim
	return nil
}
