package index

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/vivian-xia/reviewrag/embedding"
)

// File format: magic, version, dim (uint32), count (uint64), then
// count*dim little-endian float32 values in row-major order.
const (
	flatMagic         = "RRFI"
	flatFormatVersion = uint32(1)
)

// FlatIndex is an in-memory flat vector index. Vectors are stored
// unit-normalized, so a dot product against a normalized query equals
// cosine similarity.
type FlatIndex struct {
	dim     int
	vectors [][]float64
}

// NewFlatIndex creates an empty FlatIndex for vectors of the given
// dimensionality.
func NewFlatIndex(dim int) (*FlatIndex, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("dimension must be positive, got %d", dim)
	}
	return &FlatIndex{dim: dim}, nil
}

// Add appends vectors, normalizing each to unit L2 length. Zero vectors
// are rejected: they carry no direction and would corrupt similarity
// scores silently.
func (f *FlatIndex) Add(ctx context.Context, vectors [][]float64) error {
	for i, v := range vectors {
		if len(v) != f.dim {
			return fmt.Errorf("vector %d has dimension %d, index expects %d", i, len(v), f.dim)
		}
		normalized, err := embedding.Normalize(v)
		if err != nil {
			return fmt.Errorf("vector %d: %w", i, err)
		}
		f.vectors = append(f.vectors, normalized)
	}
	return nil
}

// Reconstruct returns the stored vectors for the given rows, in the
// exact order requested. The returned vectors are copies.
func (f *FlatIndex) Reconstruct(ctx context.Context, rows []int) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		if row < 0 || row >= len(f.vectors) {
			return nil, fmt.Errorf("row %d out of range [0, %d)", row, len(f.vectors))
		}
		vec := make([]float64, f.dim)
		copy(vec, f.vectors[row])
		out[i] = vec
	}
	return out, nil
}

// Len returns the number of stored vectors.
func (f *FlatIndex) Len() int {
	return len(f.vectors)
}

// Dim returns the vector dimensionality.
func (f *FlatIndex) Dim() int {
	return f.dim
}

// Save writes the index to path in the flat binary format.
func (f *FlatIndex) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create index file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if _, err := w.WriteString(flatMagic); err != nil {
		return fmt.Errorf("failed to write index header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, flatFormatVersion); err != nil {
		return fmt.Errorf("failed to write index version: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(f.dim)); err != nil {
		return fmt.Errorf("failed to write index dimension: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(f.vectors))); err != nil {
		return fmt.Errorf("failed to write index count: %w", err)
	}

	buf := make([]float32, f.dim)
	for _, vec := range f.vectors {
		for i, v := range vec {
			buf[i] = float32(v)
		}
		if err := binary.Write(w, binary.LittleEndian, buf); err != nil {
			return fmt.Errorf("failed to write index vectors: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush index file: %w", err)
	}
	return nil
}

// LoadFlatIndex reads an index from path. Vectors are re-normalized on
// load; similarity scoring requires unit vectors and artifacts built
// elsewhere may not have them.
func LoadFlatIndex(path string) (*FlatIndex, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index file: %w", err)
	}
	defer file.Close()

	return ReadFlatIndex(bufio.NewReader(file))
}

// ReadFlatIndex reads an index in the flat binary format from r.
func ReadFlatIndex(r io.Reader) (*FlatIndex, error) {
	magic := make([]byte, len(flatMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("failed to read index header: %w", err)
	}
	if string(magic) != flatMagic {
		return nil, fmt.Errorf("not a flat index file (bad magic %q)", magic)
	}

	var version, dim uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("failed to read index version: %w", err)
	}
	if version != flatFormatVersion {
		return nil, fmt.Errorf("unsupported index format version %d", version)
	}
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return nil, fmt.Errorf("failed to read index dimension: %w", err)
	}
	var count uint64
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("failed to read index count: %w", err)
	}
	if dim == 0 {
		return nil, fmt.Errorf("index dimension must be positive")
	}

	idx, err := NewFlatIndex(int(dim))
	if err != nil {
		return nil, err
	}

	buf := make([]float32, dim)
	for row := uint64(0); row < count; row++ {
		if err := binary.Read(r, binary.LittleEndian, buf); err != nil {
			return nil, fmt.Errorf("failed to read vector at row %d: %w", row, err)
		}
		vec := make([]float64, dim)
		var norm float64
		for i, v := range buf {
			vec[i] = float64(v)
			norm += float64(v) * float64(v)
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			return nil, fmt.Errorf("zero vector at row %d", row)
		}
		for i := range vec {
			vec[i] /= norm
		}
		idx.vectors = append(idx.vectors, vec)
	}

	return idx, nil
}

var (
	_ VectorIndex = (*FlatIndex)(nil)
	_ Writer      = (*FlatIndex)(nil)
)
