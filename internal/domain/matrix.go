package domain

import (
	"fmt"
	"math"
)

// Matrix is a dense row-major float32 matrix. It is immutable once built;
// row norms are computed up front so ranking only needs dot products.
type Matrix struct {
	rows  int
	dim   int
	data  []float32
	norms []float64
}

// NewMatrix wraps data as a rows x dim matrix. The slice is not copied and
// must not be modified afterwards.
func NewMatrix(rows, dim int, data []float32) (*Matrix, error) {
	if rows < 0 || dim < 0 {
		return nil, fmt.Errorf("matrix shape must be non-negative: %dx%d", rows, dim)
	}
	if len(data) != rows*dim {
		return nil, fmt.Errorf("matrix data has %d values, want %d", len(data), rows*dim)
	}

	m := &Matrix{rows: rows, dim: dim, data: data, norms: make([]float64, rows)}
	for i := 0; i < rows; i++ {
		m.norms[i] = Norm(m.Row(i))
	}
	return m, nil
}

// MatrixFromRows copies equally sized vectors into a new Matrix.
func MatrixFromRows(vectors [][]float32) (*Matrix, error) {
	if len(vectors) == 0 {
		return NewMatrix(0, 0, nil)
	}
	dim := len(vectors[0])
	data := make([]float32, 0, len(vectors)*dim)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("row %d has dimension %d, want %d", i, len(v), dim)
		}
		data = append(data, v...)
	}
	return NewMatrix(len(vectors), dim, data)
}

func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Dim() int  { return m.dim }

// Row returns a view of row i.
func (m *Matrix) Row(i int) []float32 {
	return m.data[i*m.dim : (i+1)*m.dim]
}

// RowNorm returns the precomputed L2 norm of row i.
func (m *Matrix) RowNorm(i int) float64 {
	return m.norms[i]
}

// Data returns the backing slice in row-major order.
func (m *Matrix) Data() []float32 {
	return m.data
}

// Norm returns the L2 norm of v.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
