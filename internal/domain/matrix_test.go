package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatrix(t *testing.T) {
	m, err := NewMatrix(2, 2, []float32{3, 4, 0, 0})
	require.NoError(t, err)

	assert.Equal(t, 2, m.Rows())
	assert.Equal(t, 2, m.Dim())
	assert.Equal(t, []float32{3, 4}, m.Row(0))
	assert.InDelta(t, 5.0, m.RowNorm(0), 1e-9)
	assert.Equal(t, 0.0, m.RowNorm(1))
}

func TestNewMatrix_ShapeMismatch(t *testing.T) {
	_, err := NewMatrix(2, 3, []float32{1, 2, 3})
	assert.Error(t, err)
}

func TestMatrixFromRows(t *testing.T) {
	m, err := MatrixFromRows([][]float32{{1, 0}, {0, 1}, {1, 1}})
	require.NoError(t, err)
	assert.Equal(t, 3, m.Rows())
	assert.Equal(t, []float32{1, 1}, m.Row(2))

	_, err = MatrixFromRows([][]float32{{1, 0}, {1}})
	assert.Error(t, err)

	empty, err := MatrixFromRows(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Rows())
}
