package index

import (
	"fmt"
	"sort"

	"github.com/cloo-solutions/aula/internal/domain"
)

// Hit is a ranked matrix row.
type Hit struct {
	Index int
	Score float64
}

// Rank scores every row of m by cosine similarity to query and returns the
// top k, best first. Equal scores keep ascending row order. k is clamped to
// [0, rows]. Zero vectors score 0.
func Rank(query []float32, m *domain.Matrix, k int) ([]Hit, error) {
	if m == nil {
		return nil, domain.ErrIndexUnavailable
	}
	if m.Rows() > 0 && len(query) != m.Dim() {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeIndexUnavailable,
			fmt.Sprintf("query dimension %d does not match index dimension %d", len(query), m.Dim()),
			domain.ErrDimensionMismatch)
	}

	if k < 0 {
		k = 0
	}
	if k > m.Rows() {
		k = m.Rows()
	}
	if k == 0 {
		return []Hit{}, nil
	}

	qNorm := domain.Norm(query)
	hits := make([]Hit, m.Rows())
	for i := range hits {
		hits[i] = Hit{Index: i, Score: cosine(query, qNorm, m.Row(i), m.RowNorm(i))}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Score > hits[b].Score
	})

	return hits[:k], nil
}

func cosine(q []float32, qNorm float64, row []float32, rowNorm float64) float64 {
	if qNorm == 0 || rowNorm == 0 {
		return 0
	}
	var dot float64
	for i := range q {
		dot += float64(q[i]) * float64(row[i])
	}
	return dot / (qNorm * rowNorm)
}
