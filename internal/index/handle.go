// Package index holds the in-memory document index: the corpus documents
// and their embedding matrix, loaded once and shared read-only.
package index

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/cloo-solutions/aula/internal/domain"
)

// DocumentSource returns every document ordered by ascending ID.
type DocumentSource interface {
	ListDocuments(ctx context.Context) ([]domain.Document, error)
}

// VectorSource returns the embedding matrix, row-aligned with the
// documents by ascending ID.
type VectorSource interface {
	LoadMatrix(ctx context.Context) (*domain.Matrix, error)
}

// Snapshot is an immutable, validated pairing of documents and vectors.
type Snapshot struct {
	Documents []domain.Document
	Matrix    *domain.Matrix
}

// Result is a retrieved document with its similarity score.
type Result struct {
	Document domain.Document
	Score    float64
}

// Handle owns the loaded snapshot. Load is safe to call concurrently and
// repeatedly; readers never block once it has succeeded.
type Handle struct {
	docs    DocumentSource
	vectors VectorSource

	mu   sync.Mutex
	snap atomic.Pointer[Snapshot]
}

// NewHandle creates a Handle over the given sources. Nothing is read until
// Load is called.
func NewHandle(docs DocumentSource, vectors VectorSource) *Handle {
	return &Handle{docs: docs, vectors: vectors}
}

// Load reads and validates the documents and matrix. It is a no-op once a
// snapshot is loaded. On failure nothing is cached and the error is an
// INDEX_UNAVAILABLE DomainError.
func (h *Handle) Load(ctx context.Context) error {
	if h.snap.Load() != nil {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.snap.Load() != nil {
		return nil
	}

	docs, err := h.docs.ListDocuments(ctx)
	if err != nil {
		return domain.IndexUnavailable("failed to read documents", err)
	}

	m, err := h.vectors.LoadMatrix(ctx)
	if err != nil {
		return domain.IndexUnavailable("failed to read vector snapshot", err)
	}

	snap, err := NewSnapshot(docs, m)
	if err != nil {
		return err
	}

	h.snap.Store(snap)
	log.Printf("index: loaded %d documents (dim %d)", m.Rows(), m.Dim())
	return nil
}

// NewSnapshot validates that docs and m line up row for row.
func NewSnapshot(docs []domain.Document, m *domain.Matrix) (*Snapshot, error) {
	if m == nil || m.Rows() == 0 {
		return nil, domain.IndexUnavailable("vector snapshot is empty", nil)
	}
	if len(docs) != m.Rows() {
		return nil, domain.IndexUnavailable(
			fmt.Sprintf("document table has %d rows but vector snapshot has %d", len(docs), m.Rows()), nil)
	}
	for i := 1; i < len(docs); i++ {
		if docs[i].ID <= docs[i-1].ID {
			return nil, domain.IndexUnavailable(
				fmt.Sprintf("documents not in ascending id order at row %d", i), nil)
		}
	}
	return &Snapshot{Documents: docs, Matrix: m}, nil
}

// Ready reports whether a snapshot has been loaded.
func (h *Handle) Ready() bool {
	return h.snap.Load() != nil
}

// Snapshot returns the loaded snapshot or an INDEX_UNAVAILABLE error.
func (h *Handle) Snapshot() (*Snapshot, error) {
	s := h.snap.Load()
	if s == nil {
		return nil, domain.IndexUnavailable("index not loaded", nil)
	}
	return s, nil
}

// Search ranks the snapshot against query and returns the top k documents.
func (s *Snapshot) Search(query []float32, k int) ([]Result, error) {
	hits, err := Rank(query, s.Matrix, k)
	if err != nil {
		return nil, err
	}
	out := make([]Result, len(hits))
	for i, hit := range hits {
		out[i] = Result{Document: s.Documents[hit.Index], Score: hit.Score}
	}
	return out, nil
}

// Topics returns the distinct non-empty document topics in corpus order.
func (s *Snapshot) Topics() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, d := range s.Documents {
		if d.Topic == "" {
			continue
		}
		if _, ok := seen[d.Topic]; ok {
			continue
		}
		seen[d.Topic] = struct{}{}
		out = append(out, d.Topic)
	}
	return out
}
