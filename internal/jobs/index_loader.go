package jobs

import (
	"context"
	"log"

	"github.com/cloo-solutions/aula/internal/telemetry"
)

// Loader is satisfied by index.Handle.
type Loader interface {
	Load(ctx context.Context) error
	Ready() bool
}

// IndexLoader retries loading the document index until it succeeds.
type IndexLoader struct {
	index Loader
}

// NewIndexLoader creates a processor for a Worker.
func NewIndexLoader(index Loader) *IndexLoader {
	return &IndexLoader{index: index}
}

// ProcessJobs attempts one load. It returns ErrDone once the index is
// loaded and the load error otherwise.
func (l *IndexLoader) ProcessJobs(ctx context.Context) error {
	if l.index.Ready() {
		return ErrDone
	}

	if err := l.index.Load(ctx); err != nil {
		telemetry.AddBreadcrumb(ctx, "index", err.Error())
		return err
	}

	log.Println("index loader: index is ready")
	return ErrDone
}
