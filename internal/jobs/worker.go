package jobs

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// ErrDone is returned by a processor that has nothing left to do. The
// worker exits when it sees it.
var ErrDone = errors.New("jobs: processor done")

// JobProcessor defines the interface for processing jobs
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker represents a background job worker
type Worker struct {
	name         string
	processor    JobProcessor
	pollInterval time.Duration
	stopChan     chan struct{}
	doneChan     chan struct{}
	stopOnce     sync.Once
}

// NewWorker creates a new Worker instance
func NewWorker(name string, processor JobProcessor, pollInterval time.Duration) *Worker {
	return &Worker{
		name:         name,
		processor:    processor,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start begins the worker's polling loop
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("%s: worker started with poll interval: %v", w.name, w.pollInterval)

	for {
		select {
		case <-ctx.Done():
			log.Printf("%s: worker stopped: context cancelled", w.name)
			return
		case <-w.stopChan:
			log.Printf("%s: worker stopped: stop signal received", w.name)
			return
		case <-ticker.C:
			err := w.processor.ProcessJobs(ctx)
			if errors.Is(err, ErrDone) {
				log.Printf("%s: worker finished", w.name)
				return
			}
			if err != nil {
				log.Printf("%s: error processing jobs: %v", w.name, err)
			}
		}
	}
}

// Done is closed once Start has returned.
func (w *Worker) Done() <-chan struct{} {
	return w.doneChan
}

// Stop gracefully stops the worker. It is safe to call more than once and
// after the worker has finished on its own.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
	<-w.doneChan
	log.Printf("%s: worker shutdown complete", w.name)
}
