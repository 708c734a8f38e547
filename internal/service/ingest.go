package service

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/cloo-solutions/aula/internal/domain"
	"github.com/cloo-solutions/aula/internal/snapshot"
	"github.com/cloo-solutions/aula/internal/telemetry"
)

const (
	DefaultIngestBatchSize   = 64
	DefaultIngestConcurrency = 4
	DefaultIngestRPS         = 5
)

// ErrEmptyCorpus is returned when there is nothing to ingest.
var ErrEmptyCorpus = domain.NewDomainError(domain.ErrCodeInvalidInput, "no documents found in corpus")

// BatchEmbedder embeds many texts per request, preserving order.
type BatchEmbedder interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// IngestConfig bounds embedding throughput.
type IngestConfig struct {
	BatchSize         int
	Concurrency       int
	RequestsPerSecond float64
}

// IngestInput is one ingest run.
type IngestInput struct {
	Documents []domain.Document
	Reset     bool
}

// IngestResult summarizes an ingest run.
type IngestResult struct {
	Read      int
	Inserted  int
	Documents int
	Dim       int
}

// IngestService stores corpus documents and rebuilds the vector snapshot.
// It is offline tooling; a running server keeps the snapshot it loaded.
type IngestService struct {
	docs      DocumentRepository
	tx        TxRunner
	embedder  BatchEmbedder
	snapshots snapshot.Store
	cfg       IngestConfig
	limiter   *rate.Limiter
}

func NewIngestService(
	docs DocumentRepository,
	tx TxRunner,
	embedder BatchEmbedder,
	snapshots snapshot.Store,
	cfg IngestConfig,
) *IngestService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultIngestBatchSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultIngestConcurrency
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &IngestService{
		docs:      docs,
		tx:        tx,
		embedder:  embedder,
		snapshots: snapshots,
		cfg:       cfg,
		limiter:   rate.NewLimiter(limit, 1),
	}
}

// Run inserts the documents, skipping duplicates, then embeds every stored
// document in ascending id order and saves the matrix.
func (s *IngestService) Run(ctx context.Context, in IngestInput) (*IngestResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "IngestService.Run", telemetry.SpanAttributes{
		Operation: "ingest",
	})
	defer span.End()

	if in.Reset {
		if err := s.reset(ctx); err != nil {
			span.SetError(err)
			return nil, err
		}
	}

	if len(in.Documents) == 0 {
		return nil, ErrEmptyCorpus
	}

	for i := range in.Documents {
		if err := domain.ValidateDocument(&in.Documents[i]); err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInvalidInput,
				fmt.Sprintf("invalid document %q", in.Documents[i].Title), err)
		}
	}

	var inserted int
	err := s.tx.WithTx(ctx, func(repos TxRepositories) error {
		n, err := repos.Documents().InsertDocuments(ctx, in.Documents)
		inserted = n
		return err
	})
	if err != nil {
		span.SetError(err)
		return nil, domain.StorageError("failed to insert documents", err)
	}
	log.Printf("ingest: %d read, %d new", len(in.Documents), inserted)

	stored, err := s.docs.ListDocuments(ctx)
	if err != nil {
		span.SetError(err)
		return nil, domain.StorageError("failed to list documents", err)
	}
	if len(stored) == 0 {
		return nil, ErrEmptyCorpus
	}

	texts := make([]string, len(stored))
	for i, d := range stored {
		texts[i] = d.Text
	}

	vectors, err := s.EmbedAll(ctx, texts)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	m, err := domain.MatrixFromRows(vectors)
	if err != nil {
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeEmbeddingService, "inconsistent embeddings", err)
	}

	if err := s.snapshots.SaveMatrix(ctx, m); err != nil {
		span.SetError(err)
		return nil, domain.StorageError("failed to save vector snapshot", err)
	}
	log.Printf("ingest: saved snapshot with %d rows (dim %d)", m.Rows(), m.Dim())

	return &IngestResult{
		Read:      len(in.Documents),
		Inserted:  inserted,
		Documents: m.Rows(),
		Dim:       m.Dim(),
	}, nil
}

// EmbedAll embeds texts in batches, running up to Concurrency requests at
// once under the rate limit. Output order matches input order.
func (s *IngestService) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for start := 0; start < len(texts); start += s.cfg.BatchSize {
		end := min(start+s.cfg.BatchSize, len(texts))
		g.Go(func() error {
			if err := s.limiter.Wait(gctx); err != nil {
				return err
			}
			log.Printf("ingest: embedding %d-%d of %d", start, end-1, len(texts))

			batch, err := s.embedder.GenerateEmbeddings(gctx, texts[start:end])
			if err != nil {
				return err
			}
			if len(batch) != end-start {
				return domain.NewDomainError(domain.ErrCodeEmbeddingService,
					fmt.Sprintf("expected %d embeddings, got %d", end-start, len(batch)))
			}
			copy(out[start:end], batch)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, asCode(err, domain.ErrCodeEmbeddingService, "failed to embed documents")
	}
	return out, nil
}

func (s *IngestService) reset(ctx context.Context) error {
	err := s.tx.WithTx(ctx, func(repos TxRepositories) error {
		return repos.Documents().DeleteAll(ctx)
	})
	if err != nil {
		return domain.StorageError("failed to clear documents", err)
	}
	if err := s.snapshots.Reset(ctx); err != nil {
		return domain.StorageError("failed to clear vector snapshot", err)
	}
	log.Println("ingest: cleared documents and snapshot")
	return nil
}
