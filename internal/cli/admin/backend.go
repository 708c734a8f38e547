package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	gopenai "github.com/sashabaranov/go-openai"

	"github.com/cloo-solutions/aula/internal/config"
	"github.com/cloo-solutions/aula/internal/database"
	"github.com/cloo-solutions/aula/internal/domain"
	"github.com/cloo-solutions/aula/internal/openai"
	"github.com/cloo-solutions/aula/internal/repository"
	"github.com/cloo-solutions/aula/internal/repository/sqlite"
	"github.com/cloo-solutions/aula/internal/service"
	"github.com/cloo-solutions/aula/internal/snapshot"
	"github.com/cloo-solutions/aula/internal/storage"
)

// backend bundles the repositories and snapshot store selected by config.
type backend struct {
	Documents    service.DocumentRepository
	Students     service.StudentRepository
	Interactions service.InteractionRepository
	Tx           service.TxRunner
	Snapshots    snapshot.Store

	closers []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openBackend connects to the configured database, applying migrations
// unless migrations is false, and builds the snapshot store.
func openBackend(ctx context.Context, cfg *config.Config, migrations bool) (*backend, error) {
	b := &backend{}
	var pool *pgxpool.Pool

	if cfg.IsSQLite() {
		store, err := sqlite.NewStore(cfg.SQLitePath())
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		b.closers = append(b.closers, func() { store.Close() })
		log.Printf("connected to sqlite database %s", store.Path())

		b.Documents = store.Documents()
		b.Students = store.Students()
		b.Interactions = store.Interactions()
		b.Tx = store
	} else {
		var err error
		pool, err = database.NewPool(ctx, database.Config{
			URL:      cfg.DatabaseURL,
			MaxConns: cfg.DatabaseMaxConns,
			MinConns: cfg.DatabaseMinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		b.closers = append(b.closers, pool.Close)
		log.Println("connected to database")

		if migrations {
			if err := runMigrations(cfg.DatabaseURL); err != nil {
				b.Close()
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		b.Documents = repository.NewDocumentRepository(pool)
		b.Students = repository.NewStudentRepository(pool)
		b.Interactions = repository.NewInteractionRepository(pool)
		b.Tx = repository.NewTxRunner(pool)
	}

	snapshots, err := openSnapshots(ctx, cfg, pool)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.Snapshots = snapshots

	return b, nil
}

func openSnapshots(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) (snapshot.Store, error) {
	switch cfg.SnapshotBackend {
	case config.SnapshotS3:
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    cfg.S3Endpoint != "",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		if meta, err := s3Client.HeadObject(ctx, cfg.SnapshotKey); err == nil {
			log.Printf("snapshot: s3://%s/%s (%d bytes)", cfg.S3Bucket, cfg.SnapshotKey, meta.ContentLength)
		} else {
			log.Printf("snapshot: s3://%s/%s (not found yet)", cfg.S3Bucket, cfg.SnapshotKey)
		}
		return snapshot.NewObjectStoreSnapshot(s3Client, cfg.SnapshotKey), nil

	case config.SnapshotPostgres:
		if pool == nil {
			return nil, fmt.Errorf("snapshot backend %q requires a postgres database", cfg.SnapshotBackend)
		}
		log.Println("snapshot: postgres doc_embeddings")
		return repository.NewEmbeddingRepository(pool), nil

	default:
		log.Printf("snapshot: file %s", cfg.SnapshotPath)
		return snapshot.NewFileStore(cfg.SnapshotPath), nil
	}
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	upToDate := err == migrate.ErrNoChange

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	switch {
	case err == migrate.ErrNilVersion:
		log.Println("migrations: no migrations applied")
	case dirty:
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	case upToDate:
		log.Printf("migrations: database is up to date (version %d)", version)
	default:
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}

// newAIClient returns the OpenAI client, or nil when no key is configured.
func newAIClient(cfg *config.Config) *openai.Client {
	if !cfg.HasOpenAI() {
		return nil
	}
	return openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		BaseURL:             cfg.OpenAIBaseURL,
		EmbeddingModel:      gopenai.EmbeddingModel(cfg.EmbeddingModel),
		EmbeddingDimensions: cfg.EmbeddingDimensions,
		ChatModel:           cfg.ChatModel,
		Temperature:         cfg.ChatTemperature,
		MaxTokens:           cfg.ChatMaxTokens,
	})
}

// NoOpAI stands in for the model provider when none is configured.
type NoOpAI struct{}

const errAINotConfigured = "model provider not configured: AULA_OPENAI_API_KEY required"

func (NoOpAI) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return nil, domain.NewDomainError(domain.ErrCodeEmbeddingService, errAINotConfigured)
}

func (NoOpAI) Generate(ctx context.Context, system, prompt string) (string, error) {
	return "", domain.NewDomainError(domain.ErrCodeGenerationService, errAINotConfigured)
}
