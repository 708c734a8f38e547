package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Snapshot backends
const (
	SnapshotFile     = "file"
	SnapshotS3       = "s3"
	SnapshotPostgres = "postgres"
)

const sqliteScheme = "sqlite://"

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	// postgres://... or sqlite://path/to/db.sqlite
	DatabaseURL      string `envconfig:"DATABASE_URL" required:"true"`
	DatabaseMaxConns int32  `envconfig:"DATABASE_MAX_CONNS" default:"10"`
	DatabaseMinConns int32  `envconfig:"DATABASE_MIN_CONNS" default:"0"`

	OpenAIAPIKey        string  `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL       string  `envconfig:"OPENAI_BASE_URL"`
	EmbeddingModel      string  `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	EmbeddingDimensions int     `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`
	ChatModel           string  `envconfig:"CHAT_MODEL" default:"gpt-4o-mini"`
	ChatTemperature     float32 `envconfig:"CHAT_TEMPERATURE" default:"0.2"`
	ChatMaxTokens       int     `envconfig:"CHAT_MAX_TOKENS" default:"450"`

	SnapshotBackend string `envconfig:"SNAPSHOT_BACKEND" default:"file"`
	SnapshotPath    string `envconfig:"SNAPSHOT_PATH" default:"vecs/all_emb.npy"`
	SnapshotKey     string `envconfig:"SNAPSHOT_KEY" default:"vecs/all_emb.npy"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"aula-snapshots"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	DataDir      string `envconfig:"DATA_DIR" default:"data"`
	VideoDir     string `envconfig:"VIDEO_DIR" default:"assets/videos"`
	PromptsFile  string `envconfig:"PROMPTS_FILE"`
	RetrievalK   int    `envconfig:"RETRIEVAL_K" default:"3"`
	SnippetChars int    `envconfig:"SNIPPET_CHARS" default:"400"`

	IndexRetryInterval time.Duration `envconfig:"INDEX_RETRY_INTERVAL" default:"30s"`

	IngestBatchSize   int     `envconfig:"INGEST_BATCH_SIZE" default:"64"`
	IngestConcurrency int     `envconfig:"INGEST_CONCURRENCY" default:"4"`
	IngestRPS         float64 `envconfig:"INGEST_RPS" default:"5"`

	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("AULA", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	switch c.SnapshotBackend {
	case SnapshotFile, SnapshotPostgres:
	case SnapshotS3:
		if !c.HasS3() {
			return fmt.Errorf("SNAPSHOT_BACKEND=s3 requires S3_ENDPOINT, S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY")
		}
	default:
		return fmt.Errorf("invalid SNAPSHOT_BACKEND %q (expected file, s3 or postgres)", c.SnapshotBackend)
	}

	if c.SnapshotBackend == SnapshotPostgres && c.IsSQLite() {
		return fmt.Errorf("SNAPSHOT_BACKEND=postgres requires a postgres DATABASE_URL")
	}

	if c.EmbeddingDimensions <= 0 {
		return fmt.Errorf("EMBEDDING_DIMENSIONS must be positive")
	}

	return nil
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

// IsSQLite reports whether DatabaseURL points at a SQLite file.
func (c *Config) IsSQLite() bool {
	return strings.HasPrefix(c.DatabaseURL, sqliteScheme)
}

// SQLitePath returns the file path of a sqlite:// DatabaseURL.
func (c *Config) SQLitePath() string {
	return strings.TrimPrefix(c.DatabaseURL, sqliteScheme)
}

// TracesSampleRate samples everything in development and 10% elsewhere.
func (c *Config) TracesSampleRate() float64 {
	if c.Environment == "development" {
		return 1.0
	}
	return 0.1
}
