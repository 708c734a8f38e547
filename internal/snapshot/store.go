package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cloo-solutions/aula/internal/domain"
	"github.com/cloo-solutions/aula/internal/storage"
)

// Store loads and saves the embedding matrix. Implementations satisfy
// index.VectorSource.
type Store interface {
	LoadMatrix(ctx context.Context) (*domain.Matrix, error)
	SaveMatrix(ctx context.Context, m *domain.Matrix) error
	Reset(ctx context.Context) error
}

// FileStore keeps the snapshot as a local .npy file.
type FileStore struct {
	Path string
}

// NewFileStore creates a FileStore at path
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) LoadMatrix(ctx context.Context) (*domain.Matrix, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	m, err := DecodeNPY(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", s.Path, err)
	}
	return m, nil
}

// SaveMatrix writes to a temporary file and renames it into place.
func (s *FileStore) SaveMatrix(ctx context.Context, m *domain.Matrix) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.Path), ".snapshot-*.npy")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := EncodeNPY(tmp, m); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("failed to move snapshot into place: %w", err)
	}
	return nil
}

func (s *FileStore) Reset(ctx context.Context) error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove snapshot: %w", err)
	}
	return nil
}

// ObjectStore is the subset of storage.S3Client used for snapshots.
type ObjectStore interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	DeleteObject(ctx context.Context, key string) error
}

var _ ObjectStore = (*storage.S3Client)(nil)

// ObjectStoreSnapshot keeps the snapshot as a single object in a bucket.
type ObjectStoreSnapshot struct {
	store ObjectStore
	key   string
}

// NewObjectStoreSnapshot creates a snapshot store over an object key
func NewObjectStoreSnapshot(store ObjectStore, key string) *ObjectStoreSnapshot {
	return &ObjectStoreSnapshot{store: store, key: key}
}

func (s *ObjectStoreSnapshot) LoadMatrix(ctx context.Context) (*domain.Matrix, error) {
	data, err := s.store.GetObject(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}
	m, err := DecodeNPY(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", s.key, err)
	}
	return m, nil
}

func (s *ObjectStoreSnapshot) SaveMatrix(ctx context.Context, m *domain.Matrix) error {
	var buf bytes.Buffer
	if err := EncodeNPY(&buf, m); err != nil {
		return err
	}
	return s.store.PutObject(ctx, s.key, buf.Bytes(), "application/octet-stream")
}

func (s *ObjectStoreSnapshot) Reset(ctx context.Context) error {
	return s.store.DeleteObject(ctx, s.key)
}
