package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cloo-solutions/aula/internal/domain"
	"github.com/cloo-solutions/aula/internal/index"
	"github.com/cloo-solutions/aula/internal/pagination"
	"github.com/cloo-solutions/aula/internal/topic"
)

// MockDocumentRepository is a mock implementation of DocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) InsertDocuments(ctx context.Context, docs []domain.Document) (int, error) {
	args := m.Called(ctx, docs)
	return args.Int(0), args.Error(1)
}

func (m *MockDocumentRepository) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockInteractionRepository is a mock implementation of InteractionRepository
type MockInteractionRepository struct {
	mock.Mock
}

func (m *MockInteractionRepository) Record(ctx context.Context, i *domain.Interaction) (string, error) {
	args := m.Called(ctx, i)
	return args.String(0), args.Error(1)
}

func (m *MockInteractionRepository) ListByStudent(ctx context.Context, studentID string, cursor *pagination.Cursor, limit int) (*InteractionPageResult, error) {
	args := m.Called(ctx, studentID, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*InteractionPageResult), args.Error(1)
}

// MockStudentRepository is a mock implementation of StudentRepository
type MockStudentRepository struct {
	mock.Mock
}

func (m *MockStudentRepository) EnsureStudent(ctx context.Context, name string, age int, grade string) (*domain.Student, error) {
	args := m.Called(ctx, name, age, grade)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}

func (m *MockStudentRepository) GetByID(ctx context.Context, id string) (*domain.Student, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}

// MockEmbedder implements Embedder and BatchEmbedder
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

// MockGenerator is a mock implementation of Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	args := m.Called(ctx, system, prompt)
	return args.String(0), args.Error(1)
}

// MockAssetSelector is a mock implementation of AssetSelector
type MockAssetSelector struct {
	mock.Mock
}

func (m *MockAssetSelector) Select(ctx context.Context, t topic.Topic, question string) (string, bool) {
	args := m.Called(ctx, t, question)
	return args.String(0), args.Bool(1)
}

// MockSnapshotStore is a mock implementation of snapshot.Store
type MockSnapshotStore struct {
	mock.Mock
}

func (m *MockSnapshotStore) LoadMatrix(ctx context.Context) (*domain.Matrix, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Matrix), args.Error(1)
}

func (m *MockSnapshotStore) SaveMatrix(ctx context.Context, mat *domain.Matrix) error {
	args := m.Called(ctx, mat)
	return args.Error(0)
}

func (m *MockSnapshotStore) Reset(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type fakeIndex struct {
	snap *index.Snapshot
	err  error
}

func (f *fakeIndex) Snapshot() (*index.Snapshot, error) {
	return f.snap, f.err
}
