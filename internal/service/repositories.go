package service

import (
	"context"

	"github.com/cloo-solutions/aula/internal/domain"
	"github.com/cloo-solutions/aula/internal/pagination"
)

// DocumentRepository persists corpus documents.
type DocumentRepository interface {
	// InsertDocuments stores docs, skipping exact duplicates, and returns how
	// many rows were new.
	InsertDocuments(ctx context.Context, docs []domain.Document) (int, error)
	// ListDocuments returns every document ordered by ascending ID.
	ListDocuments(ctx context.Context) ([]domain.Document, error)
	DeleteAll(ctx context.Context) error
}

// InteractionRepository is the append-only interaction log.
type InteractionRepository interface {
	Record(ctx context.Context, i *domain.Interaction) (string, error)
	ListByStudent(ctx context.Context, studentID string, cursor *pagination.Cursor, limit int) (*InteractionPageResult, error)
}

// StudentRepository stores learners.
type StudentRepository interface {
	// EnsureStudent returns the student with this name, creating it first
	// if needed.
	EnsureStudent(ctx context.Context, name string, age int, grade string) (*domain.Student, error)
	GetByID(ctx context.Context, id string) (*domain.Student, error)
}

// InteractionPageResult is one page of interactions, newest first.
type InteractionPageResult struct {
	Items      []*domain.Interaction
	NextCursor string
	HasMore    bool
}
