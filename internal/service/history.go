package service

import (
	"context"
	"errors"
	"strings"

	"github.com/cloo-solutions/aula/internal/domain"
	"github.com/cloo-solutions/aula/internal/pagination"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// ListInteractionsInput selects one page of a student's history.
type ListInteractionsInput struct {
	StudentID string
	Cursor    string
	Limit     int
}

// HistoryService reads the interaction log.
type HistoryService struct {
	interactions InteractionRepository
	students     StudentRepository
}

func NewHistoryService(interactions InteractionRepository, students StudentRepository) *HistoryService {
	return &HistoryService{interactions: interactions, students: students}
}

// List returns interactions newest first.
func (s *HistoryService) List(ctx context.Context, in ListInteractionsInput) (*InteractionPageResult, error) {
	studentID := strings.TrimSpace(in.StudentID)
	if studentID == "" {
		return nil, domain.NewDomainError(domain.ErrCodeInvalidInput, "student_id is required")
	}

	limit := pagination.ClampLimit(in.Limit, DefaultHistoryLimit, MaxHistoryLimit)

	cursor, err := pagination.DecodeCursor(in.Cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInvalidInput, "invalid cursor", err)
	}

	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, domain.ErrStudentNotFound) {
			return nil, err
		}
		return nil, domain.StorageError("failed to look up student", err)
	}

	page, err := s.interactions.ListByStudent(ctx, studentID, cursor, limit)
	if err != nil {
		return nil, domain.StorageError("failed to list interactions", err)
	}
	return page, nil
}
