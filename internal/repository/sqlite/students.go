package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/cloo-solutions/aula/internal/domain"
)

// StudentStore implements service.StudentRepository over the users table.
type StudentStore struct {
	db querier
}

func (s *StudentStore) EnsureStudent(ctx context.Context, name string, age int, grade string) (*domain.Student, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (username, age, grade, created_at) VALUES (?, ?, ?, ?)`,
		name, age, grade, formatTime(now()),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting user: %w", err)
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, age, grade, created_at FROM users WHERE username = ?`, name)
	return scanStudent(row)
}

func (s *StudentStore) GetByID(ctx context.Context, id string) (*domain.Student, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, domain.ErrStudentNotFound
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, age, grade, created_at FROM users WHERE id = ?`, n)
	return scanStudent(row)
}

func scanStudent(row *sql.Row) (*domain.Student, error) {
	var id int64
	var name, grade, created sql.NullString
	var age sql.NullInt64
	if err := row.Scan(&id, &name, &age, &grade, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrStudentNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return &domain.Student{
		ID:        strconv.FormatInt(id, 10),
		Name:      name.String,
		Age:       int(age.Int64),
		Grade:     grade.String,
		CreatedAt: parseTime(created.String),
	}, nil
}
