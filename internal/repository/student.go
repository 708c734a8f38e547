package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/aula/internal/domain"
)

type StudentRepository struct {
	db dbtx
}

func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{db: pool}
}

// EnsureStudent inserts the student if the name is new and returns the
// stored row either way. Age and grade of an existing student are kept.
func (r *StudentRepository) EnsureStudent(ctx context.Context, name string, age int, grade string) (*domain.Student, error) {
	var s domain.Student
	var storedAge *int32
	err := r.db.QueryRow(ctx,
		`INSERT INTO students (name, age, grade)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id, name, age, grade, created_at`,
		name, age, grade,
	).Scan(&s.ID, &s.Name, &storedAge, &s.Grade, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	if storedAge != nil {
		s.Age = int(*storedAge)
	}
	return &s, nil
}

func (r *StudentRepository) GetByID(ctx context.Context, id string) (*domain.Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrStudentNotFound
	}

	var s domain.Student
	var age *int32
	err := r.db.QueryRow(ctx,
		`SELECT id, name, age, grade, created_at FROM students WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.Name, &age, &s.Grade, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStudentNotFound
		}
		return nil, err
	}
	if age != nil {
		s.Age = int(*age)
	}
	return &s, nil
}
