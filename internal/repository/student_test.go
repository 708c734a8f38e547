//go:build integration

package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/aula/internal/domain"
)

func TestStudentRepository_EnsureStudent(t *testing.T) {
	ctx, pool := setupPool(t)
	repo := NewStudentRepository(pool)

	first, err := repo.EnsureStudent(ctx, "Lucía", 9, "4º")
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, 9, first.Age)

	// same name returns the existing row unchanged
	second, err := repo.EnsureStudent(ctx, "Lucía", 11, "6º")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 9, second.Age)
	assert.Equal(t, "4º", second.Grade)

	other, err := repo.EnsureStudent(ctx, "Mateo", 10, "5º")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestStudentRepository_GetByID(t *testing.T) {
	ctx, pool := setupPool(t)
	repo := NewStudentRepository(pool)

	created, err := repo.EnsureStudent(ctx, "Alumno API", 10, "4º")
	require.NoError(t, err)

	found, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alumno API", found.Name)

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrStudentNotFound)

	_, err = repo.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrStudentNotFound)
}
