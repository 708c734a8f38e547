package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/aula/internal/domain"
	"github.com/cloo-solutions/aula/internal/pagination"
	"github.com/cloo-solutions/aula/internal/service"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "db.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func TestNewStore_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "db.sqlite")

	first, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewStore(path)
	require.NoError(t, err)
	defer second.Close()

	var n int
	require.NoError(t, second.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n))
	assert.Equal(t, 2, n)
	assert.Equal(t, path, second.Path())
}

func TestDocumentStore(t *testing.T) {
	ctx := context.Background()
	docs := setupTestStore(t).Documents()

	batch := []domain.Document{
		{Kind: domain.DocumentKindTheory, Title: "suma_llevando_2", Topic: "suma", Grade: "2", Text: "Para sumar llevando..."},
		{Kind: domain.DocumentKindExercise, Title: "Ejercicio: resta", Topic: "resta", Grade: "3", Text: "Enunciado: 9-4\nSolucion: 5"},
	}

	n, err := docs.InsertDocuments(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = docs.InsertDocuments(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "duplicates are ignored")

	listed, err := docs.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Less(t, listed[0].ID, listed[1].ID)
	assert.Equal(t, "suma_llevando_2", listed[0].Title)
	assert.Equal(t, domain.DocumentKindExercise, listed[1].Kind)

	require.NoError(t, docs.DeleteAll(ctx))
	listed, err = docs.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestStudentStore_EnsureStudent(t *testing.T) {
	ctx := context.Background()
	students := setupTestStore(t).Students()

	s1, err := students.EnsureStudent(ctx, domain.DefaultStudentName, domain.DefaultStudentAge, domain.DefaultStudentGrade)
	require.NoError(t, err)
	assert.NotEmpty(t, s1.ID)
	assert.Equal(t, 10, s1.Age)
	assert.Equal(t, "4º", s1.Grade)

	s2, err := students.EnsureStudent(ctx, domain.DefaultStudentName, 11, "5º")
	require.NoError(t, err)
	assert.Equal(t, s1.ID, s2.ID)
	assert.Equal(t, 10, s2.Age, "existing student is not modified")

	got, err := students.GetByID(ctx, s1.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultStudentName, got.Name)

	_, err = students.GetByID(ctx, "999")
	assert.ErrorIs(t, err, domain.ErrStudentNotFound)
	_, err = students.GetByID(ctx, "not-a-number")
	assert.ErrorIs(t, err, domain.ErrStudentNotFound)
}

func TestInteractionStore(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	student, err := store.Students().EnsureStudent(ctx, "Lucía", 8, "3º")
	require.NoError(t, err)

	log := store.Interactions()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	two := 2
	solved := true

	var ids []string
	for i := 0; i < 5; i++ {
		it := domain.NewInteraction(student.ID, "¿Cuánto es 7+5?", "12", domain.IntentQuestion, "suma", nil, base.Add(time.Duration(i)*time.Minute))
		if i == 4 {
			it.Intent = domain.IntentExercises
			it.Difficulty = &two
			it.Solved = &solved
		}
		id, err := log.Record(ctx, it)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	page, err := log.ListByStudent(ctx, student.ID, nil, 3)
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.True(t, page.HasMore)
	assert.Equal(t, ids[4], page.Items[0].ID)
	require.NotNil(t, page.Items[0].Difficulty)
	assert.Equal(t, 2, *page.Items[0].Difficulty)
	require.NotNil(t, page.Items[0].Solved)
	assert.True(t, *page.Items[0].Solved)
	assert.Nil(t, page.Items[1].Difficulty)
	assert.True(t, page.Items[0].Timestamp.Equal(base.Add(4*time.Minute)))

	cursor, err := pagination.DecodeCursor(page.NextCursor)
	require.NoError(t, err)

	page2, err := log.ListByStudent(ctx, student.ID, cursor, 3)
	require.NoError(t, err)
	require.Len(t, page2.Items, 2)
	assert.False(t, page2.HasMore)
	assert.Equal(t, ids[1], page2.Items[0].ID)
	assert.Equal(t, ids[0], page2.Items[1].ID)

	_, err = log.Record(ctx, domain.NewInteraction("abc", "p", "r", domain.IntentQuestion, "", nil, base))
	assert.Error(t, err)
}

func TestStore_WithTx(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	_, err := store.Documents().InsertDocuments(ctx, []domain.Document{{Kind: domain.DocumentKindTheory, Text: "viejo"}})
	require.NoError(t, err)

	err = store.WithTx(ctx, func(repos service.TxRepositories) error {
		if err := repos.Documents().DeleteAll(ctx); err != nil {
			return err
		}
		_, err := repos.Documents().InsertDocuments(ctx, []domain.Document{{Kind: domain.DocumentKindTheory, Text: "nuevo"}})
		return err
	})
	require.NoError(t, err)

	listed, err := store.Documents().ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "nuevo", listed[0].Text)

	err = store.WithTx(ctx, func(repos service.TxRepositories) error {
		_ = repos.Documents().DeleteAll(ctx)
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	listed, err = store.Documents().ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 1, "rolled back")
}
