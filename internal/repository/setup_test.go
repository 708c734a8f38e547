//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/aula/internal/domain"
	"github.com/cloo-solutions/aula/internal/testutil"
)

func setupPool(t *testing.T) (context.Context, *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	pc := testutil.NewPostgresContainer(ctx, t)
	t.Cleanup(func() { pc.Terminate(ctx) })

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	t.Cleanup(pool.Close)

	return ctx, pool
}

func sampleDocuments() []domain.Document {
	return []domain.Document{
		{Kind: domain.DocumentKindTheory, Title: "sumas_llevando_3º", Topic: "sumas", Grade: "3º", Text: "Para sumar llevando..."},
		{Kind: domain.DocumentKindTheory, Title: "restas", Topic: "restas", Text: "Restar es quitar."},
		{Kind: domain.DocumentKindExercise, Title: "Ejercicio: sumas", Topic: "sumas", Grade: "3º", Text: "Enunciado: 27 + 15\nSolucion: 42"},
	}
}
