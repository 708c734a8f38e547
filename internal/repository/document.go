package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/aula/internal/domain"
)

type DocumentRepository struct {
	db dbtx
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: pool}
}

func NewDocumentRepositoryWithTx(tx pgx.Tx) *DocumentRepository {
	return &DocumentRepository{db: tx}
}

// InsertDocuments queues every insert in one batch. Rows whose content
// already exists are skipped by the unique content hash.
func (r *DocumentRepository) InsertDocuments(ctx context.Context, docs []domain.Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, d := range docs {
		batch.Queue(
			`INSERT INTO docs (kind, title, topic, grade, text)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (content_hash) DO NOTHING`,
			d.Kind, d.Title, d.Topic, d.Grade, d.Text,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for i := range docs {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("insert document %d: %w", i, err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func (r *DocumentRepository) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, kind, title, topic, grade, text
		 FROM docs ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(&d.ID, &d.Kind, &d.Title, &d.Topic, &d.Grade, &d.Text); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *DocumentRepository) CountDocuments(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM docs`).Scan(&n)
	return n, err
}

// DeleteAll removes every document and, by cascade, its stored embedding.
func (r *DocumentRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `TRUNCATE TABLE docs RESTART IDENTITY CASCADE`)
	return err
}
