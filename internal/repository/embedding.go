package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/cloo-solutions/aula/internal/domain"
)

// EmbeddingRepository stores the embedding snapshot in Postgres, one
// pgvector row per document. It implements snapshot.Store.
type EmbeddingRepository struct {
	pool *pgxpool.Pool
}

func NewEmbeddingRepository(pool *pgxpool.Pool) *EmbeddingRepository {
	return &EmbeddingRepository{pool: pool}
}

// LoadMatrix reads every stored embedding ordered by document id.
func (r *EmbeddingRepository) LoadMatrix(ctx context.Context) (*domain.Matrix, error) {
	rows, err := r.pool.Query(ctx, `SELECT embedding FROM doc_embeddings ORDER BY doc_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vectors [][]float32
	for rows.Next() {
		var v pgvector.Vector
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		vectors = append(vectors, v.Slice())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return domain.MatrixFromRows(vectors)
}

// SaveMatrix replaces all stored embeddings. Row i is assigned to the i-th
// document by ascending id; the row count must match the document count.
func (r *EmbeddingRepository) SaveMatrix(ctx context.Context, m *domain.Matrix) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ids, err := documentIDs(ctx, tx)
	if err != nil {
		return err
	}
	if len(ids) != m.Rows() {
		return fmt.Errorf("matrix has %d rows but %d documents are stored", m.Rows(), len(ids))
	}

	if _, err := tx.Exec(ctx, `DELETE FROM doc_embeddings`); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for i, id := range ids {
		batch.Queue(
			`INSERT INTO doc_embeddings (doc_id, embedding) VALUES ($1, $2)`,
			id, pgvector.NewVector(m.Row(i)),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert embeddings: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *EmbeddingRepository) Reset(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM doc_embeddings`)
	return err
}

func documentIDs(ctx context.Context, db dbtx) ([]int64, error) {
	rows, err := db.Query(ctx, `SELECT id FROM docs ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
