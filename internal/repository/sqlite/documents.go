package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cloo-solutions/aula/internal/domain"
)

// DocumentStore implements service.DocumentRepository.
type DocumentStore struct {
	db querier
}

// InsertDocuments uses INSERT OR IGNORE against the all-columns unique
// constraint, so re-ingesting the same corpus adds nothing.
func (s *DocumentStore) InsertDocuments(ctx context.Context, docs []domain.Document) (int, error) {
	inserted := 0
	for i, d := range docs {
		res, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO docs (kind, title, topic, grade, text) VALUES (?, ?, ?, ?, ?)`,
			string(d.Kind), d.Title, d.Topic, d.Grade, d.Text,
		)
		if err != nil {
			return inserted, fmt.Errorf("insert document %d: %w", i, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, err
		}
		inserted += int(n)
	}
	return inserted, nil
}

func (s *DocumentStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, title, topic, grade, text FROM docs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var d domain.Document
		var kind, title, topic, grade, text sql.NullString
		if err := rows.Scan(&d.ID, &kind, &title, &topic, &grade, &text); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		d.Kind = domain.DocumentKind(kind.String)
		d.Title = title.String
		d.Topic = topic.String
		d.Grade = grade.String
		d.Text = text.String
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *DocumentStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM docs`); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}
	return nil
}
