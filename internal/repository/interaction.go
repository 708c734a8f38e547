package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/aula/internal/domain"
	"github.com/cloo-solutions/aula/internal/pagination"
	"github.com/cloo-solutions/aula/internal/service"
)

// InteractionRepository is the append-only interaction log.
type InteractionRepository struct {
	db dbtx
}

func NewInteractionRepository(pool *pgxpool.Pool) *InteractionRepository {
	return &InteractionRepository{db: pool}
}

func (r *InteractionRepository) Record(ctx context.Context, i *domain.Interaction) (string, error) {
	ts := i.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	var id string
	err := r.db.QueryRow(ctx,
		`INSERT INTO interactions (student_id, timestamp, prompt, response, intent, topic, difficulty, solved)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		i.StudentID, ts, i.Prompt, i.Response, i.Intent, i.Topic, i.Difficulty, i.Solved,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *InteractionRepository) ListByStudent(ctx context.Context, studentID string, cursor *pagination.Cursor, limit int) (*service.InteractionPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, student_id, timestamp, prompt, response, intent, topic, difficulty, solved
			 FROM interactions
			 WHERE student_id = $1 AND (timestamp, id) < ($2, $3)
			 ORDER BY timestamp DESC, id DESC
			 LIMIT $4`,
			studentID, cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, student_id, timestamp, prompt, response, intent, topic, difficulty, solved
			 FROM interactions
			 WHERE student_id = $1
			 ORDER BY timestamp DESC, id DESC
			 LIMIT $2`,
			studentID, limit+1,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.Interaction
	for rows.Next() {
		var it domain.Interaction
		var difficulty *int32
		if err := rows.Scan(&it.ID, &it.StudentID, &it.Timestamp, &it.Prompt, &it.Response,
			&it.Intent, &it.Topic, &difficulty, &it.Solved); err != nil {
			return nil, err
		}
		if difficulty != nil {
			d := int(*difficulty)
			it.Difficulty = &d
		}
		items = append(items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, nextCursor, hasMore := pagination.Page(items, limit, interactionKey)

	return &service.InteractionPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func interactionKey(i *domain.Interaction) (string, time.Time) {
	return i.ID, i.Timestamp
}
