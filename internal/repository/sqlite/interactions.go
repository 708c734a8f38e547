package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/cloo-solutions/aula/internal/domain"
	"github.com/cloo-solutions/aula/internal/pagination"
	"github.com/cloo-solutions/aula/internal/service"
)

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC() }

// InteractionStore implements service.InteractionRepository.
type InteractionStore struct {
	db querier
}

func (s *InteractionStore) Record(ctx context.Context, i *domain.Interaction) (string, error) {
	userID, err := strconv.ParseInt(i.StudentID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid student id %q: %w", i.StudentID, err)
	}
	ts := i.Timestamp
	if ts.IsZero() {
		ts = now()
	}

	var solved *int
	if i.Solved != nil {
		v := 0
		if *i.Solved {
			v = 1
		}
		solved = &v
	}

	var id int64
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO interactions (user_id, timestamp, prompt, response, intent, topic, difficulty, solved)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`,
		userID, formatTime(ts), i.Prompt, i.Response, i.Intent, i.Topic, i.Difficulty, solved,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("inserting interaction: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

func (s *InteractionStore) ListByStudent(ctx context.Context, studentID string, cursor *pagination.Cursor, limit int) (*service.InteractionPageResult, error) {
	if limit <= 0 {
		limit = 20
	}
	userID, err := strconv.ParseInt(studentID, 10, 64)
	if err != nil {
		return nil, domain.ErrStudentNotFound
	}

	var rows *sql.Rows
	if cursor != nil {
		lastID, convErr := strconv.ParseInt(cursor.LastID, 10, 64)
		if convErr != nil {
			return nil, pagination.ErrInvalidCursor
		}
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, user_id, timestamp, prompt, response, intent, topic, difficulty, solved
			 FROM interactions
			 WHERE user_id = ? AND (timestamp, id) < (?, ?)
			 ORDER BY timestamp DESC, id DESC
			 LIMIT ?`,
			userID, formatTime(cursor.Timestamp), lastID, limit+1,
		)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, user_id, timestamp, prompt, response, intent, topic, difficulty, solved
			 FROM interactions
			 WHERE user_id = ?
			 ORDER BY timestamp DESC, id DESC
			 LIMIT ?`,
			userID, limit+1,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("querying interactions: %w", err)
	}
	defer rows.Close()

	var items []*domain.Interaction
	for rows.Next() {
		var id, uid int64
		var ts, prompt, response, intent, topic sql.NullString
		var difficulty, solved sql.NullInt64
		if err := rows.Scan(&id, &uid, &ts, &prompt, &response, &intent, &topic, &difficulty, &solved); err != nil {
			return nil, fmt.Errorf("scanning interaction: %w", err)
		}
		it := &domain.Interaction{
			ID:        strconv.FormatInt(id, 10),
			StudentID: strconv.FormatInt(uid, 10),
			Timestamp: parseTime(ts.String),
			Prompt:    prompt.String,
			Response:  response.String,
			Intent:    intent.String,
			Topic:     topic.String,
		}
		if difficulty.Valid {
			d := int(difficulty.Int64)
			it.Difficulty = &d
		}
		if solved.Valid {
			b := solved.Int64 != 0
			it.Solved = &b
		}
		items = append(items, it)
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

var timeLayouts = []string{timeLayout, "2006-01-02 15:04:05", time.RFC3339Nano}

func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func interactionKey(i *domain.Interaction) (string, time.Time) {
	return i.ID, i.Timestamp
}
