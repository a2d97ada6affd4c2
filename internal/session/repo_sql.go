package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pot-code/study-tracker/internal/infrastructure/driver"
)

const sessionColumns = `id, user_id, subject, category, started_at, ended_at, duration_min, notes, created_at`

type SessionSQL struct {
	Conn driver.ITransactionalDB
}

var _ SessionRepository = &SessionSQL{}

func NewSessionRepository(Conn driver.ITransactionalDB) *SessionSQL {
	return &SessionSQL{Conn}
}

// WithTx returns a repository running on tx
func (repo *SessionSQL) WithTx(tx driver.ITransactionalDB) SessionRepository {
	return &SessionSQL{tx}
}

func (repo *SessionSQL) ListByUser(ctx context.Context, userID string) ([]*SessionModel, error) {
	if userID == "" {
		return repo.query(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY started_at DESC`)
	}
	return repo.query(ctx, `SELECT `+sessionColumns+`
	FROM sessions
	WHERE user_id = $1
	ORDER BY started_at DESC`, userID)
}

func (repo *SessionSQL) ListByUserSince(ctx context.Context, userID string, since time.Time) ([]*SessionModel, error) {
	if userID == "" {
		return repo.query(ctx, `SELECT `+sessionColumns+`
		FROM sessions
		WHERE started_at >= $1
		ORDER BY started_at DESC`, since.UTC())
	}
	return repo.query(ctx, `SELECT `+sessionColumns+`
	FROM sessions
	WHERE user_id = $1 AND started_at >= $2
	ORDER BY started_at DESC`, userID, since.UTC())
}

func (repo *SessionSQL) FindByID(ctx context.Context, id string) (*SessionModel, error) {
	result, err := repo.query(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	if err != nil || len(result) == 0 {
		return nil, err
	}
	return result[0], nil
}

func (repo *SessionSQL) SaveSession(ctx context.Context, post *SessionModel) error {
	_, err := repo.Conn.ExecContext(ctx, `INSERT INTO sessions(`+sessionColumns+`)
	VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		post.ID, post.UserID, post.Subject, nullString(post.Category),
		post.StartedAt.UTC(), post.EndedAt.UTC(), post.DurationMin,
		nullString(post.Notes), post.CreatedAt.UTC())
	return err
}

func (repo *SessionSQL) DeleteByID(ctx context.Context, id string) error {
	res, err := repo.Conn.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (repo *SessionSQL) query(ctx context.Context, query string, args ...interface{}) ([]*SessionModel, error) {
	rows, err := repo.Conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*SessionModel
	for rows.Next() {
		var (
			item     = new(SessionModel)
			category sql.NullString
			notes    sql.NullString
		)
		err := rows.Scan(&item.ID, &item.UserID, &item.Subject, &category,
			&item.StartedAt, &item.EndedAt, &item.DurationMin, &notes, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		item.Category = stringPtr(category)
		item.Notes = stringPtr(notes)
		item.StartedAt = item.StartedAt.UTC()
		item.EndedAt = item.EndedAt.UTC()
		item.CreatedAt = item.CreatedAt.UTC()
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading sessions: %w", err)
	}
	return result, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
