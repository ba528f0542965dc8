package repository

import (
	"context"
	"database/sql"
)

// SessionRepo persists the single connected account.
type SessionRepo struct {
	db *sql.DB
}

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// Get returns nil when no wallet is connected.
func (r *SessionRepo) Get(ctx context.Context) (*Session, error) {
	var s Session
	err := r.db.QueryRowContext(ctx, `SELECT address, name, connected_at FROM session WHERE id = 1`).
		Scan(&s.Address, &s.Name, &s.ConnectedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepo) Set(ctx context.Context, s Session) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO session(id, address, name, connected_at) VALUES (1, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET address=excluded.address, name=excluded.name, connected_at=CURRENT_TIMESTAMP;
	`, s.Address, s.Name)
	return err
}

func (r *SessionRepo) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM session`)
	return err
}
