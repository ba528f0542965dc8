package repository

import (
	"context"
	"database/sql"
)

// CommunityRepo handles communities.
type CommunityRepo struct {
	db *sql.DB
}

func NewCommunityRepo(db *sql.DB) *CommunityRepo { return &CommunityRepo{db: db} }

func (r *CommunityRepo) Upsert(ctx context.Context, c Community) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO communities(id, name, description, members, joined)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	 name=excluded.name,
	 description=excluded.description;
	`, c.ID, c.Name, c.Description, c.Members, c.Joined)
	return err
}

func (r *CommunityRepo) List(ctx context.Context) ([]Community, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description, members, joined FROM communities ORDER BY members DESC, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Community
	for rows.Next() {
		var c Community
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Members, &c.Joined); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SetJoined mirrors CreatorRepo.SetFollowing for membership.
func (r *CommunityRepo) SetJoined(ctx context.Context, id string, joined bool) error {
	delta := -1
	if joined {
		delta = 1
	}
	_, err := r.db.ExecContext(ctx, `
	UPDATE communities
	SET joined = ?, members = MAX(members + ?, 0)
	WHERE id = ? AND joined != ?`, joined, delta, id, joined)
	return err
}
