package repository

import (
	"context"
	"database/sql"
)

// CreatorRepo handles creators.
type CreatorRepo struct {
	db *sql.DB
}

func NewCreatorRepo(db *sql.DB) *CreatorRepo { return &CreatorRepo{db: db} }

// Upsert inserts or refreshes the display fields. The follow flag and
// counters owned by the app are left alone on conflict.
func (r *CreatorRepo) Upsert(ctx context.Context, c Creator) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO creators(id, name, handle, bio, address, avatar, followers, tips_count, following, sort_order)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	 name=excluded.name,
	 handle=excluded.handle,
	 bio=excluded.bio,
	 address=excluded.address,
	 avatar=excluded.avatar,
	 sort_order=excluded.sort_order;
	`, c.ID, c.Name, c.Handle, c.Bio, c.Address, c.Avatar, c.Followers, c.TipsCount, c.Following, c.SortOrder)
	return err
}

const creatorCols = `id, name, handle, bio, address, avatar, followers, tips_count, following, sort_order`

func scanCreator(s interface{ Scan(...any) error }) (Creator, error) {
	var c Creator
	err := s.Scan(&c.ID, &c.Name, &c.Handle, &c.Bio, &c.Address, &c.Avatar, &c.Followers, &c.TipsCount, &c.Following, &c.SortOrder)
	return c, err
}

func (r *CreatorRepo) List(ctx context.Context) ([]Creator, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+creatorCols+` FROM creators ORDER BY sort_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Creator
	for rows.Next() {
		c, err := scanCreator(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Get returns nil when the creator does not exist.
func (r *CreatorRepo) Get(ctx context.Context, id string) (*Creator, error) {
	c, err := scanCreator(r.db.QueryRowContext(ctx, `SELECT `+creatorCols+` FROM creators WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// SetFollowing flips the local follow flag and keeps the follower count in
// step. Setting the current value again is a no-op.
func (r *CreatorRepo) SetFollowing(ctx context.Context, id string, following bool) error {
	delta := -1
	if following {
		delta = 1
	}
	_, err := r.db.ExecContext(ctx, `
	UPDATE creators
	SET following = ?, followers = MAX(followers + ?, 0)
	WHERE id = ? AND following != ?`, following, delta, id, following)
	return err
}

// AddTip bumps the tip counter after a confirmed tip.
func (r *CreatorRepo) AddTip(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE creators SET tips_count = tips_count + 1 WHERE id = ?`, id)
	return err
}
