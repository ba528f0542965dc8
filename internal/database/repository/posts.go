package repository

import (
	"context"
	"database/sql"
)

// PostRepo handles feed posts.
type PostRepo struct {
	db *sql.DB
}

func NewPostRepo(db *sql.DB) *PostRepo { return &PostRepo{db: db} }

func (r *PostRepo) Upsert(ctx context.Context, p Post) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO posts(id, creator_id, body, likes, tips_count, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET body=excluded.body;
	`, p.ID, p.CreatorID, p.Body, p.Likes, p.TipsCount, p.CreatedAt)
	return err
}

const postSelect = `
	SELECT p.id, p.creator_id, p.body, p.likes, p.tips_count, p.created_at, c.name, c.handle
	FROM posts p JOIN creators c ON c.id = p.creator_id`

// Feed lists the newest posts first. limit <= 0 returns everything.
func (r *PostRepo) Feed(ctx context.Context, limit int) ([]Post, error) {
	q := postSelect + ` ORDER BY p.created_at DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	return r.query(ctx, q, args...)
}

func (r *PostRepo) ByCreator(ctx context.Context, creatorID string) ([]Post, error) {
	return r.query(ctx, postSelect+` WHERE p.creator_id = ? ORDER BY p.created_at DESC`, creatorID)
}

// AddTip bumps the post's tip counter.
func (r *PostRepo) AddTip(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE posts SET tips_count = tips_count + 1 WHERE id = ?`, id)
	return err
}

func (r *PostRepo) query(ctx context.Context, q string, args ...any) ([]Post, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.CreatorID, &p.Body, &p.Likes, &p.TipsCount, &p.CreatedAt, &p.CreatorName, &p.CreatorHandle); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
