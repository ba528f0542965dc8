package repository

import (
	"context"
	"database/sql"
)

// BadgeRepo handles creator badges.
type BadgeRepo struct {
	db *sql.DB
}

func NewBadgeRepo(db *sql.DB) *BadgeRepo { return &BadgeRepo{db: db} }

func (r *BadgeRepo) Upsert(ctx context.Context, b Badge) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO badges(id, creator_id, name, icon) VALUES (?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET name=excluded.name, icon=excluded.icon;
	`, b.ID, b.CreatorID, b.Name, b.Icon)
	return err
}

func (r *BadgeRepo) ByCreator(ctx context.Context, creatorID string) ([]Badge, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, creator_id, name, icon FROM badges WHERE creator_id = ? ORDER BY name`, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Badge
	for rows.Next() {
		var b Badge
		if err := rows.Scan(&b.ID, &b.CreatorID, &b.Name, &b.Icon); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
