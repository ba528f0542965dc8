package repository

import (
	"context"
	"database/sql"
)

// TipRepo records tip submissions.
type TipRepo struct {
	db *sql.DB
}

func NewTipRepo(db *sql.DB) *TipRepo { return &TipRepo{db: db} }

func (r *TipRepo) Insert(ctx context.Context, t TipRecord) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO tips(id, sender, recipient_id, recipient_name, to_address, asset, amount, raw_amount,
	 message, status, tx_hash, error, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`, t.ID, t.Sender, t.RecipientID, t.RecipientName, t.ToAddress, t.Asset, t.Amount, t.RawAmount,
		t.Message, t.Status, t.TxHash, t.Error, t.CreatedAt.UTC())
	return err
}

// Recent lists the sender's latest tips, newest first.
func (r *TipRepo) Recent(ctx context.Context, sender string, limit int) ([]TipRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, sender, recipient_id, recipient_name, to_address, asset, amount, raw_amount,
	 message, status, tx_hash, error, created_at
	FROM tips WHERE sender = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`, sender, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TipRecord
	for rows.Next() {
		var t TipRecord
		if err := rows.Scan(&t.ID, &t.Sender, &t.RecipientID, &t.RecipientName, &t.ToAddress, &t.Asset, &t.Amount,
			&t.RawAmount, &t.Message, &t.Status, &t.TxHash, &t.Error, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
