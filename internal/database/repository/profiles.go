package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// ProfileRepo is the key-value profile store keyed by wallet address.
type ProfileRepo struct {
	db *sql.DB
}

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{db: db} }

func normAddress(a string) string { return strings.TrimSpace(a) }

// Get returns nil when no profile is stored for the address.
func (r *ProfileRepo) Get(ctx context.Context, address string) (*Profile, error) {
	address = normAddress(address)
	row := r.db.QueryRowContext(ctx, `SELECT data, updated_at FROM profiles WHERE address = ?`, address)
	var (
		blob string
		p    Profile
	)
	if err := row.Scan(&blob, &p.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(blob), &p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", address, err)
	}
	p.Address = address
	return &p, nil
}

func (r *ProfileRepo) Save(ctx context.Context, p Profile) error {
	address := normAddress(p.Address)
	if address == "" {
		return fmt.Errorf("profile: address required")
	}
	blob, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
	INSERT INTO profiles(address, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(address) DO UPDATE SET data=excluded.data, updated_at=CURRENT_TIMESTAMP;
	`, address, string(blob))
	return err
}

func (r *ProfileRepo) Delete(ctx context.Context, address string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE address = ?`, normAddress(address))
	return err
}
