package repository

import (
	"context"
	"database/sql"
	"time"
)

// EventRepo handles events.
type EventRepo struct {
	db *sql.DB
}

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Upsert(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO events(id, title, host_id, location, starts_at, attendees)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	 title=excluded.title,
	 host_id=excluded.host_id,
	 location=excluded.location,
	 starts_at=excluded.starts_at;
	`, e.ID, e.Title, e.HostID, e.Location, e.StartsAt.UTC(), e.Attendees)
	return err
}

// Upcoming lists events starting at or after since, soonest first.
func (r *EventRepo) Upcoming(ctx context.Context, since time.Time) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT e.id, e.title, e.host_id, COALESCE(c.name, ''), e.location, e.starts_at, e.attendees
	FROM events e LEFT JOIN creators c ON c.id = e.host_id
	WHERE e.starts_at >= ?
	ORDER BY e.starts_at`, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Title, &e.HostID, &e.HostName, &e.Location, &e.StartsAt, &e.Attendees); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
