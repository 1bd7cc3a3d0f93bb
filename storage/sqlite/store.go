// Package sqlite stores events in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/samber/mo"

	"github.com/cyp0633/repeatcal/event"
	"github.com/cyp0633/repeatcal/recurrence"
	"github.com/cyp0633/repeatcal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id                TEXT PRIMARY KEY,
	title             TEXT NOT NULL,
	date              TEXT NOT NULL,
	start_time        TEXT NOT NULL,
	end_time          TEXT NOT NULL,
	description       TEXT NOT NULL DEFAULT '',
	location          TEXT NOT NULL DEFAULT '',
	category          TEXT NOT NULL,
	repeat_type       TEXT NOT NULL DEFAULT 'none',
	repeat_interval   INTEGER NOT NULL DEFAULT 1,
	repeat_end_date   TEXT,
	series_id         TEXT NOT NULL DEFAULT '',
	notification_time INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_events_series_id ON events(series_id);
CREATE INDEX IF NOT EXISTS idx_events_date ON events(date, start_time);
`

const columns = `id, title, date, start_time, end_time, description, location, category,
	repeat_type, repeat_interval, repeat_end_date, series_id, notification_time`

// Store implements storage.Storage on top of database/sql
type Store struct {
	db    *sql.DB
	newID func() string
}

// Open opens (creating if needed) the database at path and prepares the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// one writer keeps ":memory:" databases and transactions on one connection
	db.SetMaxOpenConns(1)

	store, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an open database handle and prepares the schema.
func New(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("error creating schema: %w", err)
	}
	return &Store{db: db, newID: uuid.NewString}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (event.Event, error) {
	var (
		ev                               event.Event
		date, start, end, kind, seriesID string
		interval                         int
		repeatEnd                        sql.NullString
	)
	err := row.Scan(&ev.ID, &ev.Title, &date, &start, &end, &ev.Description, &ev.Location,
		&ev.Category, &kind, &interval, &repeatEnd, &seriesID, &ev.NotificationTime)
	if err != nil {
		return event.Event{}, err
	}

	if ev.Date, err = civil.ParseDate(date); err != nil {
		return event.Event{}, fmt.Errorf("event %s: bad date: %w", ev.ID, err)
	}
	if ev.StartTime, err = event.ParseClock(start); err != nil {
		return event.Event{}, fmt.Errorf("event %s: %w", ev.ID, err)
	}
	if ev.EndTime, err = event.ParseClock(end); err != nil {
		return event.Event{}, fmt.Errorf("event %s: %w", ev.ID, err)
	}

	cadence, err := recurrence.NewCadence(recurrence.Kind(kind), interval)
	if err != nil {
		return event.Event{}, fmt.Errorf("event %s: %w", ev.ID, err)
	}
	ev.Repeat = recurrence.Descriptor{Cadence: cadence, SeriesID: seriesID}
	if repeatEnd.Valid && cadence != nil {
		last, err := civil.ParseDate(repeatEnd.String)
		if err != nil {
			return event.Event{}, fmt.Errorf("event %s: bad repeat end: %w", ev.ID, err)
		}
		ev.Repeat.EndDate = mo.Some(last)
	}
	return ev, nil
}

// values flattens ev in the order of columns.
func values(ev event.Event) []any {
	var repeatEnd sql.NullString
	if last, ok := ev.Repeat.EndDate.Get(); ok && ev.Repeat.IsRecurring() {
		repeatEnd = sql.NullString{String: last.String(), Valid: true}
	}
	return []any{
		ev.ID, ev.Title, ev.Date.String(), ev.StartTime.String(), ev.EndTime.String(),
		ev.Description, ev.Location, string(ev.Category),
		string(ev.Repeat.Kind()), ev.Repeat.Interval(), repeatEnd, ev.Repeat.SeriesID,
		ev.NotificationTime,
	}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, storage.ErrStorageUnavailable, err)
}

func (s *Store) ListEvents(ctx context.Context) ([]event.Event, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+columns+` FROM events ORDER BY date, start_time, id`)
	if err != nil {
		return nil, unavailable("list events", err)
	}
	defer rows.Close()

	events := make([]event.Event, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list events", err)
	}
	return events, nil
}

func (s *Store) GetEvent(ctx context.Context, id string) (*event.Event, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM events WHERE id = ?`, id)
	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

const insertEvent = `INSERT INTO events (` + columns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (s *Store) CreateEvents(ctx context.Context, forms []event.Form) ([]event.Event, error) {
	if len(forms) == 0 {
		return nil, fmt.Errorf("no events to create: %w", storage.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, unavailable("create events", err)
	}
	defer tx.Rollback()

	created := make([]event.Event, 0, len(forms))
	for _, form := range forms {
		ev := event.Event{ID: s.newID(), Form: form}
		if _, err := tx.ExecContext(ctx, insertEvent, values(ev)...); err != nil {
			return nil, unavailable("create events", err)
		}
		created = append(created, ev)
	}
	if err := tx.Commit(); err != nil {
		return nil, unavailable("create events", err)
	}
	return created, nil
}

const updateEvent = `UPDATE events SET id = ?, title = ?, date = ?, start_time = ?, end_time = ?,
	description = ?, location = ?, category = ?, repeat_type = ?, repeat_interval = ?,
	repeat_end_date = ?, series_id = ?, notification_time = ? WHERE id = ?`

func update(ctx context.Context, exec interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}, ev event.Event) (int64, error) {
	res, err := exec.ExecContext(ctx, updateEvent, append(values(ev), ev.ID)...)
	if err != nil {
		return 0, unavailable("update event", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, unavailable("update event", err)
	}
	return n, nil
}

func (s *Store) UpdateEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	n, err := update(ctx, s.db, ev)
	if err != nil {
		return event.Event{}, err
	}
	if n == 0 {
		return event.Event{}, fmt.Errorf("event %s: %w", ev.ID, storage.ErrNotFound)
	}
	return ev, nil
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return unavailable("delete event", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return unavailable("delete event", err)
	}
	if n == 0 {
		return fmt.Errorf("event %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func (s *Store) UpdateSeries(ctx context.Context, seriesID string, mutate storage.Mutation) ([]event.Event, error) {
	if seriesID == "" {
		return nil, fmt.Errorf("empty series id: %w", storage.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, unavailable("update series", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT `+columns+` FROM events WHERE series_id = ? ORDER BY date, start_time, id`, seriesID)
	if err != nil {
		return nil, unavailable("update series", err)
	}
	members := make([]event.Event, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		members = append(members, ev)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, unavailable("update series", err)
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("series %s: %w", seriesID, storage.ErrNotFound)
	}

	updated := make([]event.Event, 0, len(members))
	for _, member := range members {
		next, err := mutate(member)
		if err != nil {
			return nil, err
		}
		next.ID = member.ID
		if _, err := update(ctx, tx, next); err != nil {
			return nil, err
		}
		updated = append(updated, next)
	}
	if err := tx.Commit(); err != nil {
		return nil, unavailable("update series", err)
	}
	return updated, nil
}

func (s *Store) DeleteSeries(ctx context.Context, seriesID string) (int, error) {
	if seriesID == "" {
		return 0, fmt.Errorf("empty series id: %w", storage.ErrInvalidInput)
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE series_id = ?`, seriesID)
	if err != nil {
		return 0, unavailable("delete series", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, unavailable("delete series", err)
	}
	return int(n), nil
}
