package state

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	_ "modernc.org/sqlite"
)

// Entry is the persisted per-image version state: the last latest
// tag computed for the image and whether it has been announced.
// The invariant is that Announced implies LatestTag holds the tag
// that was announced; Put commits the pair as a unit.
type Entry struct {
	LatestTag string
	Announced bool
}

type Store interface {
	Load(ctx context.Context) (map[string]Entry, error)
	Put(ctx context.Context, image string, e Entry) error
	Close() error
}

type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS image_state (
	image      TEXT PRIMARY KEY,
	latest_tag TEXT NOT NULL,
	announced  INTEGER NOT NULL
);`

// Open opens (creating if needed) the state database at the given path.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open state database")
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "state database is not reachable")
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "schema creation failed")
	}

	return &SQLiteStore{db: db}, nil
}

// Load reads the whole persisted state. Called once at startup.
func (s *SQLiteStore) Load(ctx context.Context) (map[string]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT image, latest_tag, announced FROM image_state`)
	if err != nil {
		return nil, errors.Wrap(err, "state query failed")
	}
	defer rows.Close()

	entries := make(map[string]Entry)
	for rows.Next() {
		var image string
		var e Entry

		err = rows.Scan(&image, &e.LatestTag, &e.Announced)
		if err != nil {
			return nil, errors.Wrap(err, "state row scan failed")
		}

		entries[image] = e
	}

	return entries, errors.Wrap(rows.Err(), "state rows iteration failed")
}

// Put upserts the state entry for an image. The (latest_tag, announced)
// pair is written in a single statement, so a crash can never leave a
// torn entry behind.
func (s *SQLiteStore) Put(ctx context.Context, image string, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO image_state (image, latest_tag, announced) VALUES (?, ?, ?)
ON CONFLICT (image) DO UPDATE SET latest_tag = excluded.latest_tag, announced = excluded.announced`,
		image, e.LatestTag, e.Announced)

	return errors.Wrap(err, "state upsert failed")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
