package store

import (
	"context"
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL DEFAULT 'user',
	active        BOOLEAN NOT NULL DEFAULT TRUE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (lower(email));

CREATE TABLE IF NOT EXISTS attendance_records (
	id          TEXT PRIMARY KEY,
	user_id     TEXT,
	name        TEXT NOT NULL DEFAULT '',
	date        TEXT NOT NULL DEFAULT '',
	check_in    TEXT,
	check_out   TEXT,
	status      TEXT NOT NULL DEFAULT 'Hadir',
	photo_url   TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_attendance_user    ON attendance_records (user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_attendance_created ON attendance_records (created_at);
`

// Migrate creates the tables and indexes if they do not exist. It is safe to
// run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
