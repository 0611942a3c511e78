package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
//
// The domain invariants live here as (partial) unique indexes so that a
// losing concurrent writer fails on the constraint instead of racing a
// check-then-act sequence in the store layer:
//   - one non-trashed item per (type, reference)
//   - one item ever per (type, reference, serial_nb), trashed included
//   - one state observation per item per calendar day
//   - one open loan per item
//   - one running inventory campaign system-wide
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'lender', 'user')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS members (
    id                 INTEGER PRIMARY KEY,
    last_name          TEXT NOT NULL,
    first_name         TEXT NOT NULL,
    license_nb         TEXT,
    has_guarantee      INTEGER NOT NULL DEFAULT 0,
    guarantee_end_date TEXT,
    UNIQUE (last_name, first_name)
);

CREATE TABLE IF NOT EXISTS items (
    id            INTEGER PRIMARY KEY,
    type          TEXT NOT NULL,
    reference     INTEGER NOT NULL,
    owner_club    TEXT NOT NULL DEFAULT '',
    entry_date    TEXT,
    brand         TEXT,
    model         TEXT,
    serial_nb     TEXT,
    gender        TEXT,
    size_min      INTEGER,
    size_max      INTEGER,
    size_age      TEXT,
    is_cold_water INTEGER,
    is_nitrox     INTEGER,
    fastening     TEXT,
    material      TEXT,
    thickness     REAL,
    pressure      INTEGER,
    usage_counter INTEGER NOT NULL DEFAULT 0,
    is_servicing  INTEGER NOT NULL DEFAULT 0,
    is_trashed    INTEGER NOT NULL DEFAULT 0,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (type, reference, serial_nb)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_items_type_reference_active
    ON items(type, reference) WHERE is_trashed = 0;

CREATE TABLE IF NOT EXISTS composition_edges (
    id        INTEGER PRIMARY KEY,
    parent_id INTEGER NOT NULL REFERENCES items(id),
    child_id  INTEGER NOT NULL REFERENCES items(id),
    at_date   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_composition_edges_child
    ON composition_edges(child_id);

CREATE TABLE IF NOT EXISTS item_states (
    id         INTEGER PRIMARY KEY,
    item_id    INTEGER NOT NULL REFERENCES items(id),
    date       TEXT NOT NULL,
    is_present INTEGER NOT NULL,
    is_usable  INTEGER NOT NULL,
    price      REAL,
    comment    TEXT,
    UNIQUE (item_id, date)
);

CREATE TABLE IF NOT EXISTS servicings (
    id          INTEGER PRIMARY KEY,
    item_id     INTEGER NOT NULL REFERENCES items(id),
    date        TEXT NOT NULL,
    report_file TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS loans (
    id            INTEGER PRIMARY KEY,
    item_id       INTEGER NOT NULL REFERENCES items(id),
    user_id       INTEGER REFERENCES users(id),
    member_id     INTEGER REFERENCES members(id),
    from_datetime DATETIME NOT NULL,
    to_datetime   DATETIME,
    usage_counter INTEGER NOT NULL DEFAULT 0
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_loans_open_item
    ON loans(item_id) WHERE to_datetime IS NULL;

CREATE TABLE IF NOT EXISTS inventories (
    id          INTEGER PRIMARY KEY,
    date        TEXT NOT NULL UNIQUE,
    in_progress INTEGER NOT NULL DEFAULT 1
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_inventories_running
    ON inventories(in_progress) WHERE in_progress = 1;
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
