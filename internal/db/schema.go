package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'manager', 'user')),
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

CREATE TABLE IF NOT EXISTS brands (
    id   INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS categories (
    id   INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS sectors (
    id   INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS statuses (
    id   INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS conditions (
    id   INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS employees (
    id   INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS suppliers (
    id   INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS models (
    id          INTEGER PRIMARY KEY,
    name        TEXT NOT NULL,
    brand_id    INTEGER NOT NULL REFERENCES brands(id),
    category_id INTEGER NOT NULL REFERENCES categories(id),
    UNIQUE (name, brand_id)
);

CREATE TABLE IF NOT EXISTS purchases (
    id             INTEGER PRIMARY KEY,
    purchased_at   DATE NOT NULL,
    invoice_number TEXT NOT NULL,
    supplier_id    INTEGER REFERENCES suppliers(id),
    buyer          TEXT,
    model_id       INTEGER REFERENCES models(id),
    total_value    REAL,
    attachment_key TEXT,
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS assets (
    id           INTEGER PRIMARY KEY,
    serial       TEXT NOT NULL UNIQUE,
    model_id     INTEGER NOT NULL REFERENCES models(id),
    status_id    INTEGER REFERENCES statuses(id),
    condition_id INTEGER REFERENCES conditions(id),
    sector_id    INTEGER REFERENCES sectors(id),
    employee_id  INTEGER REFERENCES employees(id),
    value        REAL,
    purchase_id  INTEGER REFERENCES purchases(id),
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- moved_by is an audit annotation. Accounts are not part of backups, so it
-- carries no foreign key; a restored history may reference accounts that do
-- not exist in the target database.
CREATE TABLE IF NOT EXISTS movements (
    id          INTEGER PRIMARY KEY,
    asset_id    INTEGER NOT NULL REFERENCES assets(id),
    employee_id INTEGER REFERENCES employees(id),
    sector_id   INTEGER REFERENCES sectors(id),
    status_id   INTEGER REFERENCES statuses(id),
    note        TEXT,
    moved_by    INTEGER,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_movements_asset
    ON movements(asset_id, created_at);

CREATE TABLE IF NOT EXISTS maintenances (
    id        INTEGER PRIMARY KEY,
    asset_id  INTEGER NOT NULL REFERENCES assets(id),
    vendor    TEXT NOT NULL,
    defect    TEXT NOT NULL,
    opened_at DATE NOT NULL,
    closed_at DATE,
    cost      REAL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
