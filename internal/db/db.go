package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	"go.opentelemetry.io/otel/attribute"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database holding extraction results.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens or creates a SQLite database at the given path and brings its
// schema up to date. Queries are traced through otelsql.
func Open(ctx context.Context, path string) (*DB, error) {
	conn, err := otelsql.Open("sqlite", path,
		otelsql.WithAttributes(attribute.String("db.system", "sqlite")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Foreign keys are per connection; a single connection keeps the
	// pragma in force for every statement.
	conn.SetMaxOpenConns(1)

	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db := &DB{conn: conn, path: path}
	if err := db.migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// migrate runs database migrations up to the current schema version.
func (db *DB) migrate(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var version int
	err := db.conn.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	if version < 1 {
		if err := db.migrateV1(ctx); err != nil {
			return err
		}
	}
	if version < 2 {
		if err := db.migrateV2(ctx); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the fandom tables.
func (db *DB) migrateV1(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS fandoms (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			code TEXT NOT NULL,
			display_name TEXT NOT NULL,
			regex TEXT,
			curated INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_fandoms_code ON fandoms(code);

		-- Alternate names: kind is abbreviation, namealike or typo
		CREATE TABLE IF NOT EXISTS fandom_aliases (
			fandom_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			alias TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY(fandom_id, kind, alias),
			FOREIGN KEY(fandom_id) REFERENCES fandoms(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS fandom_edges (
			parent_id TEXT NOT NULL,
			child_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY(parent_id, child_id),
			FOREIGN KEY(parent_id) REFERENCES fandoms(id) ON DELETE CASCADE,
			FOREIGN KEY(child_id) REFERENCES fandoms(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_fandom_edges_child ON fandom_edges(child_id);

		CREATE TABLE IF NOT EXISTS fandom_sellers (
			fandom_id TEXT NOT NULL,
			seller_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY(fandom_id, seller_id),
			FOREIGN KEY(fandom_id) REFERENCES fandoms(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_fandom_sellers_seller ON fandom_sellers(seller_id);

		INSERT INTO schema_version (version) VALUES (1);
	`

	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute v1 migration: %w", err)
	}

	return nil
}

// migrateV2 adds circle and stand tables.
func (db *DB) migrateV2(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS circles (
			uuid TEXT PRIMARY KEY,
			id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			display_name TEXT NOT NULL,
			fandom TEXT,
			other_fandom TEXT
		);

		CREATE TABLE IF NOT EXISTS circle_fandoms (
			circle_uuid TEXT NOT NULL,
			fandom_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY(circle_uuid, fandom_id),
			FOREIGN KEY(circle_uuid) REFERENCES circles(uuid) ON DELETE CASCADE,
			FOREIGN KEY(fandom_id) REFERENCES fandoms(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS stands (
			code TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			display_name TEXT NOT NULL,
			stand_type TEXT NOT NULL
		);

		-- day is 1 or 2
		CREATE TABLE IF NOT EXISTS stand_attendance (
			stand_code TEXT NOT NULL,
			day INTEGER NOT NULL,
			circle_uuid TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY(stand_code, day, circle_uuid),
			FOREIGN KEY(stand_code) REFERENCES stands(code) ON DELETE CASCADE,
			FOREIGN KEY(circle_uuid) REFERENCES circles(uuid) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_stand_attendance_circle ON stand_attendance(circle_uuid);

		INSERT INTO schema_version (version) VALUES (2);
	`

	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute v2 migration: %w", err)
	}

	return nil
}
