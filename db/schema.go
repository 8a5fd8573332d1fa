// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"

	"github.com/danielhkuo/tokichan/models"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dialect string) error {
	schema, err := schemaFor(dialect)
	if err != nil {
		return err
	}

	_, err = db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// SeedBoards inserts boards that don't exist yet. Existing titles and
// counters are left alone.
func SeedBoards(db *sql.DB, boards []models.Board) error {
	for _, b := range boards {
		_, err := db.Exec(`
			INSERT INTO board (name, title, posts)
			VALUES ($1, $2, 0)
			ON CONFLICT (name) DO NOTHING
		`, b.Name, b.Title)
		if err != nil {
			return fmt.Errorf("failed to seed board %s: %w", b.Name, err)
		}
	}

	return nil
}

func schemaFor(dialect string) (string, error) {
	switch dialect {
	case DialectPostgres:
		return postgresSchema, nil
	case DialectSQLite:
		return sqliteSchema, nil
	}
	return "", fmt.Errorf("unsupported database type %q", dialect)
}

const postgresSchema = `
-- Boards
CREATE TABLE IF NOT EXISTS board (
    name TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    posts BIGINT NOT NULL DEFAULT 0
);

-- Posts (parent IS NULL for thread openers)
CREATE TABLE IF NOT EXISTS post (
    id BIGSERIAL PRIMARY KEY,
    parent BIGINT REFERENCES post(id) ON DELETE CASCADE,
    board TEXT NOT NULL REFERENCES board(name) ON DELETE CASCADE,
    created TIMESTAMPTZ NOT NULL,
    op TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    subject TEXT NOT NULL DEFAULT '',
    body TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_post_board ON post(board, parent);
CREATE INDEX IF NOT EXISTS idx_post_parent ON post(parent);

-- Files attached to a post, in submission order
CREATE TABLE IF NOT EXISTS post_file (
    post_id BIGINT NOT NULL REFERENCES post(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    PRIMARY KEY (post_id, position)
);

-- Admin accounts
CREATE TABLE IF NOT EXISTS account (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL CHECK (role IN ('admin', 'moderator', 'volunteer', 'user')),
    created TIMESTAMPTZ NOT NULL
);
`

const sqliteSchema = `
-- Boards
CREATE TABLE IF NOT EXISTS board (
    name TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    posts INTEGER NOT NULL DEFAULT 0
);

-- Posts (parent IS NULL for thread openers)
CREATE TABLE IF NOT EXISTS post (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    parent INTEGER REFERENCES post(id) ON DELETE CASCADE,
    board TEXT NOT NULL REFERENCES board(name) ON DELETE CASCADE,
    created TIMESTAMP NOT NULL,
    op TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    subject TEXT NOT NULL DEFAULT '',
    body TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_post_board ON post(board, parent);
CREATE INDEX IF NOT EXISTS idx_post_parent ON post(parent);

-- Files attached to a post, in submission order
CREATE TABLE IF NOT EXISTS post_file (
    post_id INTEGER NOT NULL REFERENCES post(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    PRIMARY KEY (post_id, position)
);

-- Admin accounts
CREATE TABLE IF NOT EXISTS account (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL CHECK (role IN ('admin', 'moderator', 'volunteer', 'user')),
    created TIMESTAMP NOT NULL
);
`
