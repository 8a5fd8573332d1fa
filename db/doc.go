// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates its schema.

# Connections

Open supports two drivers, picked by DATABASE_TYPE:

	conn, err := db.Open(db.DialectSQLite, "file:tokichan.db")
	conn, err := db.Open(db.DialectPostgres, "postgres://...")

sqlite connections get foreign keys and a busy timeout, and are limited
to one open connection.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn, cfg.DatabaseType); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
SeedBoards then inserts the configured boards.

# Tables

  - board: Board name, title and post counter
  - post: Thread openers (parent NULL) and replies
  - post_file: Stored file names per post, in submission order
  - account: Admin area users with bcrypt hashes

# Relationships

	board 1──* post
	post  1──* post (replies via parent)
	post  1──* post_file

All foreign keys use ON DELETE CASCADE.
*/
package db
