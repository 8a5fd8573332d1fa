// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the tokichan API server.

tokichan is an anonymous imageboard. Visitors read boards and threads,
answer a captcha and post text with optional images. Uploaded files are
stored under content-addressed names so identical uploads share one file.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=./toki.db SESSION_SECRET=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." --session-secret ...

A .env file in the working directory (or --env-file) is loaded first.
Variables already set in the environment win.

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite path or PostgreSQL connection string
  - SESSION_SECRET (--session-secret): signs admin area sessions

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - LOG_LEVEL, LOG_PRETTY: log verbosity and console output
  - STORAGE: fs or minio, with UPLOAD_DIR or MINIO_* settings
  - UPLOAD_LIMIT: request body cap, e.g. 10MiB
  - ALLOWED_MIMES: comma separated upload types
  - POST_RATE: posts per minute per client
  - TRUSTED_PROXIES: proxies allowed to set X-Forwarded-For
  - CAPTCHA_*: pool size, rotation interval, length and image size
  - BOARDS: name:Title list, e.g. b:Random,g:Technology

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (boards, posts, media, admin)
  - router: Route definitions using Go 1.22+ routing
  - middleware: captcha binding, body and rate limits, sessions, CORS, logging
  - form: streaming multipart parser for the post form
  - upload: naming, MIME sniffing, storage backends, write batches
  - captcha: rotating challenge pool and image rendering
  - models: Request/response types
  - auth: password hashing and session tokens
  - db: Connection and schema creation
  - logging: slog over zerolog
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
