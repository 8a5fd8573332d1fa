// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p               Server port
	-d               Database URL
	-t               Database type (sqlite or postgres)
	-env-file        Optional .env file (default .env)
	-session-secret  Session signing secret
	-log-level       debug, info, warn or error
	-storage         fs or minio
	-upload-dir      Directory for fs storage

# Environment Variables

Flags fall back to environment variables. A .env file is loaded first
but never overrides variables that are already set.

	PORT              → -p (default 3318)
	DATABASE_URL      → -d (required)
	DATABASE_TYPE     → -t (default sqlite)
	ENV_FILE          → -env-file
	SESSION_SECRET    → -session-secret (required)
	LOG_LEVEL         → -log-level (default info)
	STORAGE           → -storage (default fs)
	UPLOAD_DIR        → -upload-dir (default ./.tmp)

Settings without a flag:

	LOG_PRETTY        console log output (default true)
	COOKIE_SECURE     Secure attribute on cookies (default true)
	MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY, MINIO_BUCKET, MINIO_USE_SSL
	UPLOAD_LIMIT      request body cap, e.g. 10MiB or 2MB (default 10MiB)
	ALLOWED_MIMES     comma separated upload types
	POST_RATE         posts per minute per client (default 6)
	TRUSTED_PROXIES   proxies whose X-Forwarded-For is believed, e.g. 10.0.0.0/8,127.0.0.1
	CAPTCHA_POOL_SIZE (default 5)
	CAPTCHA_ROTATE    pool rotation interval (default 1s)
	CAPTCHA_LENGTH    characters per challenge (default 4)
	CAPTCHA_WIDTH, CAPTCHA_HEIGHT (default 120x40)
	BOARDS            boards to seed, "b:Random,g:Technology"

CLI flags take precedence over environment variables.

# Example

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	// ...
	mux := router.NewRouter(deps)
*/
package cliparse
