// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the tokichan API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, store, challenges)

store holds uploaded files and challenges hands out captchas (usually a
*captcha.Service).

# Endpoints

Health:

	GET /health

Reading (public, each page sets a fresh captcha cookie):

	GET /               - Board list
	GET /recent         - Latest posts across boards
	GET /{board}        - Latest posts of a board
	GET /{board}/{id}   - Thread with its replies

Posting (multipart, rate limited, body capped at the upload limit):

	POST /{board}       - New thread, or reply when parent is set

Media:

	GET /media/{name}   - Stored upload by content-addressed name

Admin area:

	GET  /.toki/captcha - Challenge image
	POST /.toki/login   - Start a session
	GET  /.toki/logout  - End the session
	POST /.toki/signup  - Create an account (first one becomes admin)
	GET  /.toki/mod     - Account list, session required

# Handler Initialization

The router creates handler instances with dependency injection:

	boardHandler := handlers.NewBoardHandler(db, cfg)
	mediaHandler := handlers.NewMediaHandler(store)
	adminHandler := handlers.NewAdminHandler(db, cfg)

Board names "recent", "media" and "health" are rejected by cliparse since
they would be shadowed by the fixed routes.
*/
package router
