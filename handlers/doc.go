// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the tokichan API.

# Handler Types

Each handler is a struct with its dependencies:

  - BoardHandler: Board listing, board pages, threads and post creation
  - MediaHandler: Serving stored uploads
  - AdminHandler: Login, logout, signup and the mod page

Handlers are created via constructor functions:

	boardHandler := handlers.NewBoardHandler(db, cfg)
	mediaHandler := handlers.NewMediaHandler(store)

# Reading

	GET /               → ListBoards
	GET /recent         → Recent (newest threads of all boards)
	GET /{board}        → Board (newest threads first, PageSize at most)
	GET /{board}/{id}   → Thread (opener plus replies in order)

Pages that show the post form run behind middleware.IssueCaptcha and
embed the challenge as a data URL in captcha_image.

# Posting

	POST /{board} → CreatePost

CreatePost runs behind middleware.VerifyCaptcha. It waits for the file
saves scheduled while parsing, then validates and stores the post, its
files and the board counter bump in one transaction. Nothing is stored
for a rejected submission. Errors map to statuses through form.StatusCode:

  - 400: malformed form, missing key, unrecognized file slot, bad parent
  - 403: incorrect captcha
  - 404: unknown board
  - 413: body over the upload limit
  - 500: storage or database failure

# Admin Area

	POST /.toki/login   → Login (sets the session cookie)
	GET  /.toki/logout  → Logout
	POST /.toki/signup  → Signup (first account bootstraps as admin)
	GET  /.toki/mod     → Mod (session required)
	GET  /.toki/captcha → ChallengePNG
*/
package handlers
