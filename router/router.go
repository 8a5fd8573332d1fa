// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/tokichan/cliparse"
	"github.com/danielhkuo/tokichan/form"
	"github.com/danielhkuo/tokichan/handlers"
	"github.com/danielhkuo/tokichan/middleware"
	"github.com/danielhkuo/tokichan/upload"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, store upload.Store, challenges middleware.Drawer) *http.ServeMux {
	mux := http.NewServeMux()

	allowed := cfg.AllowedMIMEs
	if len(allowed) == 0 {
		allowed = upload.DefaultAllowedMIMEs
	}
	parser := form.NewParser(upload.NewSniffer(allowed), store)
	limiter := middleware.NewRateLimiter(cfg.PostsPerMinute, cfg.TrustedProxies...)
	secret := []byte(cfg.SessionSecret)

	// Initialize handlers
	boardHandler := handlers.NewBoardHandler(db, cfg)
	mediaHandler := handlers.NewMediaHandler(store)
	adminHandler := handlers.NewAdminHandler(db, cfg)

	issue := func(next http.HandlerFunc) http.HandlerFunc {
		return middleware.IssueCaptcha(challenges, cfg.CookieSecure, next)
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Reading (public, each page carries a fresh challenge)
	mux.HandleFunc("GET /{$}", middleware.WithLogging(boardHandler.ListBoards))
	mux.HandleFunc("GET /recent", middleware.WithLogging(issue(boardHandler.Recent)))
	mux.HandleFunc("GET /{board}", middleware.WithLogging(issue(boardHandler.Board)))
	mux.HandleFunc("GET /{board}/{id}", middleware.WithLogging(issue(boardHandler.Thread)))

	// Posting
	mux.HandleFunc("POST /{board}", middleware.WithLogging(
		limiter.Limit(
			middleware.BodyLimit(cfg.UploadLimit,
				middleware.VerifyCaptcha(parser, boardHandler.CreatePost)))))

	// Media
	mux.HandleFunc("GET /media/{name}", middleware.WithLogging(mediaHandler.Serve))

	// Admin area
	mux.HandleFunc("GET /.toki/captcha", middleware.WithLogging(issue(handlers.ChallengePNG)))
	mux.HandleFunc("POST /.toki/login", middleware.WithLogging(adminHandler.Login))
	mux.HandleFunc("GET /.toki/logout", middleware.WithLogging(adminHandler.Logout))
	mux.HandleFunc("POST /.toki/signup", middleware.WithLogging(middleware.LoadSession(secret, adminHandler.Signup)))
	mux.HandleFunc("GET /.toki/mod", middleware.WithLogging(middleware.RequireSession(secret, adminHandler.Mod)))

	return mux
}
