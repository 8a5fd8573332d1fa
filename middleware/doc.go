// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Each request gets a UUID (or keeps a valid incoming X-Request-ID), echoed
in the X-Request-ID response header. Start and completion are logged with
method, path, status and duration_ms. Recover turns panics into 500s.

# Captcha Binding

IssueCaptcha wraps the pages that show the post form. It draws a
challenge, sets

	Set-Cookie: captcha=<base64 RIPEMD-160 of the secret>; Path=/; Secure; HttpOnly; SameSite=Strict

and hands the PNG to the page handler:

	img := middleware.ChallengeImage(r.Context())

VerifyCaptcha wraps post creation. It parses the multipart form with a
form.Parser, hashes the captcha field and compares it with the cookie.
The handler then reads the outcome:

	sub, _ := middleware.SubmissionFrom(r.Context())
	if sub.Err != nil { ... } // never persist

A missing cookie and a wrong answer both yield form.ErrIncorrectCaptcha.

# Limits

BodyLimit caps request bodies (413 past the cap). RateLimiter keeps a
token bucket per client IP and answers 429 with Retry-After when a
client runs dry:

	limiter := middleware.NewRateLimiter(cfg.PostsPerMinute, cfg.TrustedProxies...)
	mux.HandleFunc("POST /{board}", limiter.Limit(handler))

The client is the TCP peer. X-Forwarded-For and X-Real-IP only count when
the peer is one of the trusted proxies. Buckets that have refilled are
swept once a minute.

# Sessions

LoadSession attaches the admin area session from a valid session cookie.
RequireSession answers 401 without one:

	session, ok := middleware.SessionFrom(r.Context())

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies:

	var creds models.Credentials
	if err := middleware.ParseJSONBody(r, &creds); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the client IP as reported by forwarding headers (X-Forwarded-For,
X-Real-IP), for logs only since clients can set those headers:

	ip := middleware.GetClientIP(r)

Post creation logs it hashed. The rate limiter uses RateLimiter.ClientKey.
*/
package middleware
