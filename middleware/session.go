// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"net/http"

	"github.com/danielhkuo/tokichan/auth"
)

// LoadSession attaches the session from a valid session cookie, if any.
// Requests without one pass through unchanged.
func LoadSession(secret []byte, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(auth.SessionCookie); err == nil {
			if session, err := auth.ParseSessionToken(cookie.Value, secret); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), sessionKey, session))
			}
		}
		next(w, r)
	}
}

// RequireSession rejects requests without a valid session cookie with 401.
func RequireSession(secret []byte, next http.HandlerFunc) http.HandlerFunc {
	return LoadSession(secret, func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SessionFrom(r.Context()); !ok {
			ErrorResponse(w, http.StatusUnauthorized, "Login required")
			return
		}
		next(w, r)
	})
}

// SessionFrom returns the session attached by LoadSession
func SessionFrom(ctx context.Context) (auth.Session, bool) {
	session, ok := ctx.Value(sessionKey).(auth.Session)
	return session, ok
}
