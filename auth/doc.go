// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides password hashing, session tokens and ID generation
for the hidden admin area.

# Passwords

Passwords are stored as bcrypt hashes:

	hash, err := auth.HashPassword(password)
	err = auth.CheckPassword(hash, attempt) // ErrInvalidCredentials on mismatch

ValidateCredentials rejects empty usernames and passwords before any
lookup. PublicLoginError folds ErrNonExistentUser into
ErrInvalidCredentials so a login response never reveals which half was
wrong.

# Sessions

A login issues an HS512 JWT carrying the username, role and a random
session ID. It is stored in the SessionCookie cookie:

	token, err := auth.NewSessionToken(user.Name, user.Role, secret, time.Now())
	session, err := auth.ParseSessionToken(cookie.Value, secret)

Tokens expire after SessionTTL. Only HMAC signing methods are accepted.

# IP Hashing

Client addresses are never logged in plain text:

	client := auth.HashIP(ip, salt)

The hash is a truncated HMAC-SHA256 (16 hex chars).
*/
package auth
