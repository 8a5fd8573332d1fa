// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmptyUsername      = errors.New("username is empty")
	ErrEmptyPassword      = errors.New("password is empty")
	ErrNonExistentUser    = errors.New("user does not exist")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid session token")
)

const (
	// SessionCookie holds the signed session token of the admin area.
	SessionCookie = "toki_session"
	// SessionTTL is how long a login lasts.
	SessionTTL = 7 * 24 * time.Hour

	sessionIssuer = "tokichan"
)

// Session is the identity carried by a session token.
type Session struct {
	ID       string `json:"sid"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type sessionClaims struct {
	Session
	jwt.RegisteredClaims
}

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashPassword returns the bcrypt hash of a password
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a password with a stored bcrypt hash
func CheckPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidCredentials
	}
	return err
}

// ValidateCredentials checks the shape of a login attempt before any lookup
func ValidateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" {
		return ErrEmptyUsername
	}
	if password == "" {
		return ErrEmptyPassword
	}
	return nil
}

// PublicLoginError hides whether the user or the password was wrong
func PublicLoginError(err error) error {
	if errors.Is(err, ErrNonExistentUser) {
		return ErrInvalidCredentials
	}
	return err
}

// NewSessionToken signs a session for the given user
func NewSessionToken(username, role string, secret []byte, now time.Time) (string, error) {
	sid, err := GenerateID(16)
	if err != nil {
		return "", err
	}
	claims := &sessionClaims{
		Session: Session{ID: sid, Username: username, Role: role},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// ParseSessionToken verifies a signed session token
func ParseSessionToken(token string, secret []byte) (Session, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithIssuer(sessionIssuer))
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Username == "" {
		return Session{}, ErrInvalidToken
	}
	return claims.Session, nil
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}
