// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name    string
		byteLen int
		wantLen int // hex encoded length = byteLen * 2
	}{
		{"8 bytes", 8, 16},
		{"16 bytes", 16, 32},
		{"24 bytes", 24, 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := GenerateID(tt.byteLen)
			if err != nil {
				t.Fatalf("GenerateID() error = %v", err)
			}
			if len(id) != tt.wantLen {
				t.Errorf("GenerateID() length = %d, want %d", len(id), tt.wantLen)
			}
			// Verify it's valid hex
			for _, c := range id {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
					t.Errorf("GenerateID() contains invalid hex char: %c", c)
				}
			}
		})
	}

	// Test randomness - two IDs should be different
	id1, _ := GenerateID(16)
	id2, _ := GenerateID(16)
	if id1 == id2 {
		t.Error("GenerateID() produced duplicate IDs (extremely unlikely)")
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "hunter22" || !strings.HasPrefix(hash, "$2") {
		t.Errorf("HashPassword() = %q, want a bcrypt hash", hash)
	}

	if err := CheckPassword(hash, "hunter22"); err != nil {
		t.Errorf("CheckPassword() correct password error = %v", err)
	}
	if err := CheckPassword(hash, "hunter23"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("CheckPassword() wrong password error = %v, want ErrInvalidCredentials", err)
	}

	if _, err := HashPassword(""); !errors.Is(err, ErrEmptyPassword) {
		t.Errorf("HashPassword(\"\") error = %v, want ErrEmptyPassword", err)
	}
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"valid", "admin", "pw", nil},
		{"empty username", "", "pw", ErrEmptyUsername},
		{"blank username", "   ", "pw", ErrEmptyUsername},
		{"empty password", "admin", "", ErrEmptyPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCredentials(tt.username, tt.password)
			if !errors.Is(err, tt.want) {
				t.Errorf("ValidateCredentials() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPublicLoginError(t *testing.T) {
	if err := PublicLoginError(ErrNonExistentUser); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user should look like bad credentials, got %v", err)
	}
	if err := PublicLoginError(ErrEmptyUsername); !errors.Is(err, ErrEmptyUsername) {
		t.Errorf("empty username should pass through, got %v", err)
	}
}

func TestSessionToken(t *testing.T) {
	secret := []byte("session-secret")
	now := time.Now()

	token, err := NewSessionToken("admin", "admin", secret, now)
	if err != nil {
		t.Fatalf("NewSessionToken() error = %v", err)
	}

	session, err := ParseSessionToken(token, secret)
	if err != nil {
		t.Fatalf("ParseSessionToken() error = %v", err)
	}
	if session.Username != "admin" || session.Role != "admin" {
		t.Errorf("ParseSessionToken() = %+v", session)
	}
	if len(session.ID) != 32 {
		t.Errorf("session id length = %d, want 32", len(session.ID))
	}

	other, _ := NewSessionToken("admin", "admin", secret, now)
	if other == token {
		t.Error("two sessions share a token")
	}
}

func TestParseSessionToken_Invalid(t *testing.T) {
	secret := []byte("session-secret")
	valid, _ := NewSessionToken("mod", "moderator", secret, time.Now())
	expired, _ := NewSessionToken("mod", "moderator", secret, time.Now().Add(-2*SessionTTL))

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"username": "mod", "iss": sessionIssuer})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	foreign, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"username": "mod", "iss": "someone-else"}).SignedString(secret)

	tests := []struct {
		name   string
		token  string
		secret []byte
	}{
		{"garbage", "not-a-token", secret},
		{"empty", "", secret},
		{"wrong secret", valid, []byte("other")},
		{"expired", expired, secret},
		{"alg none", unsigned, secret},
		{"wrong issuer", foreign, secret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSessionToken(tt.token, tt.secret)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("ParseSessionToken() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestHashIP(t *testing.T) {
	tests := []struct {
		name string
		ip   string
		salt string
	}{
		{"IPv4", "192.168.1.1", "ip-salt"},
		{"IPv6", "2001:0db8:85a3::8a2e:0370:7334", "ip-salt"},
		{"localhost", "127.0.0.1", "ip-salt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash := HashIP(tt.ip, tt.salt)

			// Should be 16 hex characters (8 bytes * 2)
			if len(hash) != 16 {
				t.Errorf("HashIP() length = %d, want 16", len(hash))
			}

			// Should be deterministic
			if hash != HashIP(tt.ip, tt.salt) {
				t.Error("HashIP() is not deterministic")
			}
		})
	}

	// Different salts should produce different hashes
	if HashIP("192.168.1.1", "salt1") == HashIP("192.168.1.1", "salt2") {
		t.Error("HashIP() produced same hash for different salts")
	}
}

// Benchmark tests
func BenchmarkGenerateID(b *testing.B) {
	for i := 0; i < b.N; i++ {
		GenerateID(16)
	}
}

func BenchmarkNewSessionToken(b *testing.B) {
	secret := []byte("bench-secret")
	now := time.Now()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		NewSessionToken("admin", "admin", secret, now)
	}
}
