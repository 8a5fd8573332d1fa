// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/danielhkuo/tokichan/auth"
	"github.com/danielhkuo/tokichan/captcha"
	"github.com/danielhkuo/tokichan/cliparse"
	"github.com/danielhkuo/tokichan/db"
	"github.com/danielhkuo/tokichan/models"
	"github.com/danielhkuo/tokichan/upload"
)

// TestSecret signs session tokens in tests
const TestSecret = "test-session-secret"

// TestBoards are seeded into every test database
var TestBoards = []models.Board{
	{Name: "b", Title: "Random"},
	{Name: "g", Title: "Technology"},
}

// SetupTestDB creates a fresh in-memory database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.DialectSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn, db.DialectSQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	if err := db.SeedBoards(conn, TestBoards); err != nil {
		t.Fatalf("Failed to seed boards: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:            3318,
		DatabaseURL:     ":memory:",
		DatabaseType:    db.DialectSQLite,
		SessionSecret:   TestSecret,
		CookieSecure:    true,
		LogLevel:        "debug",
		Storage:         cliparse.StorageFS,
		UploadDir:       "/uploads",
		UploadLimit:     1 << 20,
		PostsPerMinute:  60,
		CaptchaPoolSize: 2,
		CaptchaInterval: time.Hour,
		CaptchaLength:   4,
		CaptchaWidth:    120,
		CaptchaHeight:   40,
		Boards:          TestBoards,
	}
}

// NewMemStore returns a file store backed by memory
func NewMemStore(t *testing.T) *upload.FSStore {
	t.Helper()
	store, err := upload.NewFSStore(afero.NewMemMapFs(), "/uploads")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

// FixedChallenges always hands out the same challenge
type FixedChallenges struct {
	Secret string
	Image  []byte
}

func (f FixedChallenges) Draw() captcha.Challenge {
	return captcha.Challenge{Secret: f.Secret, Image: f.Image}
}

// CaptchaCookie returns the cookie a client holds after being issued secret
func CaptchaCookie(secret string) *http.Cookie {
	return &http.Cookie{Name: "captcha", Value: captcha.Token(secret)}
}

// CreateTestPost inserts a post and returns its ID.
// parent is 0 for a thread opener.
func CreateTestPost(t *testing.T, conn *sql.DB, board string, parent int64, body string, files ...string) int64 {
	t.Helper()

	var parentID *int64
	if parent != 0 {
		parentID = &parent
	}

	var id int64
	err := conn.QueryRow(`
		INSERT INTO post (parent, board, created, op, body)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, parentID, board, time.Now().UTC(), models.DefaultOp, body).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test post: %v", err)
	}

	for i, name := range files {
		_, err := conn.Exec(`
			INSERT INTO post_file (post_id, position, name)
			VALUES ($1, $2, $3)
		`, id, i, name)
		if err != nil {
			t.Fatalf("Failed to attach test file: %v", err)
		}
	}

	_, err = conn.Exec(`UPDATE board SET posts = posts + 1 WHERE name = $1`, board)
	if err != nil {
		t.Fatalf("Failed to bump board counter: %v", err)
	}

	return id
}

// CreateTestUser inserts an account and returns its ID
func CreateTestUser(t *testing.T, conn *sql.DB, name, password, role string) int64 {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	var id int64
	err = conn.QueryRow(`
		INSERT INTO account (name, password_hash, role, created)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, name, hash, role, time.Now().UTC()).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return id
}

// SessionCookie returns a valid admin area cookie for the user
func SessionCookie(t *testing.T, name, role string) *http.Cookie {
	t.Helper()
	token, err := auth.NewSessionToken(name, role, []byte(TestSecret), time.Now())
	if err != nil {
		t.Fatalf("Failed to sign session: %v", err)
	}
	return &http.Cookie{Name: auth.SessionCookie, Value: token}
}

// Field is one part of a multipart form. An empty Name leaves the
// part without a name parameter.
type Field struct {
	Name  string
	Value []byte
}

// Text is a text form field
func Text(name, value string) Field {
	return Field{Name: name, Value: []byte(value)}
}

// MultipartBody encodes fields in order and returns the body with its Content-Type
func MultipartBody(t *testing.T, fields ...Field) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range fields {
		h := textproto.MIMEHeader{}
		if f.Name == "" {
			h.Set("Content-Disposition", "form-data")
		} else {
			h.Set("Content-Disposition", `form-data; name="`+f.Name+`"`)
		}
		pw, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("Failed to create part: %v", err)
		}
		if _, err := pw.Write(f.Value); err != nil {
			t.Fatalf("Failed to write part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	return &buf, mw.FormDataContentType()
}

// PostRequest builds a multipart POST to path
func PostRequest(t *testing.T, path string, fields ...Field) *http.Request {
	t.Helper()
	body, ct := MultipartBody(t, fields...)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", ct)
	return req
}

// PNG encodes a w x 1 image whose pixels depend on shade, so different
// shades give different file contents
func PNG(t *testing.T, w int, shade uint8) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, 1))
	for x := 0; x < w; x++ {
		img.SetGray(x, 0, color.Gray{Y: shade})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
