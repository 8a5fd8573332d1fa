// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/tokichan/models"
)

func TestWithLogging(t *testing.T) {
	// Create a simple handler that returns OK
	handlerCalled := false
	testHandler := func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("success"))
	}

	// Wrap with logging middleware
	wrappedHandler := WithLogging(testHandler)

	// Create test request and recorder
	req := httptest.NewRequest("GET", "/test-path", nil)
	w := httptest.NewRecorder()

	// Execute
	wrappedHandler(w, req)

	// Verify handler was called
	if !handlerCalled {
		t.Error("Expected handler to be called")
	}

	// Verify response was written correctly
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "success" {
		t.Errorf("Expected body 'success', got '%s'", w.Body.String())
	}
}

func TestWithLogging_PreservesResponse(t *testing.T) {
	// Test that logging doesn't interfere with various response codes
	testCases := []struct {
		name       string
		statusCode int
		body       string
	}{
		{"OK", http.StatusOK, "ok"},
		{"Created", http.StatusCreated, `{"id":"123"}`},
		{"BadRequest", http.StatusBadRequest, `{"error":"bad request"}`},
		{"NotFound", http.StatusNotFound, "not found"},
		{"InternalError", http.StatusInternalServerError, "error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
				w.Write([]byte(tc.body))
			})

			req := httptest.NewRequest("POST", "/b", nil)
			w := httptest.NewRecorder()

			handler(w, req)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
			if w.Body.String() != tc.body {
				t.Errorf("Expected body '%s', got '%s'", tc.body, w.Body.String())
			}
		})
	}
}

func TestWithLogging_RequestID(t *testing.T) {
	var seen string
	handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	})

	t.Run("assigns a new id", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler(w, httptest.NewRequest("GET", "/b", nil))

		if _, err := uuid.Parse(seen); err != nil {
			t.Fatalf("Expected a uuid request id, got %q", seen)
		}
		if w.Header().Get(RequestIDHeader) != seen {
			t.Errorf("Expected %s header %q, got %q", RequestIDHeader, seen, w.Header().Get(RequestIDHeader))
		}
	})

	t.Run("keeps a valid incoming id", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest("GET", "/b", nil)
		req.Header.Set(RequestIDHeader, id)
		handler(httptest.NewRecorder(), req)

		if seen != id {
			t.Errorf("Expected request id %q, got %q", id, seen)
		}
	})

	t.Run("replaces a junk incoming id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/b", nil)
		req.Header.Set(RequestIDHeader, "<script>")
		handler(httptest.NewRecorder(), req)

		if seen == "<script>" {
			t.Error("Expected junk request id to be replaced")
		}
	})
}

func TestRecover(t *testing.T) {
	handler := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
	var resp models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if strings.Contains(resp.Message, "boom") {
		t.Error("Panic value leaked to the client")
	}
}

func TestJSONResponse(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		data       any
		expected   string
	}{
		{"created post", http.StatusCreated, models.CreatePostResponse{ID: 7, Board: "b", Files: []string{"x.png"}}, `{"id":7,"board":"b","files":["x.png"]}`},
		{"reply keeps parent", http.StatusCreated, models.CreatePostResponse{ID: 8, Board: "b", Parent: ptr(int64(7)), Files: []string{}}, `{"id":8,"board":"b","parent":7,"files":[]}`},
		{"board list", http.StatusOK, models.BoardsResponse{Boards: []models.Board{{Name: "g", Title: "Technology", Posts: 3}}}, `{"boards":[{"name":"g","title":"Technology","posts":3}]}`},
		{"page without challenge omits image", http.StatusOK, models.BoardPageResponse{Board: "b", Posts: []models.Post{}}, `{"board":"b","posts":[]}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			JSONResponse(w, tc.statusCode, tc.data)

			assert.Equal(t, tc.statusCode, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.expected, w.Body.String())
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestErrorResponse(t *testing.T) {
	testCases := []struct {
		statusCode int
		message    string
	}{
		{http.StatusBadRequest, "no key for one or more fields"},
		{http.StatusForbidden, "incorrect captcha"},
		{http.StatusRequestEntityTooLarge, "body exceeded allowed limit"},
		{http.StatusTooManyRequests, "slow down"},
		{http.StatusInternalServerError, "file persistence failed"},
	}

	for _, tc := range testCases {
		t.Run(http.StatusText(tc.statusCode), func(t *testing.T) {
			w := httptest.NewRecorder()

			ErrorResponse(w, tc.statusCode, tc.message)

			require.Equal(t, tc.statusCode, w.Code)
			var resp models.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, http.StatusText(tc.statusCode), resp.Error)
			assert.Equal(t, tc.message, resp.Message)
		})
	}
}

func TestParseJSONBody(t *testing.T) {
	parse := func(body string) (models.Credentials, error) {
		var creds models.Credentials
		err := ParseJSONBody(httptest.NewRequest("POST", "/.toki/login", strings.NewReader(body)), &creds)
		return creds, err
	}

	creds, err := parse(`{"username":"admin","password":"hunter22","role":"moderator","extra":1}`)
	require.NoError(t, err)
	assert.Equal(t, models.Credentials{Username: "admin", Password: "hunter22", Role: "moderator"}, creds)

	for _, body := range []string{"", "{invalid json}", `{"username":`} {
		_, err := parse(body)
		assert.Error(t, err, "body %q", body)
	}
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("handled"))
	})
	handler := CORS(next)

	t.Run("preflight stops before the handler", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/b", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
		assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), RequestIDHeader)
		for _, method := range []string{"GET", "POST", "OPTIONS"} {
			assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), method)
		}
	})

	t.Run("post form reaches the handler", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/b", nil)
		req.Header.Set("Origin", "https://toki.example")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, "handled", w.Body.String())
		assert.Equal(t, "https://toki.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, RequestIDHeader, w.Header().Get("Access-Control-Expose-Headers"))
	})

	t.Run("no origin falls back to wildcard", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/b", nil))
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expectedIP string
	}{
		{"forwarded single", map[string]string{"X-Forwarded-For": "192.168.1.100"}, "10.0.0.1:12345", "192.168.1.100"},
		{"forwarded chain keeps the client", map[string]string{"X-Forwarded-For": "203.0.113.195, 70.41.3.18"}, "127.0.0.1:12345", "203.0.113.195"},
		{"forwarded beats real ip", map[string]string{"X-Forwarded-For": "192.168.1.100", "X-Real-IP": "203.0.113.50"}, "10.0.0.1:12345", "192.168.1.100"},
		{"blank forwarded entry is skipped", map[string]string{"X-Forwarded-For": " , 10.1.1.1", "X-Real-IP": "203.0.113.50"}, "10.0.0.1:12345", "203.0.113.50"},
		{"real ip", map[string]string{"X-Real-IP": " 203.0.113.50 "}, "10.0.0.1:12345", "203.0.113.50"},
		{"remote addr port stripped", nil, "192.168.1.50:54321", "192.168.1.50"},
		{"remote addr without port", nil, "192.168.1.50", "192.168.1.50"},
		{"ipv6 remote addr", nil, "[::1]:12345", "::1"},
		{"ipv6 forwarded", map[string]string{"X-Forwarded-For": "2001:db8::1"}, "127.0.0.1:12345", "2001:db8::1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			assert.Equal(t, tc.expectedIP, GetClientIP(req))
		})
	}
}
