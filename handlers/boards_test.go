// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/danielhkuo/tokichan/middleware"
	"github.com/danielhkuo/tokichan/models"
	"github.com/danielhkuo/tokichan/testutil"
)

var testChallenge = testutil.FixedChallenges{Secret: "aB3x", Image: []byte("\x89PNG fake")}

func TestListBoards(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewBoardHandler(db, testutil.GetTestConfig())

	testutil.CreateTestPost(t, db, "g", 0, "first")

	w := httptest.NewRecorder()
	h.ListBoards(w, httptest.NewRequest("GET", "/", nil))

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.BoardsResponse
	testutil.AssertJSON(t, w, &resp)

	if len(resp.Boards) != 2 {
		t.Fatalf("Expected 2 boards, got %d", len(resp.Boards))
	}
	if resp.Boards[0].Name != "b" || resp.Boards[1].Name != "g" {
		t.Errorf("Expected boards sorted by name, got %+v", resp.Boards)
	}
	if resp.Boards[1].Posts != 1 {
		t.Errorf("Expected g to count 1 post, got %d", resp.Boards[1].Posts)
	}
}

func TestBoard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewBoardHandler(db, testutil.GetTestConfig())

	older := testutil.CreateTestPost(t, db, "b", 0, "older", "a.png", "b.png")
	newer := testutil.CreateTestPost(t, db, "b", 0, "newer")
	testutil.CreateTestPost(t, db, "b", older, "a reply")
	testutil.CreateTestPost(t, db, "g", 0, "elsewhere")

	handler := middleware.IssueCaptcha(testChallenge, true, h.Board)
	req := httptest.NewRequest("GET", "/b", nil)
	req.SetPathValue("board", "b")
	w := httptest.NewRecorder()
	handler(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.BoardPageResponse
	testutil.AssertJSON(t, w, &resp)

	if len(resp.Posts) != 2 {
		t.Fatalf("Expected 2 threads, got %d", len(resp.Posts))
	}
	if resp.Posts[0].ID != newer || resp.Posts[1].ID != older {
		t.Errorf("Expected newest thread first, got %d, %d", resp.Posts[0].ID, resp.Posts[1].ID)
	}
	if got := strings.Join(resp.Posts[1].Files, ","); got != "a.png,b.png" {
		t.Errorf("Expected files in order, got %q", got)
	}
	if resp.Posts[0].Files == nil {
		t.Error("Expected an empty file list, not null")
	}

	want := "data:image/png;base64," + base64.StdEncoding.EncodeToString(testChallenge.Image)
	if resp.CaptchaImage != want {
		t.Errorf("Expected captcha image data URL, got %q", resp.CaptchaImage)
	}
	if len(w.Result().Cookies()) != 1 {
		t.Error("Expected the captcha cookie to be set")
	}
}

func TestBoard_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewBoardHandler(db, testutil.GetTestConfig())

	req := httptest.NewRequest("GET", "/x", nil)
	req.SetPathValue("board", "x")
	w := httptest.NewRecorder()
	h.Board(w, req)

	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestBoard_PageSize(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewBoardHandler(db, testutil.GetTestConfig())

	for i := 0; i < PageSize+5; i++ {
		testutil.CreateTestPost(t, db, "b", 0, "post "+strconv.Itoa(i))
	}

	req := httptest.NewRequest("GET", "/b", nil)
	req.SetPathValue("board", "b")
	w := httptest.NewRecorder()
	h.Board(w, req)

	var resp models.BoardPageResponse
	testutil.AssertJSON(t, w, &resp)
	if len(resp.Posts) != PageSize {
		t.Errorf("Expected %d posts, got %d", PageSize, len(resp.Posts))
	}
}

func TestRecent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewBoardHandler(db, testutil.GetTestConfig())

	first := testutil.CreateTestPost(t, db, "b", 0, "on b")
	testutil.CreateTestPost(t, db, "b", first, "reply")
	second := testutil.CreateTestPost(t, db, "g", 0, "on g", "x.gif")

	w := httptest.NewRecorder()
	h.Recent(w, httptest.NewRequest("GET", "/recent", nil))

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.BoardPageResponse
	testutil.AssertJSON(t, w, &resp)

	if len(resp.Posts) != 2 {
		t.Fatalf("Expected 2 threads across boards, got %d", len(resp.Posts))
	}
	if resp.Posts[0].ID != second || resp.Posts[0].Board != "g" {
		t.Errorf("Expected newest thread first, got %+v", resp.Posts[0])
	}
	if resp.CaptchaImage != "" {
		t.Error("Expected no captcha image without IssueCaptcha")
	}
}

func TestThread(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewBoardHandler(db, testutil.GetTestConfig())

	op := testutil.CreateTestPost(t, db, "b", 0, "opener", "op.png")
	r1 := testutil.CreateTestPost(t, db, "b", op, "reply one")
	r2 := testutil.CreateTestPost(t, db, "b", op, "reply two", "r.jpeg")
	other := testutil.CreateTestPost(t, db, "b", 0, "other thread")
	testutil.CreateTestPost(t, db, "b", other, "not ours")

	thread := func(board string, id int64) *httptest.ResponseRecorder {
		idStr := strconv.FormatInt(id, 10)
		req := httptest.NewRequest("GET", "/"+board+"/"+idStr, nil)
		req.SetPathValue("board", board)
		req.SetPathValue("id", idStr)
		w := httptest.NewRecorder()
		h.Thread(w, req)
		return w
	}

	w := thread("b", op)
	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.ThreadResponse
	testutil.AssertJSON(t, w, &resp)

	if resp.Post.ID != op || resp.Post.Parent != nil {
		t.Errorf("Expected opener %d, got %+v", op, resp.Post)
	}
	if len(resp.Children) != 2 || resp.Children[0].ID != r1 || resp.Children[1].ID != r2 {
		t.Fatalf("Expected replies %d, %d in order, got %+v", r1, r2, resp.Children)
	}
	if resp.Children[0].Parent == nil || *resp.Children[0].Parent != op {
		t.Error("Expected replies to point at the opener")
	}
	if len(resp.Children[1].Files) != 1 || resp.Children[1].Files[0] != "r.jpeg" {
		t.Errorf("Expected reply file, got %v", resp.Children[1].Files)
	}

	tests := []struct {
		name  string
		board string
		id    int64
	}{
		{"reply is not a thread", "b", r1},
		{"wrong board", "g", op},
		{"missing", "b", 9999},
		{"zero", "b", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertStatus(t, thread(tt.board, tt.id), http.StatusNotFound)
		})
	}

	t.Run("not a number", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/b/abc", nil)
		req.SetPathValue("board", "b")
		req.SetPathValue("id", "abc")
		w := httptest.NewRecorder()
		h.Thread(w, req)
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestChallengePNG(t *testing.T) {
	handler := middleware.IssueCaptcha(testChallenge, true, ChallengePNG)

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/.toki/captcha", nil))

	testutil.AssertStatus(t, w, http.StatusOK)
	if w.Header().Get("Content-Type") != "image/png" {
		t.Errorf("Expected image/png, got %q", w.Header().Get("Content-Type"))
	}
	if w.Body.String() != string(testChallenge.Image) {
		t.Error("Expected the challenge image bytes")
	}
	if w.Header().Get("Set-Cookie") == "" {
		t.Error("Expected the captcha cookie to be set")
	}
}
