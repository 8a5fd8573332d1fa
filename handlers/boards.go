// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/tokichan/cliparse"
	"github.com/danielhkuo/tokichan/middleware"
	"github.com/danielhkuo/tokichan/models"
)

// PageSize caps board and recent pages
const PageSize = 100

var errBoardNotFound = errors.New("board not found")

type BoardHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewBoardHandler(db *sql.DB, cfg cliparse.Config) *BoardHandler {
	return &BoardHandler{db: db, cfg: cfg}
}

// ListBoards handles GET /
func (h *BoardHandler) ListBoards(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.QueryContext(r.Context(), `SELECT name, title, posts FROM board ORDER BY name`)
	if err != nil {
		slog.Error("failed to query boards", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	boards := []models.Board{}
	for rows.Next() {
		var b models.Board
		if err := rows.Scan(&b.Name, &b.Title, &b.Posts); err != nil {
			slog.Error("failed to scan board", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		boards = append(boards, b)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate boards", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.BoardsResponse{Boards: boards})
}

// Recent handles GET /recent
func (h *BoardHandler) Recent(w http.ResponseWriter, r *http.Request) {
	posts, err := queryPosts(r.Context(), h.db, `
		WHERE p.id IN (
			SELECT id FROM post WHERE parent IS NULL ORDER BY id DESC LIMIT $1
		)
		ORDER BY p.id DESC, f.position
	`, PageSize)
	if err != nil {
		slog.Error("failed to query recent posts", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.BoardPageResponse{
		Posts:        posts,
		CaptchaImage: captchaDataURL(r),
	})
}

// Board handles GET /{board}
func (h *BoardHandler) Board(w http.ResponseWriter, r *http.Request) {
	board := r.PathValue("board")

	if err := boardExists(r.Context(), h.db, board); err != nil {
		if errors.Is(err, errBoardNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Board not found")
			return
		}
		slog.Error("failed to query board", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	posts, err := queryPosts(r.Context(), h.db, `
		WHERE p.id IN (
			SELECT id FROM post WHERE board = $1 AND parent IS NULL ORDER BY id DESC LIMIT $2
		)
		ORDER BY p.id DESC, f.position
	`, board, PageSize)
	if err != nil {
		slog.Error("failed to query board posts", "board", board, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.BoardPageResponse{
		Board:        board,
		Posts:        posts,
		CaptchaImage: captchaDataURL(r),
	})
}

// Thread handles GET /{board}/{id}
func (h *BoardHandler) Thread(w http.ResponseWriter, r *http.Request) {
	board := r.PathValue("board")
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Thread not found")
		return
	}

	posts, err := queryPosts(r.Context(), h.db, `
		WHERE p.board = $1 AND (
			(p.id = $2 AND p.parent IS NULL) OR p.parent = $2
		)
		ORDER BY p.id, f.position
	`, board, id)
	if err != nil {
		slog.Error("failed to query thread", "board", board, "id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// replies of a reply don't exist, so an empty result or a first row
	// that isn't the opener both mean there is no such thread
	if len(posts) == 0 || posts[0].ID != id {
		middleware.ErrorResponse(w, http.StatusNotFound, "Thread not found")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ThreadResponse{
		Board:        board,
		Post:         posts[0],
		Children:     posts[1:],
		CaptchaImage: captchaDataURL(r),
	})
}

// ChallengePNG handles GET /.toki/captcha
func ChallengePNG(w http.ResponseWriter, r *http.Request) {
	img := middleware.ChallengeImage(r.Context())
	if img == nil {
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "No challenge available")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(img)
}

func captchaDataURL(r *http.Request) string {
	img := middleware.ChallengeImage(r.Context())
	if img == nil {
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(img)
}

// querier is satisfied by *sql.DB and *sql.Tx
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func boardExists(ctx context.Context, q querier, board string) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM board WHERE name = $1`, board).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return errBoardNotFound
	}
	return err
}

// queryPosts loads posts with their files. where filters and orders the
// post p / post_file f join; rows of one post must be adjacent.
func queryPosts(ctx context.Context, q querier, where string, args ...any) ([]models.Post, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT p.id, p.parent, p.board, p.created, p.op, p.email, p.subject, p.body, f.name
		FROM post p
		LEFT JOIN post_file f ON f.post_id = p.id
	`+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		var p models.Post
		var parent sql.NullInt64
		var file sql.NullString
		err := rows.Scan(&p.ID, &parent, &p.Board, &p.Created, &p.Op, &p.Email, &p.Subject, &p.Body, &file)
		if err != nil {
			return nil, err
		}

		if n := len(posts); n == 0 || posts[n-1].ID != p.ID {
			if parent.Valid {
				p.Parent = &parent.Int64
			}
			p.Files = []string{}
			posts = append(posts, p)
		}
		if file.Valid {
			last := &posts[len(posts)-1]
			last.Files = append(last.Files, file.String)
		}
	}

	return posts, rows.Err()
}
