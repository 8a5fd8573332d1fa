// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/tokichan/auth"
	"github.com/danielhkuo/tokichan/form"
	"github.com/danielhkuo/tokichan/middleware"
	"github.com/danielhkuo/tokichan/models"
)

var errBadParent = fmt.Errorf("%w: not a thread on this board", form.ErrInvalidParent)

// CreatePost handles POST /{board}. It runs behind middleware.VerifyCaptcha
// and only persists a submission that parsed, saved its files and passed
// the captcha check.
func (h *BoardHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	sub, ok := middleware.SubmissionFrom(r.Context())
	if !ok {
		slog.Error("post handler reached without a submission", "id", middleware.RequestID(r.Context()))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create post")
		return
	}

	err := sub.Err
	if sub.Batch != nil {
		// saves run even for rejected submissions; wait so none outlive the request
		if werr := sub.Batch.Wait(); err == nil {
			err = werr
		}
	}
	if err != nil {
		h.reject(w, r, err)
		return
	}

	in := sub.Input
	board := r.PathValue("board")
	if in.Board == "" {
		in.Board = board
	}
	if in.Board != board {
		middleware.ErrorResponse(w, http.StatusBadRequest, "board field does not match the URL")
		return
	}
	if in.Op == "" {
		in.Op = models.DefaultOp
	}
	if err := form.Validate(in); err != nil {
		h.reject(w, r, err)
		return
	}

	id, err := h.insertPost(r.Context(), in)
	switch {
	case errors.Is(err, errBoardNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Board not found")
		return
	case errors.Is(err, form.ErrInvalidParent):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		slog.Error("failed to insert post", "board", in.Board, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create post")
		return
	}

	slog.Info("post created",
		"id", id,
		"board", in.Board,
		"parent", in.Parent,
		"files", len(in.Files),
		"client", auth.HashIP(middleware.GetClientIP(r), h.cfg.SessionSecret),
	)

	files := in.Files
	if files == nil {
		files = []string{}
	}
	middleware.JSONResponse(w, http.StatusCreated, models.CreatePostResponse{
		ID:     id,
		Board:  in.Board,
		Parent: in.Parent,
		Files:  files,
	})
}

func (h *BoardHandler) reject(w http.ResponseWriter, r *http.Request, err error) {
	status := form.StatusCode(err)
	if status == http.StatusInternalServerError {
		slog.Error("post submission failed", "id", middleware.RequestID(r.Context()), "error", err)
	} else {
		slog.Info("post submission rejected", "id", middleware.RequestID(r.Context()), "status", status, "error", err)
	}
	middleware.ErrorResponse(w, status, form.Message(err))
}

// insertPost stores the post, its files and the board counter bump in
// one transaction.
func (h *BoardHandler) insertPost(ctx context.Context, in models.PostInput) (int64, error) {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := boardExists(ctx, tx, in.Board); err != nil {
		return 0, err
	}

	if in.Parent != nil {
		var parentBoard string
		var grandparent sql.NullInt64
		err := tx.QueryRowContext(ctx, `
			SELECT board, parent FROM post WHERE id = $1
		`, *in.Parent).Scan(&parentBoard, &grandparent)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && (parentBoard != in.Board || grandparent.Valid)) {
			return 0, errBadParent
		}
		if err != nil {
			return 0, err
		}
	}

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO post (parent, board, created, op, email, subject, body)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, in.Parent, in.Board, time.Now().UTC(), in.Op, in.Email, in.Subject, in.Body).Scan(&id)
	if err != nil {
		return 0, err
	}

	for i, name := range in.Files {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO post_file (post_id, position, name)
			VALUES ($1, $2, $3)
		`, id, i, name)
		if err != nil {
			return 0, err
		}
	}

	_, err = tx.ExecContext(ctx, `UPDATE board SET posts = posts + 1 WHERE name = $1`, in.Board)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return id, nil
}
