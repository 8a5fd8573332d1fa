// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/tokichan/middleware"
	"github.com/danielhkuo/tokichan/upload"
)

type MediaHandler struct {
	store upload.Store
}

func NewMediaHandler(store upload.Store) *MediaHandler {
	return &MediaHandler{store: store}
}

// Serve handles GET /media/{name}
func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !upload.ValidName(name) {
		middleware.ErrorResponse(w, http.StatusNotFound, "File not found")
		return
	}

	rc, err := h.store.Open(r.Context(), name)
	if errors.Is(err, upload.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "File not found")
		return
	}
	if err != nil {
		slog.Error("failed to open media", "name", name, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to read file")
		return
	}
	defer rc.Close()

	// names are content hashes, so a name never changes meaning
	w.Header().Set("Content-Type", upload.ContentType(name))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("failed to stream media", "name", name, "error", err)
	}
}
