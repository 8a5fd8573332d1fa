// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/tokichan/auth"
	"github.com/danielhkuo/tokichan/cliparse"
	"github.com/danielhkuo/tokichan/middleware"
	"github.com/danielhkuo/tokichan/models"
)

var roles = map[string]bool{
	models.RoleAdmin:     true,
	models.RoleModerator: true,
	models.RoleVolunteer: true,
	models.RoleUser:      true,
}

type AdminHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAdminHandler(db *sql.DB, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{db: db, cfg: cfg}
}

// Login handles POST /.toki/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := auth.ValidateCredentials(req.Username, req.Password); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var user models.User
	err := h.db.QueryRowContext(r.Context(), `
		SELECT id, name, role, password_hash FROM account WHERE name = $1
	`, req.Username).Scan(&user.ID, &user.Name, &user.Role, &user.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		err = auth.ErrNonExistentUser
	} else if err == nil {
		err = auth.CheckPassword(user.PasswordHash, req.Password)
	}
	if err != nil {
		if errors.Is(err, auth.ErrNonExistentUser) || errors.Is(err, auth.ErrInvalidCredentials) {
			slog.Info("login failed", "username", req.Username, "error", err)
			middleware.ErrorResponse(w, http.StatusUnauthorized, auth.PublicLoginError(err).Error())
			return
		}
		slog.Error("failed to check credentials", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Login failed")
		return
	}

	token, err := auth.NewSessionToken(user.Name, user.Role, []byte(h.cfg.SessionSecret), time.Now())
	if err != nil {
		slog.Error("failed to create session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Login failed")
		return
	}
	h.setSessionCookie(w, token, int(auth.SessionTTL.Seconds()))

	slog.Info("user logged in", "username", user.Name, "role", user.Role)

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		Username: user.Name,
		Role:     user.Role,
	})
}

// Logout handles GET /.toki/logout
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setSessionCookie(w, "", -1)
	w.WriteHeader(http.StatusNoContent)
}

// Signup handles POST /.toki/signup. The first account bootstraps the
// board and is always an admin; after that only admins create accounts.
func (h *AdminHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	if err := auth.ValidateCredentials(req.Username, req.Password); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	var users int
	if err := tx.QueryRowContext(r.Context(), `SELECT COUNT(*) FROM account`).Scan(&users); err != nil {
		slog.Error("failed to count accounts", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	role := req.Role
	if users == 0 {
		role = models.RoleAdmin
	} else {
		session, ok := middleware.SessionFrom(r.Context())
		if !ok {
			middleware.ErrorResponse(w, http.StatusUnauthorized, "Login required")
			return
		}
		if session.Role != models.RoleAdmin {
			middleware.ErrorResponse(w, http.StatusForbidden, "Only admins can create accounts")
			return
		}
		if role == "" {
			role = models.RoleUser
		}
	}
	if !roles[role] {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown role")
		return
	}

	var taken int
	err = tx.QueryRowContext(r.Context(), `SELECT COUNT(*) FROM account WHERE name = $1`, req.Username).Scan(&taken)
	if err != nil {
		slog.Error("failed to query account", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if taken > 0 {
		middleware.ErrorResponse(w, http.StatusConflict, "Username taken")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	var id int64
	err = tx.QueryRowContext(r.Context(), `
		INSERT INTO account (name, password_hash, role, created)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, req.Username, hash, role, time.Now().UTC()).Scan(&id)
	if err != nil {
		slog.Error("failed to insert account", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	slog.Info("account created", "id", id, "username", req.Username, "role", role)

	middleware.JSONResponse(w, http.StatusCreated, models.SignupResponse{
		ID:       id,
		Username: req.Username,
		Role:     role,
	})
}

// Mod handles GET /.toki/mod
func (h *AdminHandler) Mod(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFrom(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Login required")
		return
	}

	rows, err := h.db.QueryContext(r.Context(), `SELECT id, name, role, created FROM account ORDER BY id`)
	if err != nil {
		slog.Error("failed to query accounts", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Role, &u.Created); err != nil {
			slog.Error("failed to scan account", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate accounts", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ModResponse{
		Username: session.Username,
		Users:    users,
	})
}

func (h *AdminHandler) setSessionCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   h.cfg.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
