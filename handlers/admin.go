// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielhkuo/inject-portal/accounts"
	"github.com/danielhkuo/inject-portal/session"
	"github.com/danielhkuo/inject-portal/views"
)

type AdminHandler struct {
	pages
	accounts *accounts.Manager
}

func NewAdminHandler(accts *accounts.Manager, sessions *session.Manager, renderer *views.Renderer) *AdminHandler {
	return &AdminHandler{
		pages:    pages{sessions: sessions, views: renderer},
		accounts: accts,
	}
}

// Dashboard handles GET /admin
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.PageAdminDashboard, "Admin Dashboard", nil)
}

// Users handles GET /admin/users
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.ListUsers(r.Context())
	if err != nil {
		slog.Error("failed to list users", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, http.StatusOK, views.PageAdminUsers, "Manage Users", views.UserList{Users: users})
}

// Tokens handles GET /admin/tokens
func (h *AdminHandler) Tokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.accounts.ListTokens(r.Context())
	if err != nil {
		slog.Error("failed to list tokens", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, http.StatusOK, views.PageAdminTokens, "Manage Tokens", views.TokenList{Tokens: tokens})
}

// GenerateToken handles POST /admin/generate_token
func (h *AdminHandler) GenerateToken(w http.ResponseWriter, r *http.Request) {
	uses, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("uses")))
	if err != nil {
		h.flash(w, r, session.CategoryError, "Invalid input for token generation.")
		redirectBack(w, r, "/admin/tokens")
		return
	}

	token, err := h.accounts.GenerateToken(r.Context(), uses)
	switch {
	case errors.Is(err, accounts.ErrInvalidUseCount):
		h.flash(w, r, session.CategoryWarning, "Number of uses must be positive.")
	case err != nil:
		slog.Error("failed to generate token", "error", err)
		h.flash(w, r, session.CategoryDanger, "Could not generate token. Please try again.")
	default:
		slog.Info("registration token generated", "token_id", token.ID, "uses", uses, "by", userID(r))
		h.flash(w, r, session.CategorySuccess, fmt.Sprintf("New registration token generated: %s", token.Token))
	}
	redirectBack(w, r, "/admin/tokens")
}

// DeleteToken handles POST /admin/delete_token/{token_id}
func (h *AdminHandler) DeleteToken(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("token_id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	token, err := h.accounts.DeleteToken(r.Context(), id)
	switch {
	case errors.Is(err, accounts.ErrNotFound):
		h.flash(w, r, session.CategoryError, "Token not found.")
	case err != nil:
		slog.Error("failed to delete token", "token_id", id, "error", err)
		h.flash(w, r, session.CategoryDanger, "Could not delete token. Please try again.")
	default:
		slog.Info("registration token deleted", "token_id", id, "by", userID(r))
		h.flash(w, r, session.CategorySuccess, fmt.Sprintf("Token %s deleted.", token.Preview()))
	}
	redirectBack(w, r, "/admin/tokens")
}
