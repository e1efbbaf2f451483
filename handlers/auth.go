// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/inject-portal/accounts"
	"github.com/danielhkuo/inject-portal/middleware"
	"github.com/danielhkuo/inject-portal/session"
	"github.com/danielhkuo/inject-portal/views"
)

type AuthHandler struct {
	pages
	accounts *accounts.Manager
}

func NewAuthHandler(accts *accounts.Manager, sessions *session.Manager, renderer *views.Renderer) *AuthHandler {
	return &AuthHandler{
		pages:    pages{sessions: sessions, views: renderer},
		accounts: accts,
	}
}

// Login handles GET and POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if session.CurrentUser(r) != nil {
		redirectBack(w, r, "/")
		return
	}

	form := views.AuthForm{Next: r.URL.Query().Get("next"), Errors: map[string]string{}}
	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, views.PageLogin, "Login", form)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form.Username = r.PostForm.Get("username")
	required(form.Errors, r.PostForm, "username", "password")
	if len(form.Errors) > 0 {
		h.render(w, r, http.StatusBadRequest, views.PageLogin, "Login", form)
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), form.Username, r.PostForm.Get("password"))
	switch {
	case errors.Is(err, accounts.ErrInvalidCredentials):
		slog.Info("failed login", "username", form.Username, "remote", middleware.GetClientIP(r))
		h.flash(w, r, session.CategoryDanger, "Login Unsuccessful. Please check username and password")
		h.render(w, r, http.StatusUnauthorized, views.PageLogin, "Login", form)
		return
	case err != nil:
		slog.Error("failed to authenticate", "error", err)
		h.flash(w, r, session.CategoryDanger, "Login failed. Please try again.")
		h.render(w, r, http.StatusInternalServerError, views.PageLogin, "Login", form)
		return
	}

	if err := h.sessions.Issue(w, r, user); err != nil {
		slog.Error("failed to issue session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	slog.Info("user logged in", "user_id", user.ID, "remote", middleware.GetClientIP(r))
	h.flash(w, r, session.CategorySuccess, "Logged in successfully.")
	redirectBack(w, r, safeNext(form.Next))
}

// Logout handles GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w, r)
	h.flash(w, r, session.CategoryInfo, "You have been logged out.")
	redirectBack(w, r, "/login")
}

// Register handles GET and POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if session.CurrentUser(r) != nil {
		redirectBack(w, r, "/")
		return
	}

	form := views.AuthForm{Errors: map[string]string{}}
	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, views.PageRegister, "Register", form)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form.Username = r.PostForm.Get("username")
	form.Token = r.PostForm.Get("registration_token")
	password := r.PostForm.Get("password")

	required(form.Errors, r.PostForm, "username", "password", "confirm_password", "registration_token")
	if _, missing := form.Errors["confirm_password"]; !missing && r.PostForm.Get("confirm_password") != password {
		form.Errors["confirm_password"] = "Passwords must match."
	}
	if len(form.Errors) > 0 {
		h.render(w, r, http.StatusBadRequest, views.PageRegister, "Register", form)
		return
	}

	user, err := h.accounts.RegisterUser(r.Context(), form.Username, password, form.Token)
	var verr *accounts.ValidationError
	switch {
	case errors.As(err, &verr):
		form.Errors[verr.Field] = verr.Message
	case errors.Is(err, accounts.ErrUsernameTaken):
		form.Errors["username"] = "Username already exists. Please choose a different one."
	case errors.Is(err, accounts.ErrInvalidToken):
		form.Errors["registration_token"] = "Invalid or expired registration token."
		h.flash(w, r, session.CategoryDanger, "Invalid or expired registration token.")
	case err != nil:
		slog.Error("registration failed", "username", form.Username, "error", err)
		h.flash(w, r, session.CategoryDanger, "An error occurred during registration. Please try again.")
		h.render(w, r, http.StatusInternalServerError, views.PageRegister, "Register", form)
		return
	}
	if err != nil {
		h.render(w, r, http.StatusBadRequest, views.PageRegister, "Register", form)
		return
	}

	if user.IsAdmin {
		h.flash(w, r, session.CategorySuccess, "Admin account created successfully!")
	}
	h.flash(w, r, session.CategorySuccess, fmt.Sprintf("Account created for %s! You can now log in.", user.Username))
	redirectBack(w, r, "/login")
}

// ChangePassword handles GET and POST /change_password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := session.CurrentUser(r)
	form := views.AuthForm{Errors: map[string]string{}}
	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, views.PageChangePassword, "Change Password", form)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	newPassword := r.PostForm.Get("new_password")
	required(form.Errors, r.PostForm, "current_password", "new_password", "confirm_new_password")
	if _, missing := form.Errors["confirm_new_password"]; !missing && r.PostForm.Get("confirm_new_password") != newPassword {
		form.Errors["confirm_new_password"] = "New passwords must match."
	}
	if len(form.Errors) > 0 {
		h.render(w, r, http.StatusBadRequest, views.PageChangePassword, "Change Password", form)
		return
	}

	err := h.accounts.ChangePassword(r.Context(), user.ID, r.PostForm.Get("current_password"), newPassword)
	var verr *accounts.ValidationError
	switch {
	case err == nil:
		h.flash(w, r, session.CategorySuccess, "Your password has been updated!")
		redirectBack(w, r, "/")
	case errors.As(err, &verr):
		form.Errors[verr.Field] = verr.Message
		h.render(w, r, http.StatusBadRequest, views.PageChangePassword, "Change Password", form)
	case errors.Is(err, accounts.ErrWrongCurrentPassword):
		h.flash(w, r, session.CategoryDanger, "Incorrect current password.")
		h.render(w, r, http.StatusBadRequest, views.PageChangePassword, "Change Password", form)
	default:
		slog.Error("failed to change password", "user_id", user.ID, "error", err)
		h.flash(w, r, session.CategoryDanger, "Could not update password. Please try again.")
		h.render(w, r, http.StatusInternalServerError, views.PageChangePassword, "Change Password", form)
	}
}
