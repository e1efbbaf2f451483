// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/danielhkuo/inject-portal/session"
)

// Guard messages
const (
	LoginRequiredMessage = "Please log in to access this page."
	AdminRequiredMessage = "Admin access required for this page."
	FormTokenMessage     = "Invalid or missing form token."
)

// Flasher queues a message for the next rendered page
type Flasher interface {
	Flash(w http.ResponseWriter, r *http.Request, category, message string)
}

// FormTokenChecker validates the form token of a request
type FormTokenChecker interface {
	ValidFormToken(r *http.Request) bool
}

// RequireLogin sends anonymous requests to the login page, remembering
// where they were going
func RequireLogin(flasher Flasher, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if session.CurrentUser(r) == nil {
			flasher.Flash(w, r, session.CategoryInfo, LoginRequiredMessage)
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next(w, r)
	}
}

// RequireAdmin sends non-admins back to the dashboard
func RequireAdmin(flasher Flasher, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := session.CurrentUser(r)
		if user == nil || !user.IsAdmin {
			flasher.Flash(w, r, session.CategoryWarning, AdminRequiredMessage)
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		next(w, r)
	}
}

// RequireFormToken rejects POSTs without a valid form token
func RequireFormToken(checker FormTokenChecker, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && !checker.ValidFormToken(r) {
			slog.Warn("rejected request with bad form token",
				"path", r.URL.Path,
				"remote", GetClientIP(r),
			)
			ErrorResponse(w, http.StatusForbidden, FormTokenMessage)
			return
		}
		next(w, r)
	}
}
