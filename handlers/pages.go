// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/danielhkuo/inject-portal/session"
	"github.com/danielhkuo/inject-portal/views"
)

// pages renders HTML with the per-request session data filled in
type pages struct {
	sessions *session.Manager
	views    *views.Renderer
}

func (p pages) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	p.views.Render(w, status, name, views.Page{
		Title:     title,
		User:      session.CurrentUser(r),
		Flashes:   p.sessions.Flashes(w, r),
		FormToken: p.sessions.FormToken(r),
		Data:      data,
	})
}

func (p pages) flash(w http.ResponseWriter, r *http.Request, category, message string) {
	p.sessions.Flash(w, r, category, message)
}

// redirectBack sends a POST/Redirect/GET response
func redirectBack(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusFound)
}

// safeNext keeps only local redirect targets
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}

// userID is the logged-in user's id for log lines, 0 when anonymous
func userID(r *http.Request) int64 {
	if u := session.CurrentUser(r); u != nil {
		return u.ID
	}
	return 0
}

const requiredMessage = "This field is required."

// required records an error for every empty field
func required(errs map[string]string, values url.Values, fields ...string) {
	for _, f := range fields {
		if strings.TrimSpace(values.Get(f)) == "" {
			errs[f] = requiredMessage
		}
	}
}
