// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/inject-portal/accounts"
	"github.com/danielhkuo/inject-portal/auth"
	"github.com/danielhkuo/inject-portal/models"
)

// Cookie names
const (
	CookieName      = "session"
	FlashCookieName = "flash"
)

// FormTokenField is the form field carrying the form token
const FormTokenField = "csrf_token"

// FormTokenHeader lets script-driven submissions send the token as a header
const FormTokenHeader = "X-CSRF-Token"

// DefaultTTL is how long a login lasts when no TTL is configured
const DefaultTTL = 12 * time.Hour

// UserLoader resolves the user a session cookie points at
type UserLoader interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// Manager issues and reads the session cookie and keeps per-request
// session state (current user, pending flashes) in the request context.
type Manager struct {
	secret string
	ttl    time.Duration
	users  UserLoader
}

func NewManager(secret string, ttl time.Duration, users UserLoader) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{secret: secret, ttl: ttl, users: users}
}

type ctxKey struct{}

// state is mutable so Issue, Clear and Flash are visible to the rest of the request
type state struct {
	user      *models.User
	sessionID string
	flashes   []Flash
}

func stateFrom(r *http.Request) *state {
	st, _ := r.Context().Value(ctxKey{}).(*state)
	return st
}

// Load resolves the session cookie into a user and attaches session state
// to the request. Invalid or stale cookies are cleared and the request
// continues anonymously.
func (m *Manager) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := &state{flashes: readFlashCookie(r)}

		if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
			user, sessionID, err := m.resolve(r.Context(), c.Value)
			switch {
			case err == nil:
				st.user, st.sessionID = user, sessionID
			case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, accounts.ErrNotFound):
				slog.Debug("dropping session cookie", "error", err)
				m.expire(w, r, CookieName)
			default:
				slog.Error("failed to load session user", "error", err)
			}
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, st)))
	})
}

func (m *Manager) resolve(ctx context.Context, token string) (*models.User, string, error) {
	claims, err := auth.ParseSessionToken(token, m.secret)
	if err != nil {
		return nil, "", err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, "", err
	}
	user, err := m.users.GetUser(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	return user, claims.ID, nil
}

// UserFromContext returns the logged-in user, or nil for anonymous requests
func UserFromContext(ctx context.Context) *models.User {
	st, _ := ctx.Value(ctxKey{}).(*state)
	if st == nil {
		return nil
	}
	return st.user
}

// CurrentUser is UserFromContext for a request
func CurrentUser(r *http.Request) *models.User {
	return UserFromContext(r.Context())
}

// Issue starts a new session for user and sets the cookie
func (m *Manager) Issue(w http.ResponseWriter, r *http.Request, user *models.User) error {
	sessionID, err := auth.GenerateID(16)
	if err != nil {
		return err
	}
	token, err := auth.IssueSessionToken(user.ID, sessionID, m.secret, m.ttl)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	if st := stateFrom(r); st != nil {
		st.user, st.sessionID = user, sessionID
	}
	return nil
}

// Clear ends the session
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) {
	m.expire(w, r, CookieName)
	if st := stateFrom(r); st != nil {
		st.user, st.sessionID = nil, ""
	}
}

// FormToken returns the token forms must echo back in FormTokenField.
// Anonymous requests get an empty token.
func (m *Manager) FormToken(r *http.Request) string {
	st := stateFrom(r)
	if st == nil || st.sessionID == "" {
		return ""
	}
	return auth.GenerateFormToken(st.sessionID, m.secret)
}

// ValidFormToken checks the submitted form token against the session
func (m *Manager) ValidFormToken(r *http.Request) bool {
	st := stateFrom(r)
	if st == nil || st.sessionID == "" {
		return false
	}
	submitted := r.Header.Get(FormTokenHeader)
	if submitted == "" {
		submitted = r.PostFormValue(FormTokenField)
	}
	return auth.ValidateFormToken(st.sessionID, submitted, m.secret) == nil
}

func (m *Manager) expire(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}
