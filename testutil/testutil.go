// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/inject-portal/auth"
	"github.com/danielhkuo/inject-portal/cliparse"
	"github.com/danielhkuo/inject-portal/db"
	"github.com/danielhkuo/inject-portal/models"
)

// TestSessionSecret signs session cookies in tests
const TestSessionSecret = "test-session-secret"

// SetupTestDB creates a fresh SQLite database with the full schema.
// The file lives in a per-test temp dir and is closed on cleanup.
func SetupTestDB(t *testing.T) *db.DB {
	t.Helper()

	conn, err := db.Open(db.SQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                 3318,
		DatabaseURL:          ":memory:",
		DatabaseType:         "sqlite",
		SessionSecret:        TestSessionSecret,
		SessionTTL:           time.Hour,
		APIKey:               "test-api-key",
		APIServer:            "http://127.0.0.1:0",
		DefaultAdminPassword: "changeme123",
		PasswordCost:         bcrypt.MinCost,
		LogLevel:             "info",
	}
}

// TestHasher returns a fast bcrypt hasher for tests
func TestHasher() *auth.PasswordHasher {
	return auth.NewPasswordHasher(bcrypt.MinCost)
}

// CreateTestUser inserts a user directly and returns it
func CreateTestUser(t *testing.T, d *db.DB, username, password string, isAdmin bool) *models.User {
	t.Helper()

	hash, err := TestHasher().Hash(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	err = d.QueryRow(d.Rebind(`
		INSERT INTO app_user (username, password_hash, is_admin, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`), username, hash, isAdmin, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// CreateTestToken inserts a registration token with the given uses left
func CreateTestToken(t *testing.T, d *db.DB, usesLeft int) *models.RegistrationToken {
	t.Helper()

	token := &models.RegistrationToken{
		Token:     auth.NewRegistrationToken(),
		IsUsed:    usesLeft <= 0,
		UsesLeft:  usesLeft,
		CreatedAt: time.Now().UTC(),
	}
	err := d.QueryRow(d.Rebind(`
		INSERT INTO registration_token (token, is_used, uses_left, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`), token.Token, token.IsUsed, token.UsesLeft, token.CreatedAt).Scan(&token.ID)
	if err != nil {
		t.Fatalf("Failed to create test token: %v", err)
	}

	return token
}

// GetTestToken reloads a token by value
func GetTestToken(t *testing.T, d *db.DB, value string) models.RegistrationToken {
	t.Helper()

	var token models.RegistrationToken
	err := d.QueryRow(d.Rebind(`
		SELECT id, token, is_used, uses_left, created_at FROM registration_token WHERE token = ?
	`), value).Scan(&token.ID, &token.Token, &token.IsUsed, &token.UsesLeft, &token.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to load test token: %v", err)
	}

	return token
}

// CountUsers returns the number of stored users
func CountUsers(t *testing.T, d *db.DB) int {
	t.Helper()

	var count int
	if err := d.QueryRow("SELECT COUNT(*) FROM app_user").Scan(&count); err != nil {
		t.Fatalf("Failed to count users: %v", err)
	}
	return count
}

// MakeFormRequest creates an HTTP test request with a url-encoded form body
func MakeFormRequest(method, path string, form url.Values) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertRedirect checks for a 302/303 to the expected location
func AssertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	if w.Code != http.StatusFound && w.Code != http.StatusSeeOther {
		t.Errorf("Expected redirect, got %d. Body: %s", w.Code, w.Body.String())
		return
	}
	if got := w.Header().Get("Location"); got != location {
		t.Errorf("Expected redirect to %q, got %q", location, got)
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
