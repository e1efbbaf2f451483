// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/inject-portal/auth"
	"github.com/danielhkuo/inject-portal/models"
	"github.com/danielhkuo/inject-portal/session"
)

func testSessionID(user *models.User) string {
	return fmt.Sprintf("test-session-%d", user.ID)
}

// LoginCookie returns a session cookie for user signed with TestSessionSecret
func LoginCookie(t *testing.T, user *models.User) *http.Cookie {
	t.Helper()

	token, err := auth.IssueSessionToken(user.ID, testSessionID(user), TestSessionSecret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to issue session token: %v", err)
	}
	return &http.Cookie{Name: session.CookieName, Value: token}
}

// FormTokenFor returns the form token matching LoginCookie(user)
func FormTokenFor(user *models.User) string {
	return auth.GenerateFormToken(testSessionID(user), TestSessionSecret)
}

// ResponseFlashes decodes the flash cookie set on a response
func ResponseFlashes(t *testing.T, w *httptest.ResponseRecorder) []session.Flash {
	t.Helper()

	var flashes []session.Flash
	for _, c := range w.Result().Cookies() {
		if c.Name != session.FlashCookieName || c.Value == "" {
			continue
		}
		b, err := base64.RawURLEncoding.DecodeString(c.Value)
		if err != nil {
			t.Fatalf("Failed to decode flash cookie: %v", err)
		}
		if err := json.Unmarshal(b, &flashes); err != nil {
			t.Fatalf("Failed to parse flash cookie: %v", err)
		}
	}
	return flashes
}

// AssertFlash checks that a flash with the given message was set
func AssertFlash(t *testing.T, w *httptest.ResponseRecorder, category, message string) {
	t.Helper()
	for _, f := range ResponseFlashes(t, w) {
		if f.Message == message && f.Category == category {
			return
		}
	}
	t.Errorf("Expected %s flash %q, got %+v", category, message, ResponseFlashes(t, w))
}
