// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/danielhkuo/inject-portal/session"
	"github.com/danielhkuo/inject-portal/testutil"
)

func TestLogin(t *testing.T) {
	env := newTestEnv(t, "")
	h := env.authHandler()
	testutil.CreateTestUser(t, env.db, "alice", "password1", false)

	t.Run("GET renders form", func(t *testing.T) {
		w := env.serve(t, h.Login, httptest.NewRequest("GET", "/login", nil), nil)
		testutil.AssertStatus(t, w, http.StatusOK)
		if !strings.Contains(w.Body.String(), `name="password"`) {
			t.Error("Expected login form")
		}
	})

	t.Run("valid credentials", func(t *testing.T) {
		req := testutil.MakeFormRequest("POST", "/login", formOf("username", "alice", "password", "password1"))
		w := env.serve(t, h.Login, req, nil)

		testutil.AssertRedirect(t, w, "/")
		testutil.AssertFlash(t, w, session.CategorySuccess, "Logged in successfully.")

		var issued bool
		for _, c := range w.Result().Cookies() {
			if c.Name == session.CookieName && c.Value != "" {
				issued = true
			}
		}
		if !issued {
			t.Error("Expected session cookie")
		}
	})

	t.Run("next is honoured for local paths", func(t *testing.T) {
		testCases := []struct {
			next string
			want string
		}{
			{"/jobs", "/jobs"},
			{"/job/abc?x=1", "/job/abc?x=1"},
			{"//evil.example", "/"},
			{"https://evil.example/", "/"},
			{"/\\evil.example", "/"},
		}
		for _, tc := range testCases {
			req := testutil.MakeFormRequest("POST", "/login?next="+url.QueryEscape(tc.next), formOf("username", "alice", "password", "password1"))
			w := env.serve(t, h.Login, req, nil)
			testutil.AssertRedirect(t, w, tc.want)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		req := testutil.MakeFormRequest("POST", "/login", formOf("username", "alice", "password", "nope-nope"))
		w := env.serve(t, h.Login, req, nil)

		testutil.AssertStatus(t, w, http.StatusUnauthorized)
		if !strings.Contains(w.Body.String(), "Login Unsuccessful. Please check username and password") {
			t.Error("Expected failure message in page")
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		req := testutil.MakeFormRequest("POST", "/login", formOf("username", "nobody", "password", "password1"))
		w := env.serve(t, h.Login, req, nil)
		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})

	t.Run("missing fields", func(t *testing.T) {
		req := testutil.MakeFormRequest("POST", "/login", formOf("username", "alice"))
		w := env.serve(t, h.Login, req, nil)

		testutil.AssertStatus(t, w, http.StatusBadRequest)
		if !strings.Contains(w.Body.String(), requiredMessage) {
			t.Error("Expected required field message")
		}
	})

	t.Run("already logged in", func(t *testing.T) {
		user := testutil.CreateTestUser(t, env.db, "bobby", "password1", false)
		w := env.serve(t, h.Login, httptest.NewRequest("GET", "/login", nil), user)
		testutil.AssertRedirect(t, w, "/")
	})
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, "")
	user := testutil.CreateTestUser(t, env.db, "alice", "password1", false)

	w := env.serve(t, env.authHandler().Logout, httptest.NewRequest("GET", "/logout", nil), user)

	testutil.AssertRedirect(t, w, "/login")
	testutil.AssertFlash(t, w, session.CategoryInfo, "You have been logged out.")
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName && c.MaxAge >= 0 {
			t.Error("Expected session cookie to be cleared")
		}
	}
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t, "")
	h := env.authHandler()

	register := func(t *testing.T, username, password, confirm, token string) *httptest.ResponseRecorder {
		req := testutil.MakeFormRequest("POST", "/register", formOf(
			"username", username,
			"password", password,
			"confirm_password", confirm,
			"registration_token", token,
		))
		return env.serve(t, h.Register, req, nil)
	}

	t.Run("first user becomes admin", func(t *testing.T) {
		token := testutil.CreateTestToken(t, env.db, 2)
		w := register(t, "alice", "password1", "password1", token.Token)

		testutil.AssertRedirect(t, w, "/login")
		testutil.AssertFlash(t, w, session.CategorySuccess, "Admin account created successfully!")
		testutil.AssertFlash(t, w, session.CategorySuccess, "Account created for alice! You can now log in.")

		user, err := env.accounts.Authenticate(context.Background(), "alice", "password1")
		if err != nil {
			t.Fatalf("Expected new user to authenticate: %v", err)
		}
		if !user.IsAdmin {
			t.Error("Expected first user to be admin")
		}
		if got := testutil.GetTestToken(t, env.db, token.Token); got.UsesLeft != 1 || got.IsUsed {
			t.Errorf("Expected token with 1 use left, got %+v", got)
		}
	})

	t.Run("second user is not admin", func(t *testing.T) {
		token := testutil.CreateTestToken(t, env.db, 1)
		w := register(t, "bobby", "password1", "password1", token.Token)

		testutil.AssertRedirect(t, w, "/login")
		for _, f := range testutil.ResponseFlashes(t, w) {
			if strings.Contains(f.Message, "Admin") {
				t.Errorf("Unexpected admin flash: %q", f.Message)
			}
		}
	})

	errorCases := []struct {
		name     string
		username string
		password string
		confirm  string
		token    func(t *testing.T) string
		want     string
	}{
		{
			name: "passwords differ", username: "carol", password: "password1", confirm: "password2",
			token: func(t *testing.T) string { return testutil.CreateTestToken(t, env.db, 1).Token },
			want:  "Passwords must match.",
		},
		{
			name: "invalid token", username: "carol", password: "password1", confirm: "password1",
			token: func(*testing.T) string { return "not-a-token" },
			want:  "Invalid or expired registration token.",
		},
		{
			name: "exhausted token", username: "carol", password: "password1", confirm: "password1",
			token: func(t *testing.T) string { return testutil.CreateTestToken(t, env.db, 0).Token },
			want:  "Invalid or expired registration token.",
		},
		{
			name: "duplicate username", username: "alice", password: "password1", confirm: "password1",
			token: func(*testing.T) string { return "not-a-token" },
			want:  "Username already exists. Please choose a different one.",
		},
		{
			name: "short username", username: "abc", password: "password1", confirm: "password1",
			token: func(t *testing.T) string { return testutil.CreateTestToken(t, env.db, 1).Token },
			want:  "Field must be between 4 and 80 characters long.",
		},
		{
			name: "missing token", username: "carol", password: "password1", confirm: "password1",
			token: func(*testing.T) string { return "" },
			want:  requiredMessage,
		},
	}

	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			before := testutil.CountUsers(t, env.db)
			w := register(t, tc.username, tc.password, tc.confirm, tc.token(t))

			testutil.AssertStatus(t, w, http.StatusBadRequest)
			if !strings.Contains(w.Body.String(), tc.want) {
				t.Errorf("Expected page to contain %q", tc.want)
			}
			if after := testutil.CountUsers(t, env.db); after != before {
				t.Errorf("Expected no new user, count went %d -> %d", before, after)
			}
		})
	}
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t, "")
	h := env.authHandler()
	user := testutil.CreateTestUser(t, env.db, "alice", "password1", false)

	change := func(t *testing.T, current, next, confirm string) *httptest.ResponseRecorder {
		req := testutil.MakeFormRequest("POST", "/change_password", formOf(
			"current_password", current,
			"new_password", next,
			"confirm_new_password", confirm,
		))
		return env.serve(t, h.ChangePassword, req, user)
	}

	t.Run("GET renders form", func(t *testing.T) {
		w := env.serve(t, h.ChangePassword, httptest.NewRequest("GET", "/change_password", nil), user)
		testutil.AssertStatus(t, w, http.StatusOK)
		if !strings.Contains(w.Body.String(), testutil.FormTokenFor(user)) {
			t.Error("Expected form token in page")
		}
	})

	t.Run("wrong current password", func(t *testing.T) {
		w := change(t, "wrong-pass", "newpass1", "newpass1")
		testutil.AssertStatus(t, w, http.StatusBadRequest)
		if !strings.Contains(w.Body.String(), "Incorrect current password.") {
			t.Error("Expected incorrect password message")
		}
	})

	t.Run("new passwords differ", func(t *testing.T) {
		w := change(t, "password1", "newpass1", "newpass2")
		testutil.AssertStatus(t, w, http.StatusBadRequest)
		if !strings.Contains(w.Body.String(), "New passwords must match.") {
			t.Error("Expected mismatch message")
		}
	})

	t.Run("new password too short", func(t *testing.T) {
		w := change(t, "password1", "short", "short")
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("success", func(t *testing.T) {
		w := change(t, "password1", "newpass1", "newpass1")
		testutil.AssertRedirect(t, w, "/")
		testutil.AssertFlash(t, w, session.CategorySuccess, "Your password has been updated!")

		if _, err := env.accounts.Authenticate(context.Background(), "alice", "newpass1"); err != nil {
			t.Errorf("Expected new password to work: %v", err)
		}
	})
}

func TestSafeNext(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"/team", "/team"},
		{"team", "/"},
		{"//host", "/"},
		{"/\\host", "/"},
		{"http://host/x", "/"},
	}
	for _, tc := range testCases {
		if got := safeNext(tc.in); got != tc.want {
			t.Errorf("safeNext(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
