// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/inject-portal/accounts"
	"github.com/danielhkuo/inject-portal/auth"
	"github.com/danielhkuo/inject-portal/models"
	"github.com/danielhkuo/inject-portal/session"
)

const testSecret = "middleware-test-secret"

type stubUsers map[int64]*models.User

func (s stubUsers) GetUser(_ context.Context, id int64) (*models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, accounts.ErrNotFound
}

var (
	testAlice = &models.User{ID: 1, Username: "alice"}
	testAdmin = &models.User{ID: 2, Username: "admin", IsAdmin: true}
)

func newSessions() *session.Manager {
	return session.NewManager(testSecret, time.Hour, stubUsers{1: testAlice, 2: testAdmin})
}

// withUser attaches a session cookie for user (nil for anonymous)
func withUser(t *testing.T, req *http.Request, user *models.User) *http.Request {
	t.Helper()
	if user == nil {
		return req
	}
	token, err := auth.IssueSessionToken(user.ID, "sid-"+user.Username, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to issue session token: %v", err)
	}
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	return req
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("handled"))
}

func TestWithLogging(t *testing.T) {
	handlerCalled := false
	testHandler := func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("success"))
	}

	req := httptest.NewRequest("GET", "/test-path", nil)
	w := httptest.NewRecorder()

	WithLogging(testHandler)(w, req)

	if !handlerCalled {
		t.Error("Expected handler to be called")
	}
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "success" {
		t.Errorf("Expected body 'success', got '%s'", w.Body.String())
	}
}

func TestWithLogging_PreservesResponse(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		body       string
	}{
		{"OK", http.StatusOK, "ok"},
		{"Found", http.StatusFound, ""},
		{"BadRequest", http.StatusBadRequest, `{"error":"bad request"}`},
		{"ServiceUnavailable", http.StatusServiceUnavailable, `{"error":"API Key is not configured"}`},
		{"InternalError", http.StatusInternalServerError, "error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
				w.Write([]byte(tc.body))
			})

			req := httptest.NewRequest("POST", "/create_job", nil)
			w := httptest.NewRecorder()

			handler(w, req)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
			if w.Body.String() != tc.body {
				t.Errorf("Expected body '%s', got '%s'", tc.body, w.Body.String())
			}
		})
	}
}

func TestJSONResponse(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		data       any
		expected   string
	}{
		{
			name:       "job created",
			statusCode: http.StatusOK,
			data:       models.CreateJobResponse{JobID: "job-1", Status: models.JobStatusProcessing},
			expected:   `{"job_id":"job-1","status":"processing"}`,
		},
		{
			name:       "job status keeps null fields",
			statusCode: http.StatusOK,
			data:       models.JobStatusResponse{Completed: false},
			expected:   `{"completed":false,"output":null,"objectives":null,"error":null}`,
		},
		{
			name:       "array data",
			statusCode: http.StatusOK,
			data:       []string{"a", "b", "c"},
			expected:   `["a","b","c"]`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			JSONResponse(w, tc.statusCode, tc.data)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
			}

			body := strings.TrimSpace(w.Body.String())
			if body != tc.expected {
				t.Errorf("Expected body '%s', got '%s'", tc.expected, body)
			}
		})
	}
}

func TestErrorResponse(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		message    string
	}{
		{"bad request", http.StatusBadRequest, "Scenario, Subject, and Body are required."},
		{"forbidden", http.StatusForbidden, "API Key not configured."},
		{"not found", http.StatusNotFound, "Job abc not found or API access denied."},
		{"unavailable", http.StatusServiceUnavailable, "API Key is not configured"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			ErrorResponse(w, tc.statusCode, tc.message)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}

			var resp map[string]any
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if len(resp) != 1 || resp["error"] != tc.message {
				t.Errorf("Expected {\"error\": %q}, got %v", tc.message, resp)
			}
		})
	}
}

func TestRequireLogin(t *testing.T) {
	sessions := newSessions()

	t.Run("anonymous is redirected with next", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/job/abc?x=1", nil)
		w := httptest.NewRecorder()
		sessions.Load(RequireLogin(sessions, okHandler)).ServeHTTP(w, req)

		if w.Code != http.StatusFound {
			t.Fatalf("Expected 302, got %d", w.Code)
		}
		want := "/login?next=" + url.QueryEscape("/job/abc?x=1")
		if loc := w.Header().Get("Location"); loc != want {
			t.Errorf("Expected Location %q, got %q", want, loc)
		}
		assertFlashCookie(t, w)
	})

	t.Run("logged in passes", func(t *testing.T) {
		req := withUser(t, httptest.NewRequest("GET", "/jobs", nil), testAlice)
		w := httptest.NewRecorder()
		sessions.Load(RequireLogin(sessions, okHandler)).ServeHTTP(w, req)

		if w.Code != http.StatusOK || w.Body.String() != "handled" {
			t.Errorf("Expected handler to run, got %d %q", w.Code, w.Body.String())
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	sessions := newSessions()

	testCases := []struct {
		name     string
		user     *models.User
		wantCode int
	}{
		{"anonymous", nil, http.StatusFound},
		{"regular user", testAlice, http.StatusFound},
		{"admin", testAdmin, http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := withUser(t, httptest.NewRequest("GET", "/admin/users", nil), tc.user)
			w := httptest.NewRecorder()
			sessions.Load(RequireAdmin(sessions, okHandler)).ServeHTTP(w, req)

			if w.Code != tc.wantCode {
				t.Fatalf("Expected %d, got %d", tc.wantCode, w.Code)
			}
			if tc.wantCode == http.StatusFound {
				if loc := w.Header().Get("Location"); loc != "/" {
					t.Errorf("Expected redirect to /, got %q", loc)
				}
				assertFlashCookie(t, w)
			}
		})
	}
}

func TestRequireFormToken(t *testing.T) {
	sessions := newSessions()

	t.Run("GET is not checked", func(t *testing.T) {
		req := withUser(t, httptest.NewRequest("GET", "/team", nil), testAlice)
		w := httptest.NewRecorder()
		sessions.Load(RequireFormToken(sessions, okHandler)).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})

	t.Run("POST without token is forbidden", func(t *testing.T) {
		req := withUser(t, httptest.NewRequest("POST", "/update_team", nil), testAlice)
		w := httptest.NewRecorder()
		sessions.Load(RequireFormToken(sessions, okHandler)).ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Fatalf("Expected 403, got %d", w.Code)
		}
		var resp models.ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode error: %v", err)
		}
		if resp.Error != FormTokenMessage {
			t.Errorf("Expected %q, got %q", FormTokenMessage, resp.Error)
		}
	})

	t.Run("POST with token passes", func(t *testing.T) {
		form := url.Values{
			session.FormTokenField: {auth.GenerateFormToken("sid-alice", testSecret)},
			"members":              {"alice"},
		}
		req := httptest.NewRequest("POST", "/update_team", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req = withUser(t, req, testAlice)
		w := httptest.NewRecorder()
		sessions.Load(RequireFormToken(sessions, okHandler)).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})
}

func assertFlashCookie(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == session.FlashCookieName && c.Value != "" {
			return
		}
	}
	t.Error("Expected a flash cookie to be set")
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expectedIP string
	}{
		{
			name:       "X-Forwarded-For single IP",
			headers:    map[string]string{"X-Forwarded-For": "192.168.1.100"},
			remoteAddr: "10.0.0.1:12345",
			expectedIP: "192.168.1.100",
		},
		{
			name:       "X-Forwarded-For chained IPs (comma separated)",
			headers:    map[string]string{"X-Forwarded-For": "192.168.1.100,10.0.0.1,172.16.0.1"},
			remoteAddr: "127.0.0.1:12345",
			expectedIP: "192.168.1.100",
		},
		{
			name:       "X-Forwarded-For chained IPs (space after comma)",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.195, 70.41.3.18, 150.172.238.178"},
			remoteAddr: "127.0.0.1:12345",
			expectedIP: "203.0.113.195",
		},
		{
			name:       "X-Real-IP takes precedence over RemoteAddr",
			headers:    map[string]string{"X-Real-IP": "203.0.113.50"},
			remoteAddr: "10.0.0.1:12345",
			expectedIP: "203.0.113.50",
		},
		{
			name:       "X-Forwarded-For takes precedence over X-Real-IP",
			headers:    map[string]string{"X-Forwarded-For": "192.168.1.100", "X-Real-IP": "203.0.113.50"},
			remoteAddr: "10.0.0.1:12345",
			expectedIP: "192.168.1.100",
		},
		{
			name:       "RemoteAddr with port",
			remoteAddr: "192.168.1.50:54321",
			expectedIP: "192.168.1.50",
		},
		{
			name:       "RemoteAddr without port",
			remoteAddr: "192.168.1.50",
			expectedIP: "192.168.1.50",
		},
		{
			name:       "IPv6 RemoteAddr with port",
			remoteAddr: "[::1]:12345",
			expectedIP: "[::1]",
		},
		{
			name:       "empty X-Forwarded-For falls through to RemoteAddr",
			headers:    map[string]string{"X-Forwarded-For": ""},
			remoteAddr: "10.0.0.5:8080",
			expectedIP: "10.0.0.5",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			if result := GetClientIP(req); result != tc.expectedIP {
				t.Errorf("Expected IP '%s', got '%s'", tc.expectedIP, result)
			}
		})
	}
}
