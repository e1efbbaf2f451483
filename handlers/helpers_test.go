// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/danielhkuo/inject-portal/accounts"
	"github.com/danielhkuo/inject-portal/competition"
	"github.com/danielhkuo/inject-portal/db"
	"github.com/danielhkuo/inject-portal/models"
	"github.com/danielhkuo/inject-portal/scenarios"
	"github.com/danielhkuo/inject-portal/session"
	"github.com/danielhkuo/inject-portal/testutil"
	"github.com/danielhkuo/inject-portal/views"
)

// testEnv wires real handlers to a temp SQLite database and a fake API
type testEnv struct {
	db       *db.DB
	accounts *accounts.Manager
	sessions *session.Manager
	views    *views.Renderer
	api      *testutil.FakeAPI
	client   *competition.Client
	catalog  *scenarios.Catalog
}

// newTestEnv builds the environment; an empty apiKey means the placeholder
func newTestEnv(t *testing.T, apiKey string) *testEnv {
	t.Helper()

	database := testutil.SetupTestDB(t)
	accts := accounts.NewManager(database, testutil.TestHasher())
	renderer, err := views.New()
	if err != nil {
		t.Fatalf("Failed to load templates: %v", err)
	}
	api := testutil.NewFakeAPI(t)

	return &testEnv{
		db:       database,
		accounts: accts,
		sessions: session.NewManager(testutil.TestSessionSecret, time.Hour, accts),
		views:    renderer,
		api:      api,
		client:   competition.NewClient(apiKey, api.URL),
		catalog: scenarios.NewCatalog([]models.Scenario{
			{ID: "phishinglure", Display: "Phishing Lure: desc"},
		}),
	}
}

func (e *testEnv) authHandler() *AuthHandler {
	return NewAuthHandler(e.accounts, e.sessions, e.views)
}

func (e *testEnv) jobHandler() *JobHandler {
	return NewJobHandler(e.client, e.catalog, e.sessions, e.views)
}

func (e *testEnv) teamHandler() *TeamHandler {
	return NewTeamHandler(e.client, e.sessions, e.views)
}

func (e *testEnv) adminHandler() *AdminHandler {
	return NewAdminHandler(e.accounts, e.sessions, e.views)
}

// serve runs req through the session loader into h, logged in as user if set
func (e *testEnv) serve(t *testing.T, h http.HandlerFunc, req *http.Request, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	if user != nil {
		req.AddCookie(testutil.LoginCookie(t, user))
	}
	w := httptest.NewRecorder()
	e.sessions.Load(h).ServeHTTP(w, req)
	return w
}

func formOf(kv ...string) url.Values {
	v := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		v.Set(kv[i], kv[i+1])
	}
	return v
}
