// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"fmt"
	"net/http"

	"github.com/danielhkuo/inject-portal/accounts"
	"github.com/danielhkuo/inject-portal/auth"
	"github.com/danielhkuo/inject-portal/cliparse"
	"github.com/danielhkuo/inject-portal/competition"
	"github.com/danielhkuo/inject-portal/db"
	"github.com/danielhkuo/inject-portal/handlers"
	"github.com/danielhkuo/inject-portal/middleware"
	"github.com/danielhkuo/inject-portal/scenarios"
	"github.com/danielhkuo/inject-portal/session"
	"github.com/danielhkuo/inject-portal/views"
)

// NewRouter wires handlers to routes. The returned handler resolves the
// session cookie before any route runs.
func NewRouter(database *db.DB, cfg cliparse.Config, client *competition.Client, catalog *scenarios.Catalog) (http.Handler, error) {
	renderer, err := views.New()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	accts := accounts.NewManager(database, auth.NewPasswordHasher(cfg.PasswordCost))
	sessions := session.NewManager(cfg.SessionSecret, cfg.SessionTTL, accts)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(accts, sessions, renderer)
	jobHandler := handlers.NewJobHandler(client, catalog, sessions, renderer)
	teamHandler := handlers.NewTeamHandler(client, sessions, renderer)
	adminHandler := handlers.NewAdminHandler(accts, sessions, renderer)

	// Guard chains
	public := middleware.WithLogging
	login := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireLogin(sessions, h))
	}
	loginPost := func(h http.HandlerFunc) http.HandlerFunc {
		return login(middleware.RequireFormToken(sessions, h))
	}
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return login(middleware.RequireAdmin(sessions, h))
	}
	adminPost := func(h http.HandlerFunc) http.HandlerFunc {
		return admin(middleware.RequireFormToken(sessions, h))
	}

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Accounts
	mux.HandleFunc("GET /login", public(authHandler.Login))
	mux.HandleFunc("POST /login", public(authHandler.Login))
	mux.HandleFunc("GET /logout", public(authHandler.Logout))
	mux.HandleFunc("GET /register", public(authHandler.Register))
	mux.HandleFunc("POST /register", public(authHandler.Register))
	mux.HandleFunc("GET /change_password", login(authHandler.ChangePassword))
	mux.HandleFunc("POST /change_password", loginPost(authHandler.ChangePassword))

	// Jobs
	mux.HandleFunc("GET /{$}", login(jobHandler.Index))
	mux.HandleFunc("POST /create_job", loginPost(jobHandler.CreateJob))
	mux.HandleFunc("GET /job/{job_id}", login(jobHandler.JobDetails))
	mux.HandleFunc("GET /jobs", login(jobHandler.ListJobs))
	mux.HandleFunc("GET /job_status/{job_id}", login(jobHandler.JobStatus))

	// Team
	mux.HandleFunc("GET /team", login(teamHandler.Team))
	mux.HandleFunc("POST /update_team", loginPost(teamHandler.UpdateTeam))

	// Admin
	mux.HandleFunc("GET /admin", admin(adminHandler.Dashboard))
	mux.HandleFunc("GET /admin/users", admin(adminHandler.Users))
	mux.HandleFunc("GET /admin/tokens", admin(adminHandler.Tokens))
	mux.HandleFunc("POST /admin/generate_token", adminPost(adminHandler.GenerateToken))
	mux.HandleFunc("POST /admin/delete_token/{token_id}", adminPost(adminHandler.DeleteToken))

	return sessions.Load(mux), nil
}
