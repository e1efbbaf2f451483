// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the inject portal.

The portal lets registered users submit email-injection jobs to the
competition API, follow their progress and manage their team. Accounts are
created with invite tokens handed out by an admin.

# Starting the Server

A session secret is the only required setting:

	SESSION_SECRET=... go run .

Or with flags:

	go run . -p 3318 -d app.db --session-secret ...

A .env file in the working directory is loaded first if present.

# First Start

With an empty user table the server creates an "admin" account with
DEFAULT_ADMIN_PASSWORD (fallback changeme123) and logs one single-use
registration token so a second operator can register.

# Competition API

Without COMPETITION_API_KEY the portal still runs; job and team pages show a
warning and job submission answers 503.

# Architecture

  - handlers: HTTP request handlers (auth, jobs, team, admin)
  - router: Route definitions and guard chains using Go 1.22+ routing
  - middleware: logging, JSON helpers, login/admin/form-token guards
  - session: session cookie, flash messages, form tokens
  - views: embedded HTML templates
  - accounts: users, invite tokens, bootstrap
  - competition: competition API client
  - scenarios: scenario list loader
  - auth: password hashing, session and form tokens
  - db: connection and goose migrations (SQLite or PostgreSQL)
  - models: data and JSON types
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
