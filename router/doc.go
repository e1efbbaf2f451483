// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the inject portal.

# Route Registration

NewRouter builds the handlers and returns the complete HTTP handler:

	handler, err := router.NewRouter(database, cfg, client, catalog)

Every request first passes through the session loader, so handlers and
guards can ask for the current user.

# Endpoints

Health:

	GET /health

Accounts (public):

	GET|POST /login    - Form login, honours ?next=
	GET      /logout   - End session
	GET|POST /register - Register with an invite token

Logged in:

	GET|POST /change_password
	GET  /                       - Dashboard and job form
	POST /create_job             - Submit a job (JSON)
	GET  /job/{job_id}           - Job details
	GET  /jobs                   - Job list, newest first
	GET  /job_status/{job_id}    - Job status (JSON, polled by the browser)
	GET  /team                   - Team details
	POST /update_team            - Replace team members

Admin:

	GET  /admin
	GET  /admin/users
	GET  /admin/tokens
	POST /admin/generate_token
	POST /admin/delete_token/{token_id}

POSTs behind a login also require the session's form token.
*/
package router
