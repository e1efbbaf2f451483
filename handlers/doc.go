// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the LLMail-Inject portal.

# Handler Types

Each handler is a struct holding the session manager, the page renderer and
its own domain dependency:

  - AuthHandler: login, logout, registration and password changes
  - JobHandler: the dashboard, job submission, job pages and status polling
  - TeamHandler: team details and member updates
  - AdminHandler: user and registration token administration

	jobHandler := handlers.NewJobHandler(client, catalog, sessions, renderer)

Handlers assume the router already applied the login, admin and form token
guards from the middleware package.

# Pages and JSON

Pages are rendered through views.Renderer with any pending flash messages.
Validation failures re-render the form with status 400; a failed login
re-renders with 401. Successful form posts set a flash and redirect.

Two endpoints answer in JSON for the dashboard's script:

	POST /create_job          → CreateJob  {"job_id": ..., "status": "processing"}
	GET  /job_status/{job_id} → JobStatus  {"completed": ..., "output": ..., "objectives": ..., "error": null}

Errors from both use {"error": "..."}.

# Competition API

Without an API key every API-backed page still renders, with a warning
flash and empty data. CreateJob answers 503 and JobStatus 403 in that case.
*/
package handlers
