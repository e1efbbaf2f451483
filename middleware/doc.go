// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status, duration_ms).

# Guards

Guards compose around handlers; the outermost runs first:

	mux.HandleFunc("POST /admin/generate_token", middleware.WithLogging(
		middleware.RequireLogin(sessions,
			middleware.RequireAdmin(sessions,
				middleware.RequireFormToken(sessions, admin.GenerateToken)))))

RequireLogin redirects anonymous users to /login?next=<path>. RequireAdmin
redirects non-admins to /. Both flash a message first. RequireFormToken
answers a POST without a valid form token with 403 and a JSON error.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message") // {"error":"message"}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)
*/
package middleware
