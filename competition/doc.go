// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package competition is a client for the competition's team and job API.

	client := competition.NewClient(cfg.APIKey, cfg.APIServer)
	job, err := client.CreateJob(ctx, "phishinglure", subject, body)

Every call is a fresh round trip authenticated with a bearer token; nothing
is cached.

# Placeholder Key

An empty key or PlaceholderAPIKey switches the integration off. Reads degrade
and writes refuse, all without network traffic:

	GetJob, GetMyTeam   → nil, nil
	ListJobs            → empty slice
	CreateJob, UpdateMyTeam → ErrAPIKeyNotConfigured

# Errors

A 404 from GetJob or GetMyTeam is reported as absent (nil, nil). Any other
non-2xx response becomes *APIError with the status and, when the body is
JSON, the server's message, advice and trace_id:

	var apiErr *competition.APIError
	if errors.As(err, &apiErr) {
		slog.Warn("api rejected job", "status", apiErr.Status, "trace_id", apiErr.TraceID)
	}

Building the error never fails; an unreadable body is described in Message.
*/
package competition
