// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Sources are applied in order, later ones winning:

 1. built-in defaults
 2. YAML config file (--config or CONFIG_FILE)
 3. environment variables
 4. CLI flags that were explicitly given

# CLI Flags and Environment Variables

	-p, --port           PORT                  (default 3318)
	-d, --database       DATABASE_URL          (fallback DATABASE_FILE, default app.db)
	-t, --database-type  DATABASE_TYPE         sqlite or postgres (default sqlite)
	--session-secret     SESSION_SECRET        required
	--api-key            COMPETITION_API_KEY   placeholder disables API features
	--api-server         API_SERVER
	--scenarios          SCENARIOS_FILE        (default jobs.html)
	--password-cost      PASSWORD_COST         bcrypt cost, 0 for default
	--session-ttl        SESSION_TTL           (default 12h)
	--log-level          LOG_LEVEL             debug, info, warn, error
	--config             CONFIG_FILE
	                     DEFAULT_ADMIN_PASSWORD (default changeme123)

# Config File

Keys mirror the settings above:

	port: 3318
	database: app.db
	session_secret: ...
	api_key: ...
	session_ttl: 12h

# Validation

ParseFlags returns an error when the session secret is missing, the database
type is unknown, or a numeric or duration value does not parse.
*/
package cliparse
