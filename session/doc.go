// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session keeps users logged in across requests.

A login is a signed JWT in the "session" cookie. Its subject is the user id
and its jti a random session id. Manager.Load turns the cookie back into a
user for every request:

	sessions := session.NewManager(cfg.SessionSecret, cfg.SessionTTL, accountManager)
	handler := sessions.Load(mux)

	user := session.CurrentUser(r) // nil when anonymous

# Flash Messages

Flash queues a message that survives a redirect; Flashes pops them when the
next page renders. Messages travel in the "flash" cookie as base64url JSON.

# Form Tokens

FormToken derives an HMAC of the session id. Forms send it back in the
csrf_token field (or the X-CSRF-Token header) and ValidFormToken checks it.
Anonymous requests have no form token.
*/
package session
