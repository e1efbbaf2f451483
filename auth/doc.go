// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides credential hashing and token generation utilities.

# Passwords

PasswordHasher wraps bcrypt. It is stateless apart from the cost:

	hasher := auth.NewPasswordHasher(cfg.PasswordCost)
	hash, err := hasher.Hash("s3cret!")
	ok := hasher.Verify(hash, "s3cret!")

A zero cost selects bcrypt.DefaultCost; out-of-range costs are clamped.

# Registration Tokens

Invite token values are random UUIDs in 36 character string form:

	value := auth.NewRegistrationToken()

# Session Tokens

Session cookies carry an HS256 JWT whose subject is the user ID and whose
jti is a random session ID:

	token, err := auth.IssueSessionToken(user.ID, sessionID, secret, 12*time.Hour)
	claims, err := auth.ParseSessionToken(token, secret)

Tokens signed with any other algorithm are rejected.

# Form Tokens

Form tokens use HMAC-SHA256 over the session ID, so they can be checked
without storing anything:

	formToken := auth.GenerateFormToken(sessionID, secret)
	err := auth.ValidateFormToken(sessionID, formToken, secret)

# ID Generation

Random hex IDs, used for session IDs:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
