// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package accounts manages user accounts and the registration tokens that
gate their creation.

# Registration

Accounts can only be created by consuming a registration token:

	user, err := manager.RegisterUser(ctx, "alice", "s3cret!", token)

The token's uses_left is decremented by a conditional UPDATE inside the same
transaction as the user insert, so two concurrent registrations can never
both consume the last use. When uses_left reaches zero the token is marked
used for good. The first user ever stored becomes admin; that check runs in
the INSERT itself.

# Token Lifecycle

	Fresh(uses_left=N) --register--> Fresh(N-1)      if N-1 > 0
	Fresh(uses_left=1) --register--> Exhausted(used)  terminal

# Bootstrap

On an empty store, Bootstrap creates the "admin" account and one single-use
token so a second operator can register. Later calls do nothing.

# Errors

Callers match with errors.Is: ErrUsernameTaken, ErrInvalidToken,
ErrWrongCurrentPassword, ErrInvalidUseCount, ErrInvalidCredentials,
ErrNotFound and ErrPersistence. Bad input is reported as *ValidationError.
*/
package accounts
