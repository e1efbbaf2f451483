// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/danielhkuo/inject-portal/auth"
	"github.com/danielhkuo/inject-portal/db"
	"github.com/danielhkuo/inject-portal/models"
)

// Field limits enforced on registration and password change
const (
	MinUsernameLength = 4
	MaxUsernameLength = 80
	MinPasswordLength = 6
)

const userColumns = "id, username, password_hash, is_admin, created_at"
const tokenColumns = "id, token, is_used, uses_left, created_at"

// Manager owns user accounts and registration tokens
type Manager struct {
	db     *db.DB
	hasher *auth.PasswordHasher
}

func NewManager(database *db.DB, hasher *auth.PasswordHasher) *Manager {
	return &Manager{db: database, hasher: hasher}
}

// ValidateToken checks that token exists and still has uses left.
// RegisterUser re-checks at commit time, so this is advisory for forms.
func (m *Manager) ValidateToken(ctx context.Context, token string) error {
	var isUsed bool
	var usesLeft int
	err := m.db.QueryRowContext(ctx, m.db.Rebind(`
		SELECT is_used, uses_left FROM registration_token WHERE token = ?
	`), token).Scan(&isUsed, &usesLeft)

	if errors.Is(err, sql.ErrNoRows) {
		return ErrInvalidToken
	}
	if err != nil {
		return persistence("query token", err)
	}
	if isUsed || usesLeft <= 0 {
		return ErrInvalidToken
	}
	return nil
}

// RegisterUser creates an account by consuming one use of token.
// The token decrement and the user insert commit together or not at all.
// The first user ever stored becomes admin.
func (m *Manager) RegisterUser(ctx context.Context, username, password, token string) (*models.User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword("password", password); err != nil {
		return nil, err
	}

	taken, err := m.usernameExists(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	// Hash before opening the transaction so the write lock is held briefly
	hash, err := m.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, persistence("begin registration", err)
	}
	defer tx.Rollback()

	// Serializes concurrent first registrations on postgres
	if err := m.db.LockTable(ctx, tx, "app_user"); err != nil {
		return nil, persistence("register user", err)
	}

	if err := m.consumeToken(ctx, tx, token); err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	err = tx.QueryRowContext(ctx, m.db.Rebind(`
		INSERT INTO app_user (username, password_hash, is_admin, created_at)
		SELECT ?, ?, NOT EXISTS (SELECT 1 FROM app_user), ?
		RETURNING id, is_admin
	`), username, hash, user.CreatedAt).Scan(&user.ID, &user.IsAdmin)

	if err != nil {
		tx.Rollback()
		// Lost a race on the unique username
		if taken, checkErr := m.usernameExists(ctx, username); checkErr == nil && taken {
			return nil, ErrUsernameTaken
		}
		return nil, persistence("insert user", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, persistence("commit registration", err)
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username, "is_admin", user.IsAdmin)

	return user, nil
}

// consumeToken decrements uses_left only if the token is still valid.
// The WHERE clause is the commit-time validity check.
func (m *Manager) consumeToken(ctx context.Context, tx *sql.Tx, token string) error {
	res, err := tx.ExecContext(ctx, m.db.Rebind(`
		UPDATE registration_token
		SET uses_left = uses_left - 1,
		    is_used = (uses_left - 1 <= 0)
		WHERE token = ? AND is_used = FALSE AND uses_left > 0
	`), token)
	if err != nil {
		return persistence("consume token", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return persistence("consume token", err)
	}
	if n != 1 {
		return ErrInvalidToken
	}
	return nil
}

// Authenticate returns the user when username and password match
func (m *Manager) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := m.getUserBy(ctx, "username", username)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !m.hasher.Verify(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUser loads a user by ID
func (m *Manager) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return m.getUserBy(ctx, "id", id)
}

// ChangePassword replaces the stored hash after verifying the current password.
// The update is conditional on the hash that was verified.
func (m *Manager) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	if err := validatePassword("new_password", newPassword); err != nil {
		return err
	}

	user, err := m.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if !m.hasher.Verify(user.PasswordHash, currentPassword) {
		return ErrWrongCurrentPassword
	}

	newHash, err := m.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	res, err := m.db.ExecContext(ctx, m.db.Rebind(`
		UPDATE app_user SET password_hash = ? WHERE id = ? AND password_hash = ?
	`), newHash, userID, user.PasswordHash)
	if err != nil {
		return persistence("update password", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return persistence("update password", err)
	}
	if n != 1 {
		// Changed underneath us; the verified password is stale
		return ErrWrongCurrentPassword
	}

	slog.Info("password changed", "user_id", userID)
	return nil
}

// GenerateToken creates a registration token with the given number of uses
func (m *Manager) GenerateToken(ctx context.Context, uses int) (*models.RegistrationToken, error) {
	if uses <= 0 {
		return nil, ErrInvalidUseCount
	}

	token := &models.RegistrationToken{
		Token:     auth.NewRegistrationToken(),
		UsesLeft:  uses,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.insertToken(ctx, m.db.DB, token); err != nil {
		return nil, err
	}

	slog.Info("registration token generated", "token_id", token.ID, "uses", uses)
	return token, nil
}

// DeleteToken removes a token and returns the removed record
func (m *Manager) DeleteToken(ctx context.Context, id int64) (*models.RegistrationToken, error) {
	var token models.RegistrationToken
	err := m.db.QueryRowContext(ctx, m.db.Rebind(`
		DELETE FROM registration_token WHERE id = ?
		RETURNING `+tokenColumns), id).Scan(
		&token.ID, &token.Token, &token.IsUsed, &token.UsesLeft, &token.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, persistence("delete token", err)
	}

	slog.Info("registration token deleted", "token_id", id)
	return &token, nil
}

// ListUsers returns all users in creation order
func (m *Manager) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT `+userColumns+` FROM app_user ORDER BY id`)
	if err != nil {
		return nil, persistence("query users", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt); err != nil {
			return nil, persistence("scan user", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, persistence("query users", err)
	}
	return users, nil
}

// ListTokens returns all tokens, newest first
func (m *Manager) ListTokens(ctx context.Context) ([]models.RegistrationToken, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT `+tokenColumns+` FROM registration_token ORDER BY id DESC`)
	if err != nil {
		return nil, persistence("query tokens", err)
	}
	defer rows.Close()

	tokens := []models.RegistrationToken{}
	for rows.Next() {
		var t models.RegistrationToken
		if err := rows.Scan(&t.ID, &t.Token, &t.IsUsed, &t.UsesLeft, &t.CreatedAt); err != nil {
			return nil, persistence("scan token", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, persistence("query tokens", err)
	}
	return tokens, nil
}

func (m *Manager) getUserBy(ctx context.Context, column string, value any) (*models.User, error) {
	var u models.User
	err := m.db.QueryRowContext(ctx, m.db.Rebind(
		`SELECT `+userColumns+` FROM app_user WHERE `+column+` = ?`,
	), value).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, persistence("query user", err)
	}
	return &u, nil
}

func (m *Manager) usernameExists(ctx context.Context, username string) (bool, error) {
	var count int
	err := m.db.QueryRowContext(ctx, m.db.Rebind(`
		SELECT COUNT(*) FROM app_user WHERE username = ?
	`), username).Scan(&count)
	if err != nil {
		return false, persistence("query username", err)
	}
	return count > 0, nil
}

func (m *Manager) countUsers(ctx context.Context, q queryer) (int, error) {
	var count int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM app_user`).Scan(&count); err != nil {
		return 0, persistence("count users", err)
	}
	return count, nil
}

func (m *Manager) insertToken(ctx context.Context, q queryer, token *models.RegistrationToken) error {
	err := q.QueryRowContext(ctx, m.db.Rebind(`
		INSERT INTO registration_token (token, is_used, uses_left, created_at)
		VALUES (?, FALSE, ?, ?)
		RETURNING id
	`), token.Token, token.UsesLeft, token.CreatedAt).Scan(&token.ID)
	if err != nil {
		return persistence("insert token", err)
	}
	return nil
}

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func validateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < MinUsernameLength || n > MaxUsernameLength {
		return &ValidationError{
			Field:   "username",
			Message: fmt.Sprintf("Field must be between %d and %d characters long.", MinUsernameLength, MaxUsernameLength),
		}
	}
	return nil
}

func validatePassword(field, password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("Field must be at least %d characters long.", MinPasswordLength),
		}
	}
	return nil
}
