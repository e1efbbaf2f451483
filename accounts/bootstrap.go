// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/danielhkuo/inject-portal/auth"
	"github.com/danielhkuo/inject-portal/models"
)

// AdminUsername is the account created when the store is empty
const AdminUsername = "admin"

type BootstrapResult struct {
	Created bool
	Admin   *models.User
	Token   *models.RegistrationToken
}

// Bootstrap creates the initial admin and one single-use registration token
// when no users exist. With any user present it does nothing.
// The schema must already exist.
func (m *Manager) Bootstrap(ctx context.Context, adminPassword string) (*BootstrapResult, error) {
	if adminPassword == "" {
		return nil, errors.New("bootstrap: admin password is empty")
	}

	count, err := m.countUsers(ctx, m.db.DB)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return &BootstrapResult{Created: false}, nil
	}

	hash, err := m.hasher.Hash(adminPassword)
	if err != nil {
		return nil, err
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, persistence("begin bootstrap", err)
	}
	defer tx.Rollback()

	if err := m.db.LockTable(ctx, tx, "app_user"); err != nil {
		return nil, persistence("bootstrap", err)
	}

	// Another process may have bootstrapped since the first count
	count, err = m.countUsers(ctx, tx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return &BootstrapResult{Created: false}, nil
	}

	now := time.Now().UTC()
	admin := &models.User{
		Username:     AdminUsername,
		PasswordHash: hash,
		IsAdmin:      true,
		CreatedAt:    now,
	}
	err = tx.QueryRowContext(ctx, m.db.Rebind(`
		INSERT INTO app_user (username, password_hash, is_admin, created_at)
		VALUES (?, ?, TRUE, ?)
		RETURNING id
	`), admin.Username, admin.PasswordHash, admin.CreatedAt).Scan(&admin.ID)
	if err != nil {
		return nil, persistence("insert admin", err)
	}

	token := &models.RegistrationToken{
		Token:     auth.NewRegistrationToken(),
		UsesLeft:  1,
		CreatedAt: now,
	}
	if err := m.insertToken(ctx, tx, token); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, persistence("commit bootstrap", err)
	}

	return &BootstrapResult{Created: true, Admin: admin, Token: token}, nil
}
