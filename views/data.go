// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import "github.com/danielhkuo/inject-portal/models"

// AuthForm backs the login, register and change password pages.
// Only non-secret fields are echoed back.
type AuthForm struct {
	Username string
	Token    string
	Next     string
	Errors   map[string]string
}

type Dashboard struct {
	Scenarios     []models.Scenario
	Team          *models.Team
	APIError      string
	APIKeyMissing bool
}

type JobDetails struct {
	JobID    string
	Job      *models.Job
	APIError string
}

type JobList struct {
	Jobs     []models.Job
	APIError string
}

type TeamDetails struct {
	Team          *models.Team
	APIError      string
	APIKeyMissing bool
}

type UserList struct {
	Users []models.User
}

type TokenList struct {
	Tokens []models.RegistrationToken
}
