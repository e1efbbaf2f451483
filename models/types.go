// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"fmt"
	"time"
)

// Token display statuses
const (
	TokenStatusUsed    = "Used"
	TokenStatusExpired = "Expired"
)

// Job status reported back to the browser after submission
const (
	JobStatusProcessing = "processing"
)

// Domain types

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

type RegistrationToken struct {
	ID        int64     `json:"id"`
	Token     string    `json:"token"`
	IsUsed    bool      `json:"is_used"`
	UsesLeft  int       `json:"uses_left"`
	CreatedAt time.Time `json:"created_at"`
}

// Valid reports whether the token can still be consumed by a registration
func (t RegistrationToken) Valid() bool {
	return !t.IsUsed && t.UsesLeft > 0
}

// Status is the human readable state shown on the admin token page
func (t RegistrationToken) Status() string {
	if t.IsUsed {
		return TokenStatusUsed
	}
	if t.UsesLeft > 0 {
		return fmt.Sprintf("%d uses left", t.UsesLeft)
	}
	return TokenStatusExpired
}

// Preview returns the first 8 characters of the token followed by an ellipsis
func (t RegistrationToken) Preview() string {
	if len(t.Token) <= 8 {
		return t.Token
	}
	return t.Token[:8] + "..."
}

// Job is the portal's view of a job owned by the competition API.
// Times are kept as the strings the server sent.
type Job struct {
	JobID         string         `json:"job_id"`
	TeamID        string         `json:"team_id"`
	Scenario      string         `json:"scenario"`
	Subject       string         `json:"subject"`
	Body          string         `json:"body"`
	ScheduledTime string         `json:"scheduled_time"`
	StartedTime   *string        `json:"started_time,omitempty"`
	CompletedTime *string        `json:"completed_time,omitempty"`
	Output        *string        `json:"output,omitempty"`
	Objectives    map[string]any `json:"objectives,omitempty"`
}

// Completed is true once the remote side has stamped a completion time
func (j Job) Completed() bool {
	return j.CompletedTime != nil
}

type Team struct {
	TeamID          string   `json:"team_id"`
	Name            string   `json:"name"`
	Members         []string `json:"members"`
	Score           *int     `json:"score,omitempty"`
	SolvedScenarios []string `json:"solved_scenarios,omitempty"`
	IsEnabled       *bool    `json:"is_enabled,omitempty"`
}

type Scenario struct {
	ID      string `json:"id"`
	Display string `json:"display"`
}

// Request types (sent to the competition API)

type CreateJobRequest struct {
	Scenario string `json:"scenario"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
}

type UpdateTeamRequest struct {
	Members []string `json:"members"`
}

// Response types

type CreateJobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// Error is always present so the poller can tell "no error" from a missing field
type JobStatusResponse struct {
	Completed  bool           `json:"completed"`
	Output     *string        `json:"output"`
	Objectives map[string]any `json:"objectives"`
	Error      *string        `json:"error"`
}

// Error response

type ErrorResponse struct {
	Error string `json:"error"`
}
