// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, request, and response types for the portal.

# Domain Types

Records stored locally:

  - User: account with bcrypt password hash and admin flag
  - RegistrationToken: invite token with a remaining use count

Views of records owned by the competition API (never persisted):

  - Job: a submitted scenario run; Completed() once completed_time is set
  - Team: team name, ordered members, score

Catalog entries:

  - Scenario: id and display text parsed from the scenario page

# Token Status

A registration token is consumable while !IsUsed && UsesLeft > 0:

	token.Valid()   // true
	token.Status()  // "3 uses left", "Used", or "Expired"
	token.Preview() // "1b4e28ba..."

# Request Types

JSON bodies sent to the competition API:

  - CreateJobRequest: scenario, subject, body
  - UpdateTeamRequest: members

# Response Types

JSON returned by the portal:

  - CreateJobResponse: job_id, status ("processing")
  - JobStatusResponse: completed, output, objectives, error
  - ErrorResponse: error
*/
package models
