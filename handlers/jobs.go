// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/inject-portal/competition"
	"github.com/danielhkuo/inject-portal/middleware"
	"github.com/danielhkuo/inject-portal/models"
	"github.com/danielhkuo/inject-portal/scenarios"
	"github.com/danielhkuo/inject-portal/session"
	"github.com/danielhkuo/inject-portal/views"
)

const (
	apiKeyMissingMessage = "API Key not configured. API features (jobs, team details) are disabled."
	noTeamMessage        = "Could not fetch API team details. Is the API Key valid and associated with a team?"
)

type JobHandler struct {
	pages
	client  *competition.Client
	catalog *scenarios.Catalog
}

func NewJobHandler(client *competition.Client, catalog *scenarios.Catalog, sessions *session.Manager, renderer *views.Renderer) *JobHandler {
	return &JobHandler{
		pages:   pages{sessions: sessions, views: renderer},
		client:  client,
		catalog: catalog,
	}
}

// Index handles GET /: the job form plus a team summary
func (h *JobHandler) Index(w http.ResponseWriter, r *http.Request) {
	data := views.Dashboard{
		Scenarios:     h.catalog.All(),
		APIKeyMissing: !h.client.Configured(),
	}

	if data.APIKeyMissing {
		h.flash(w, r, session.CategoryWarning, apiKeyMissingMessage)
	} else {
		team, err := h.client.GetMyTeam(r.Context())
		switch {
		case err != nil:
			slog.Warn("failed to fetch team", "error", err)
			data.APIError = fmt.Sprintf("Failed to fetch team details from API: %v", err)
			h.flash(w, r, session.CategoryDanger, data.APIError)
		case team == nil:
			h.flash(w, r, session.CategoryInfo, noTeamMessage)
		default:
			data.Team = team
		}
	}

	h.render(w, r, http.StatusOK, views.PageIndex, "Dashboard", data)
}

// CreateJob handles POST /create_job and answers in JSON
func (h *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	scenario := r.PostFormValue("scenario")
	subject := r.PostFormValue("subject")
	body := r.PostFormValue("body")

	if scenario == "" || subject == "" || body == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Scenario, Subject, and Body are required.")
		return
	}

	// unknown ids are still submitted; the catalog may be stale
	if h.catalog.Len() > 0 && !h.catalog.Contains(scenario) {
		slog.Warn("submitted scenario not in catalog", "scenario", scenario)
	}

	job, err := h.client.CreateJob(r.Context(), scenario, subject, body)
	switch {
	case errors.Is(err, competition.ErrAPIKeyNotConfigured):
		slog.Warn("job submitted without API key")
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, competition.ErrAPIKeyNotConfigured.Error())
		return
	case err != nil:
		slog.Error("failed to create job", "scenario", scenario, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, fmt.Sprintf("Error creating job via API: %v", err))
		return
	}

	slog.Info("job created", "job_id", job.JobID, "scenario", scenario, "user_id", userID(r))

	middleware.JSONResponse(w, http.StatusOK, models.CreateJobResponse{
		JobID:  job.JobID,
		Status: models.JobStatusProcessing,
	})
}

// JobDetails handles GET /job/{job_id}
func (h *JobHandler) JobDetails(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")
	data := views.JobDetails{JobID: jobID}

	if !h.client.Configured() {
		h.flash(w, r, session.CategoryWarning, "API Key not configured. Cannot fetch job details.")
	} else {
		job, err := h.client.GetJob(r.Context(), jobID)
		switch {
		case err != nil:
			data.APIError = fmt.Sprintf("Error fetching job %s from API: %v", jobID, err)
			h.flash(w, r, session.CategoryDanger, data.APIError)
		case job == nil:
			h.flash(w, r, session.CategoryWarning, fmt.Sprintf("Job '%s' not found or API key is invalid.", jobID))
		default:
			data.Job = job
		}
	}

	h.render(w, r, http.StatusOK, views.PageJobDetails, "Job "+jobID, data)
}

// ListJobs handles GET /jobs, newest first
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	data := views.JobList{Jobs: []models.Job{}}

	if !h.client.Configured() {
		h.flash(w, r, session.CategoryWarning, "API Key not configured. Cannot list jobs.")
	} else {
		jobs, err := h.client.ListJobs(r.Context())
		if err != nil {
			data.APIError = fmt.Sprintf("Error listing jobs from API: %v", err)
			h.flash(w, r, session.CategoryDanger, data.APIError)
		} else {
			competition.SortJobsByScheduled(jobs)
			data.Jobs = jobs
		}
	}

	h.render(w, r, http.StatusOK, views.PageJobList, "Jobs", data)
}

// JobStatus handles GET /job_status/{job_id} for the browser's poller
func (h *JobHandler) JobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")

	if !h.client.Configured() {
		middleware.ErrorResponse(w, http.StatusForbidden, "API Key not configured.")
		return
	}

	job, err := h.client.GetJob(r.Context(), jobID)
	if err != nil {
		slog.Warn("failed to poll job", "job_id", jobID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if job == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, fmt.Sprintf("Job %s not found or API access denied.", jobID))
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.JobStatusResponse{
		Completed:  job.Completed(),
		Output:     job.Output,
		Objectives: job.Objectives,
	})
}
