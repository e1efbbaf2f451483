// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/danielhkuo/inject-portal/models"
)

// FakeAPIKey is the bearer token the fake competition API accepts
const FakeAPIKey = "fake-api-key"

// FakeAPI is an in-process stand-in for the competition API.
// State is changed through AddJob, SetTeam and SetFail.
type FakeAPI struct {
	*httptest.Server

	mu       sync.Mutex
	jobs     []models.Job
	team     *models.Team
	fail     int
	failBody string
	requests int
	lastBody []byte
}

// NewFakeAPI starts a fake competition API server, closed on cleanup
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()

	f := &FakeAPI{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/teams/mine/jobs", f.createJob)
	mux.HandleFunc("GET /api/teams/mine/jobs", f.listJobs)
	mux.HandleFunc("GET /api/teams/mine/jobs/{id}", f.getJob)
	mux.HandleFunc("GET /api/teams/mine", f.getTeam)
	mux.HandleFunc("PATCH /api/teams/mine", f.updateTeam)

	f.Server = httptest.NewServer(f.guard(mux))
	t.Cleanup(f.Close)
	return f
}

// RequestCount returns how many requests reached the server
func (f *FakeAPI) RequestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func (f *FakeAPI) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests++
		fail, failBody := f.fail, f.failBody
		f.mu.Unlock()

		if r.Header.Get("Authorization") != "Bearer "+FakeAPIKey {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"message": "Invalid API key",
				"advice":  "Check your key",
			})
			return
		}
		if fail != 0 {
			w.WriteHeader(fail)
			w.Write([]byte(failBody))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) createJob(w http.ResponseWriter, r *http.Request) {
	var req models.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad json"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	b, _ := json.Marshal(req)
	f.lastBody = b
	job := models.Job{
		JobID:         "job-" + string(rune('a'+len(f.jobs))),
		TeamID:        "team-1",
		Scenario:      req.Scenario,
		Subject:       req.Subject,
		Body:          req.Body,
		ScheduledTime: "2025-01-01T00:00:00Z",
	}
	f.jobs = append(f.jobs, job)
	writeJSON(w, http.StatusCreated, job)
}

func (f *FakeAPI) listJobs(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	jobs := f.jobs
	if jobs == nil {
		jobs = []models.Job{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (f *FakeAPI) getJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, job := range f.jobs {
		if job.JobID == id {
			writeJSON(w, http.StatusOK, job)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Job not found"})
}

func (f *FakeAPI) getTeam(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.team == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Team not found"})
		return
	}
	writeJSON(w, http.StatusOK, f.team)
}

func (f *FakeAPI) updateTeam(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad json"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	b, _ := json.Marshal(req)
	f.lastBody = b
	if f.team == nil {
		f.team = &models.Team{TeamID: "team-1", Name: "Team One"}
	}
	f.team.Members = req.Members
	writeJSON(w, http.StatusOK, f.team)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// SetFail makes every following request answer with status and body.
// A zero status restores normal behaviour.
func (f *FakeAPI) SetFail(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail, f.failBody = status, body
}

// SetTeam replaces the team returned by GET /api/teams/mine
func (f *FakeAPI) SetTeam(team *models.Team) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.team = team
}

// AddJob stores a job the fake will list and return by ID
func (f *FakeAPI) AddJob(job models.Job) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, job)
}

// LastRequestBody returns the JSON body of the last create or update call
func (f *FakeAPI) LastRequestBody() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastBody
}
