// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/inject-portal/competition"
	"github.com/danielhkuo/inject-portal/session"
	"github.com/danielhkuo/inject-portal/views"
)

type TeamHandler struct {
	pages
	client *competition.Client
}

func NewTeamHandler(client *competition.Client, sessions *session.Manager, renderer *views.Renderer) *TeamHandler {
	return &TeamHandler{
		pages:  pages{sessions: sessions, views: renderer},
		client: client,
	}
}

// Team handles GET /team
func (h *TeamHandler) Team(w http.ResponseWriter, r *http.Request) {
	data := views.TeamDetails{APIKeyMissing: !h.client.Configured()}

	if data.APIKeyMissing {
		h.flash(w, r, session.CategoryWarning, "API Key not configured. Cannot fetch team details.")
	} else {
		team, err := h.client.GetMyTeam(r.Context())
		switch {
		case err != nil:
			data.APIError = fmt.Sprintf("Error fetching team details from API: %v", err)
			h.flash(w, r, session.CategoryDanger, data.APIError)
		case team == nil:
			h.flash(w, r, session.CategoryInfo, noTeamMessage)
		default:
			data.Team = team
		}
	}

	h.render(w, r, http.StatusOK, views.PageTeam, "Team", data)
}

// UpdateTeam handles POST /update_team
func (h *TeamHandler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	raw := r.PostFormValue("members")
	if strings.TrimSpace(raw) == "" {
		h.flash(w, r, session.CategoryError, "Members list cannot be empty.")
		redirectBack(w, r, "/team")
		return
	}

	members := competition.ParseMembers(raw)
	if len(members) == 0 {
		h.flash(w, r, session.CategoryError, "At least one member username is required.")
		redirectBack(w, r, "/team")
		return
	}

	team, err := h.client.UpdateMyTeam(r.Context(), members)
	switch {
	case errors.Is(err, competition.ErrAPIKeyNotConfigured):
		h.flash(w, r, session.CategoryDanger, competition.ErrAPIKeyNotConfigured.Error())
	case err != nil:
		slog.Error("failed to update team", "error", err)
		h.flash(w, r, session.CategoryDanger, fmt.Sprintf("Error updating team via API: %v", err))
	default:
		slog.Info("team members updated", "team_id", team.TeamID, "members", len(team.Members))
		h.flash(w, r, session.CategorySuccess, fmt.Sprintf("Team '%s' members updated successfully via API.", team.Name))
	}
	redirectBack(w, r, "/team")
}
