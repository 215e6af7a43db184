// SPDX-FileCopyrightText: 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/sapcc/go-bits/logg"

	"github.com/strato-cloud/strato/pkg/auth"
	"github.com/strato-cloud/strato/pkg/registry"
)

type createProjectRequest struct {
	Name string `json:"name"`
}

type projectResponse struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	ExternalID string `json:"externalId"`
}

func toProjectResponse(p registry.Project) projectResponse {
	return projectResponse{ID: p.ID, Name: p.Name, ExternalID: p.ExternalID}
}

// resolveProject parses the projectId path variable and runs the ownership
// guard. Non-numeric ids get the same answer as foreign projects.
func (api *v1) resolveProject(r *http.Request) (*registry.Project, error) {
	caller := callerFromContext(r.Context())
	if caller == nil {
		return nil, auth.ErrInvalidToken
	}
	projectID, err := strconv.ParseUint(mux.Vars(r)["projectId"], 10, 32)
	if err != nil {
		return nil, registry.ErrNotFound
	}
	return api.guard.ResolveOwnedProject(r.Context(), caller.UserID, uint(projectID))
}

func (api *v1) listProjects(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	if caller == nil {
		ReturnError(w, auth.ErrInvalidToken)
		return
	}
	projects, err := api.store.ProjectsByOwner(r.Context(), caller.UserID)
	if err != nil {
		ReturnError(w, err)
		return
	}
	out := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, toProjectResponse(p))
	}
	ReturnJSON(w, http.StatusOK, map[string]any{"projects": out})
}

// createProject provisions the platform project, grants the caller's platform
// identity the default role on it and records the project locally. There is
// no rollback: a failure after the platform create leaves an orphan, which is
// logged for operators to reap.
func (api *v1) createProject(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	if caller == nil {
		ReturnError(w, auth.ErrInvalidToken)
		return
	}
	var in createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == "" {
		ReturnJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	ctx := r.Context()
	externalID, err := api.identity.CreateProject(ctx, in.Name)
	if err != nil {
		ReturnError(w, err)
		return
	}
	if err := api.identity.AssignDefaultRole(ctx, caller.ExternalID, externalID); err != nil {
		logg.Error("orphaned platform project %s: role grant failed: %s", externalID, err.Error())
		ReturnError(w, err)
		return
	}

	project := registry.Project{
		Name:       in.Name,
		ExternalID: externalID,
		OwnerID:    caller.UserID,
	}
	if err := api.store.CreateProject(ctx, &project); err != nil {
		logg.Error("orphaned platform project %s: local create failed: %s", externalID, err.Error())
		ReturnError(w, err)
		return
	}
	ReturnJSON(w, http.StatusCreated, toProjectResponse(project))
}
