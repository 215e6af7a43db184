// SPDX-FileCopyrightText: 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sapcc/go-bits/logg"

	"github.com/strato-cloud/strato/pkg/auth"
	"github.com/strato-cloud/strato/pkg/registry"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type userResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type sessionResponse struct {
	User userResponse `json:"user"`
	auth.TokenPair
}

// register provisions a platform identity for the new user, then records the
// account locally. The keystone user is created first so that a platform
// failure leaves no half-registered local account behind.
func (api *v1) register(w http.ResponseWriter, r *http.Request) {
	var in registerRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == "" || in.Email == "" || in.Password == "" {
		ReturnJSON(w, http.StatusBadRequest, map[string]string{"error": "name, email and password are required"})
		return
	}

	ctx := r.Context()
	if _, err := api.store.FindUserByEmail(ctx, in.Email); err == nil {
		ReturnError(w, registry.ErrDuplicateEmail)
		return
	} else if !errors.Is(err, registry.ErrNotFound) {
		ReturnError(w, err)
		return
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		ReturnError(w, err)
		return
	}

	externalID, err := api.identity.CreateUser(ctx, in.Name, in.Password, in.Email)
	if err != nil {
		ReturnError(w, err)
		return
	}

	// every account starts with a default project
	projectName := fmt.Sprintf("project-%d", time.Now().UnixMilli())
	externalProjectID, err := api.identity.CreateProject(ctx, projectName)
	if err != nil {
		logg.Error("orphaned platform user %s: default project create failed: %s", externalID, err.Error())
		ReturnError(w, err)
		return
	}
	if err := api.identity.AssignDefaultRole(ctx, externalID, externalProjectID); err != nil {
		logg.Error("orphaned platform user %s and project %s: role grant failed: %s", externalID, externalProjectID, err.Error())
		ReturnError(w, err)
		return
	}

	user := registry.User{
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: hash,
		ExternalID:   externalID,
	}
	if err := api.store.CreateUser(ctx, &user); err != nil {
		logg.Error("orphaned platform user %s: local create failed: %s", externalID, err.Error())
		ReturnError(w, err)
		return
	}
	project := registry.Project{
		Name:       projectName,
		ExternalID: externalProjectID,
		OwnerID:    user.ID,
	}
	if err := api.store.CreateProject(ctx, &project); err != nil {
		logg.Error("orphaned platform project %s: local create failed: %s", externalProjectID, err.Error())
		ReturnError(w, err)
		return
	}

	pair, err := api.verifier.IssuePair(user.ID, user.ExternalID)
	if err != nil {
		ReturnError(w, err)
		return
	}
	ReturnJSON(w, http.StatusCreated, sessionResponse{
		User:      userResponse{ID: user.ID, Name: user.Name, Email: user.Email},
		TokenPair: pair,
	})
}

func (api *v1) login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" || in.Password == "" {
		ReturnJSON(w, http.StatusBadRequest, map[string]string{"error": "email and password are required"})
		return
	}

	user, err := api.store.FindUserByEmail(r.Context(), in.Email)
	if err != nil || !auth.CheckPassword(user.PasswordHash, in.Password) {
		// one answer for unknown email and wrong password
		authFailuresCounter.Add(1)
		ReturnJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	pair, err := api.verifier.IssuePair(user.ID, user.ExternalID)
	if err != nil {
		ReturnError(w, err)
		return
	}
	ReturnJSON(w, http.StatusOK, sessionResponse{
		User:      userResponse{ID: user.ID, Name: user.Name, Email: user.Email},
		TokenPair: pair,
	})
}

// refresh trades a valid refresh token for a fresh access token.
func (api *v1) refresh(w http.ResponseWriter, r *http.Request) {
	var in refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.RefreshToken == "" {
		ReturnJSON(w, http.StatusBadRequest, map[string]string{"error": "refreshToken is required"})
		return
	}

	claims, err := api.verifier.VerifyRefresh(in.RefreshToken)
	if err != nil {
		ReturnError(w, err)
		return
	}
	access, err := api.verifier.IssueAccess(claims.UserID, claims.ExternalID)
	if err != nil {
		ReturnError(w, err)
		return
	}
	ReturnJSON(w, http.StatusOK, map[string]string{"accessToken": access})
}
