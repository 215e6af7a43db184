// SPDX-FileCopyrightText: 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

type createServerRequest struct {
	Name       string   `json:"name"`
	ImageRef   string   `json:"imageRef"`
	FlavorRef  string   `json:"flavorRef"`
	NetworkIDs []string `json:"networkIds"`
}

type serverActionRequest struct {
	Action string `json:"action"`
}

func (api *v1) listServers(w http.ResponseWriter, r *http.Request) {
	project, err := api.resolveProject(r)
	if err != nil {
		ReturnError(w, err)
		return
	}
	servers, err := api.cloud.ListServers(r.Context(), project.ExternalID)
	if err != nil {
		ReturnError(w, err)
		return
	}
	ReturnRawJSON(w, http.StatusOK, servers)
}

func (api *v1) createServer(w http.ResponseWriter, r *http.Request) {
	project, err := api.resolveProject(r)
	if err != nil {
		ReturnError(w, err)
		return
	}
	var in createServerRequest
	// a nil slice means the field was absent entirely
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == "" || in.ImageRef == "" || in.FlavorRef == "" || in.NetworkIDs == nil {
		ReturnJSON(w, http.StatusBadRequest, map[string]string{"error": "name, imageRef, flavorRef and networkIds are required"})
		return
	}
	server, err := api.cloud.CreateServer(r.Context(), project.ExternalID, in.Name, in.ImageRef, in.FlavorRef, in.NetworkIDs)
	if err != nil {
		ReturnError(w, err)
		return
	}
	ReturnRawJSON(w, http.StatusCreated, server)
}

func (api *v1) serverAction(w http.ResponseWriter, r *http.Request) {
	project, err := api.resolveProject(r)
	if err != nil {
		ReturnError(w, err)
		return
	}
	var in serverActionRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Action == "" {
		ReturnJSON(w, http.StatusBadRequest, map[string]string{"error": "action is required"})
		return
	}
	err = api.cloud.ServerAction(r.Context(), project.ExternalID, mux.Vars(r)["serverId"], in.Action)
	if err != nil {
		ReturnError(w, err)
		return
	}
	ReturnJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (api *v1) deleteServer(w http.ResponseWriter, r *http.Request) {
	project, err := api.resolveProject(r)
	if err != nil {
		ReturnError(w, err)
		return
	}
	err = api.cloud.DeleteServer(r.Context(), project.ExternalID, mux.Vars(r)["serverId"])
	if err != nil {
		ReturnError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *v1) listFlavors(w http.ResponseWriter, r *http.Request) {
	project, err := api.resolveProject(r)
	if err != nil {
		ReturnError(w, err)
		return
	}
	flavors, err := api.cloud.ListFlavors(r.Context(), project.ExternalID)
	if err != nil {
		ReturnError(w, err)
		return
	}
	ReturnRawJSON(w, http.StatusOK, flavors)
}

func (api *v1) listNetworks(w http.ResponseWriter, r *http.Request) {
	project, err := api.resolveProject(r)
	if err != nil {
		ReturnError(w, err)
		return
	}
	networks, err := api.cloud.ListNetworks(r.Context(), project.ExternalID)
	if err != nil {
		ReturnError(w, err)
		return
	}
	ReturnRawJSON(w, http.StatusOK, networks)
}
