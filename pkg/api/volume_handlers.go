// SPDX-FileCopyrightText: 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

type createVolumeRequest struct {
	Size int    `json:"size"`
	Name string `json:"name"`
}

type attachVolumeRequest struct {
	VolumeID string `json:"volumeId"`
	Device   string `json:"device"`
}

func (api *v1) listVolumes(w http.ResponseWriter, r *http.Request) {
	project, err := api.resolveProject(r)
	if err != nil {
		ReturnError(w, err)
		return
	}
	volumes, err := api.cloud.ListVolumes(r.Context(), project.ExternalID)
	if err != nil {
		ReturnError(w, err)
		return
	}
	ReturnRawJSON(w, http.StatusOK, volumes)
}

func (api *v1) createVolume(w http.ResponseWriter, r *http.Request) {
	project, err := api.resolveProject(r)
	if err != nil {
		ReturnError(w, err)
		return
	}
	var in createVolumeRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Size <= 0 {
		ReturnJSON(w, http.StatusBadRequest, map[string]string{"error": "a positive size is required"})
		return
	}
	volume, err := api.cloud.CreateVolume(r.Context(), project.ExternalID, in.Size, in.Name)
	if err != nil {
		ReturnError(w, err)
		return
	}
	ReturnRawJSON(w, http.StatusCreated, volume)
}

func (api *v1) deleteVolume(w http.ResponseWriter, r *http.Request) {
	project, err := api.resolveProject(r)
	if err != nil {
		ReturnError(w, err)
		return
	}
	err = api.cloud.DeleteVolume(r.Context(), project.ExternalID, mux.Vars(r)["volumeId"])
	if err != nil {
		ReturnError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *v1) attachVolume(w http.ResponseWriter, r *http.Request) {
	project, err := api.resolveProject(r)
	if err != nil {
		ReturnError(w, err)
		return
	}
	var in attachVolumeRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.VolumeID == "" {
		ReturnJSON(w, http.StatusBadRequest, map[string]string{"error": "volumeId is required"})
		return
	}
	attachment, err := api.cloud.AttachVolume(r.Context(), project.ExternalID, mux.Vars(r)["serverId"], in.VolumeID, in.Device)
	if err != nil {
		ReturnError(w, err)
		return
	}
	ReturnRawJSON(w, http.StatusOK, attachment)
}

func (api *v1) detachVolume(w http.ResponseWriter, r *http.Request) {
	project, err := api.resolveProject(r)
	if err != nil {
		ReturnError(w, err)
		return
	}
	vars := mux.Vars(r)
	err = api.cloud.DetachVolume(r.Context(), project.ExternalID, vars["serverId"], vars["attachmentId"])
	if err != nil {
		ReturnError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
