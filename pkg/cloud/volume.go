// SPDX-FileCopyrightText: 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package cloud

import (
	"context"
	"encoding/json"
	"net/http"
)

// ListVolumes returns the project's volumes.
func (c *Client) ListVolumes(ctx context.Context, projectID string) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.do(ctx, "list volumes", http.MethodGet, joinURL(c.volumeURL, projectID, "volumes"), nil, &raw, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return unwrap(raw, "volumes"), nil
}

// CreateVolume creates a block volume of the given size in GiB.
func (c *Client) CreateVolume(ctx context.Context, projectID string, size int, name string) (json.RawMessage, error) {
	volume := map[string]any{"size": size}
	if name != "" {
		volume["name"] = name
	}

	var raw json.RawMessage
	err := c.do(ctx, "create volume", http.MethodPost, joinURL(c.volumeURL, projectID, "volumes"), map[string]any{"volume": volume}, &raw, http.StatusOK, http.StatusAccepted)
	if err != nil {
		return nil, err
	}
	return unwrap(raw, "volume"), nil
}

// DeleteVolume removes a volume.
func (c *Client) DeleteVolume(ctx context.Context, projectID, volumeID string) error {
	return c.do(ctx, "delete volume", http.MethodDelete, joinURL(c.volumeURL, projectID, "volumes", volumeID), nil, nil, http.StatusAccepted, http.StatusNoContent)
}

// AttachVolume attaches a volume to a server. Attachments live under the
// compute service's attachment sub-resource, not under the volume service.
func (c *Client) AttachVolume(ctx context.Context, projectID, serverID, volumeID, device string) (json.RawMessage, error) {
	attachment := map[string]any{"volumeId": volumeID}
	if device != "" {
		attachment["device"] = device
	}

	var raw json.RawMessage
	err := c.do(ctx, "attach volume", http.MethodPost, joinURL(c.computeURL, projectID, "servers", serverID, "os-volume_attachments"), map[string]any{"volumeAttachment": attachment}, &raw, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return unwrap(raw, "volumeAttachment"), nil
}

// DetachVolume removes a volume attachment from a server.
func (c *Client) DetachVolume(ctx context.Context, projectID, serverID, attachmentID string) error {
	return c.do(ctx, "detach volume", http.MethodDelete, joinURL(c.computeURL, projectID, "servers", serverID, "os-volume_attachments", attachmentID), nil, nil, http.StatusAccepted, http.StatusNoContent)
}
