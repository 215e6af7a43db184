// SPDX-FileCopyrightText: 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// ListServers returns the project's servers with details.
func (c *Client) ListServers(ctx context.Context, projectID string) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.do(ctx, "list servers", http.MethodGet, joinURL(c.computeURL, projectID, "servers", "detail"), nil, &raw, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return unwrap(raw, "servers"), nil
}

// ListFlavors returns the flavors visible to the project.
func (c *Client) ListFlavors(ctx context.Context, projectID string) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.do(ctx, "list flavors", http.MethodGet, joinURL(c.computeURL, projectID, "flavors", "detail"), nil, &raw, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return unwrap(raw, "flavors"), nil
}

// CreateServer boots a new server. The caller-supplied network ids are mapped
// into the per-network reference structure the compute service expects.
func (c *Client) CreateServer(ctx context.Context, projectID, name, imageRef, flavorRef string, networkIDs []string) (json.RawMessage, error) {
	networks := make([]map[string]any, len(networkIDs))
	for i, id := range networkIDs {
		networks[i] = map[string]any{"uuid": id}
	}
	body := map[string]any{"server": map[string]any{
		"name":      name,
		"imageRef":  imageRef,
		"flavorRef": flavorRef,
		"networks":  networks,
	}}

	var raw json.RawMessage
	err := c.do(ctx, "create server", http.MethodPost, joinURL(c.computeURL, projectID, "servers"), body, &raw, http.StatusOK, http.StatusAccepted)
	if err != nil {
		return nil, err
	}
	return unwrap(raw, "server"), nil
}

// DeleteServer removes a server.
func (c *Client) DeleteServer(ctx context.Context, projectID, serverID string) error {
	return c.do(ctx, "delete server", http.MethodDelete, joinURL(c.computeURL, projectID, "servers", serverID), nil, nil, http.StatusAccepted, http.StatusNoContent)
}

// ServerAction performs one of the allowed lifecycle actions on a server.
// Anything outside {reboot, shutdown, start} is rejected before any network
// call.
func (c *Client) ServerAction(ctx context.Context, projectID, serverID, action string) error {
	var body map[string]any
	switch action {
	case "reboot":
		body = map[string]any{"reboot": map[string]any{"type": "SOFT"}}
	case "shutdown":
		body = map[string]any{"os-stop": map[string]any{}}
	case "start":
		body = map[string]any{"os-start": map[string]any{}}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	return c.do(ctx, "server action", http.MethodPost, joinURL(c.computeURL, projectID, "servers", serverID, "action"), body, nil, http.StatusAccepted)
}
