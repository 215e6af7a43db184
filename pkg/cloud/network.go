// SPDX-FileCopyrightText: 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package cloud

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// ListNetworks returns the networks visible to the project. The network
// service scopes by query parameter, not by path segment like the others.
func (c *Client) ListNetworks(ctx context.Context, projectID string) (json.RawMessage, error) {
	var raw json.RawMessage
	target := c.networkURL + "/networks?project_id=" + url.QueryEscape(projectID)
	err := c.do(ctx, "list networks", http.MethodGet, target, nil, &raw, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return unwrap(raw, "networks"), nil
}
