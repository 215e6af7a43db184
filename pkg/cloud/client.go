// SPDX-FileCopyrightText: 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

// Package cloud is the stateless resource gateway: it translates
// caller-verified (project, resource, operation) triples into scoped calls
// against the compute, volume and network sub-services, authorized with the
// shared admin token.
package cloud

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gophercloud/gophercloud/v2"
	"github.com/spf13/viper"
)

// TokenSource hands out a valid admin token for outbound platform calls.
// Implemented by the keystone driver.
type TokenSource interface {
	CurrentToken(ctx context.Context) (string, error)
}

// Client issues project-scoped calls against the platform sub-services. It
// holds no per-request state; the external project id is passed into every
// call by a caller that has already verified ownership.
type Client struct {
	provider   *gophercloud.ProviderClient
	computeURL string
	volumeURL  string
	networkURL string
	tokens     TokenSource
}

// NewClient builds the gateway from the cloud.* configuration section.
func NewClient(tokens TokenSource) *Client {
	return &Client{
		provider: &gophercloud.ProviderClient{
			HTTPClient: http.Client{Timeout: viper.GetDuration("cloud.request_timeout")},
		},
		computeURL: strings.TrimSuffix(viper.GetString("cloud.compute_url"), "/"),
		volumeURL:  strings.TrimSuffix(viper.GetString("cloud.volume_url"), "/"),
		networkURL: strings.TrimSuffix(viper.GetString("cloud.network_url"), "/"),
		tokens:     tokens,
	}
}

func joinURL(root string, parts ...string) string {
	return root + "/" + strings.Join(parts, "/")
}

// do performs one admin-authorized round-trip. One call, one outcome: any
// non-2xx answer surfaces as an OperationError, nothing is retried here.
func (c *Client) do(ctx context.Context, op, method, url string, body any, out *json.RawMessage, okCodes ...int) error {
	token, err := c.tokens.CurrentToken(ctx)
	if err != nil {
		return err
	}

	opts := &gophercloud.RequestOpts{
		MoreHeaders: map[string]string{"X-Auth-Token": token},
		OkCodes:     okCodes,
	}
	if body != nil {
		opts.JSONBody = body
	}
	if out != nil {
		opts.JSONResponse = out
	}

	resp, err := c.provider.Request(ctx, method, url, opts)
	if err != nil {
		return wrapUpstream(op, err)
	}
	resp.Body.Close()
	return nil
}

// unwrap resolves the two response shapes the sub-services are known to
// return: a wrapper object carrying the payload under a named field, or the
// bare payload itself. Callers always see the unwrapped form.
func unwrap(raw json.RawMessage, field string) json.RawMessage {
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return raw
	}
	if inner, ok := wrapper[field]; ok {
		return inner
	}
	return raw
}
