// SPDX-FileCopyrightText: 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package cloud

import (
	"context"
	"net/http"
	"testing"

	"github.com/h2non/gock"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	computeURL = "http://compute.local/v2.1"
	volumeURL  = "http://volume.local/v3"
	networkURL = "http://network.local/v2.0"
	projectID  = "p1234567890abcdef"
)

type staticTokenSource struct {
	token string
	err   error
}

func (s *staticTokenSource) CurrentToken(ctx context.Context) (string, error) {
	return s.token, s.err
}

func setupClient(t *testing.T) *Client {
	t.Helper()
	viper.Set("cloud.compute_url", computeURL)
	viper.Set("cloud.volume_url", volumeURL)
	viper.Set("cloud.network_url", networkURL)
	return NewClient(&staticTokenSource{token: "admintok"})
}

func mocksToStrings(mocks []gock.Mock) []string {
	s := make([]string, len(mocks))
	for i, m := range mocks {
		r := m.Request()
		s[i] = r.Method + " " + r.URLStruct.String()
	}
	return s
}

func assertDone(t *testing.T) {
	t.Helper()
	assert.True(t, gock.IsDone(), "pending mocks: %v\nunmatched requests: %v", mocksToStrings(gock.Pending()), gock.GetUnmatchedRequests())
}

func TestListServers_wrappedResponse(t *testing.T) {
	defer gock.Off()
	c := setupClient(t)

	gock.New("http://compute.local").
		Get("/v2.1/"+projectID+"/servers/detail").
		MatchHeader("X-Auth-Token", "admintok").
		Reply(http.StatusOK).
		BodyString(`{"servers": [{"id": "s1"}, {"id": "s2"}]}`).
		AddHeader("Content-Type", "application/json")

	servers, err := c.ListServers(context.Background(), projectID)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id": "s1"}, {"id": "s2"}]`, string(servers))
	assertDone(t)
}

func TestListServers_bareResponse(t *testing.T) {
	defer gock.Off()
	c := setupClient(t)

	// some deployments answer with the bare collection; the caller must see
	// the identical result either way
	gock.New("http://compute.local").
		Get("/v2.1/"+projectID+"/servers/detail").
		Reply(http.StatusOK).
		BodyString(`[{"id": "s1"}, {"id": "s2"}]`).
		AddHeader("Content-Type", "application/json")

	servers, err := c.ListServers(context.Background(), projectID)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id": "s1"}, {"id": "s2"}]`, string(servers))
	assertDone(t)
}

func TestListFlavors(t *testing.T) {
	defer gock.Off()
	c := setupClient(t)

	gock.New("http://compute.local").
		Get("/v2.1/"+projectID+"/flavors/detail").
		Reply(http.StatusOK).
		BodyString(`{"flavors": [{"id": "m1.small"}]}`).
		AddHeader("Content-Type", "application/json")

	flavors, err := c.ListFlavors(context.Background(), projectID)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id": "m1.small"}]`, string(flavors))
	assertDone(t)
}

func TestCreateServer(t *testing.T) {
	defer gock.Off()
	c := setupClient(t)

	gock.New("http://compute.local").
		Post("/v2.1/"+projectID+"/servers").
		JSON(map[string]any{"server": map[string]any{
			"name":      "web-1",
			"imageRef":  "img-1",
			"flavorRef": "m1.small",
			"networks":  []any{map[string]any{"uuid": "n1"}, map[string]any{"uuid": "n2"}},
		}}).
		Reply(http.StatusAccepted).
		BodyString(`{"server": {"id": "s1"}}`).
		AddHeader("Content-Type", "application/json")

	server, err := c.CreateServer(context.Background(), projectID, "web-1", "img-1", "m1.small", []string{"n1", "n2"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": "s1"}`, string(server))
	assertDone(t)
}

func TestServerAction_payloads(t *testing.T) {
	cases := []struct {
		action string
		body   map[string]any
	}{
		{"reboot", map[string]any{"reboot": map[string]any{"type": "SOFT"}}},
		{"shutdown", map[string]any{"os-stop": map[string]any{}}},
		{"start", map[string]any{"os-start": map[string]any{}}},
	}
	for _, tc := range cases {
		t.Run(tc.action, func(t *testing.T) {
			defer gock.Off()
			c := setupClient(t)

			gock.New("http://compute.local").
				Post("/v2.1/" + projectID + "/servers/s1/action").
				JSON(tc.body).
				Reply(http.StatusAccepted)

			require.NoError(t, c.ServerAction(context.Background(), projectID, "s1", tc.action))
			assertDone(t)
		})
	}
}

func TestServerAction_invalidAction(t *testing.T) {
	defer gock.Off()
	gock.Intercept()
	c := setupClient(t)

	err := c.ServerAction(context.Background(), projectID, "s1", "poweroff")
	require.ErrorIs(t, err, ErrInvalidAction)
	// rejected before any network call
	assert.Empty(t, gock.GetUnmatchedRequests())
}

func TestDeleteServer(t *testing.T) {
	defer gock.Off()
	c := setupClient(t)

	gock.New("http://compute.local").
		Delete("/v2.1/" + projectID + "/servers/s1").
		Reply(http.StatusNoContent)

	require.NoError(t, c.DeleteServer(context.Background(), projectID, "s1"))
	assertDone(t)
}

func TestListVolumes_normalizationMatchesBare(t *testing.T) {
	defer gock.Off()
	c := setupClient(t)

	gock.New("http://volume.local").
		Get("/v3/"+projectID+"/volumes").
		Reply(http.StatusOK).
		BodyString(`{"volumes": [{"id": "v1"}]}`).
		AddHeader("Content-Type", "application/json")
	gock.New("http://volume.local").
		Get("/v3/"+projectID+"/volumes").
		Reply(http.StatusOK).
		BodyString(`[{"id": "v1"}]`).
		AddHeader("Content-Type", "application/json")

	wrapped, err := c.ListVolumes(context.Background(), projectID)
	require.NoError(t, err)
	bare, err := c.ListVolumes(context.Background(), projectID)
	require.NoError(t, err)
	assert.JSONEq(t, string(wrapped), string(bare))
	assertDone(t)
}

func TestCreateVolume(t *testing.T) {
	defer gock.Off()
	c := setupClient(t)

	gock.New("http://volume.local").
		Post("/v3/"+projectID+"/volumes").
		JSON(map[string]any{"volume": map[string]any{"size": 20, "name": "data"}}).
		Reply(http.StatusAccepted).
		BodyString(`{"volume": {"id": "v1", "size": 20}}`).
		AddHeader("Content-Type", "application/json")

	volume, err := c.CreateVolume(context.Background(), projectID, 20, "data")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": "v1", "size": 20}`, string(volume))
	assertDone(t)
}

func TestAttachVolume(t *testing.T) {
	defer gock.Off()
	c := setupClient(t)

	gock.New("http://compute.local").
		Post("/v2.1/"+projectID+"/servers/s1/os-volume_attachments").
		JSON(map[string]any{"volumeAttachment": map[string]any{"volumeId": "v1", "device": "/dev/vdb"}}).
		Reply(http.StatusOK).
		BodyString(`{"volumeAttachment": {"id": "att1"}}`).
		AddHeader("Content-Type", "application/json")

	att, err := c.AttachVolume(context.Background(), projectID, "s1", "v1", "/dev/vdb")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": "att1"}`, string(att))
	assertDone(t)
}

func TestDetachVolume(t *testing.T) {
	defer gock.Off()
	c := setupClient(t)

	gock.New("http://compute.local").
		Delete("/v2.1/" + projectID + "/servers/s1/os-volume_attachments/att1").
		Reply(http.StatusAccepted)

	require.NoError(t, c.DetachVolume(context.Background(), projectID, "s1", "att1"))
	assertDone(t)
}

func TestListNetworks_queryScoped(t *testing.T) {
	defer gock.Off()
	c := setupClient(t)

	gock.New("http://network.local").
		Get("/v2.0/networks").
		MatchParam("project_id", projectID).
		Reply(http.StatusOK).
		BodyString(`{"networks": [{"id": "n1"}]}`).
		AddHeader("Content-Type", "application/json")

	networks, err := c.ListNetworks(context.Background(), projectID)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id": "n1"}]`, string(networks))
	assertDone(t)
}

func TestUpstreamFailureCarriesStatusAndBody(t *testing.T) {
	defer gock.Off()
	c := setupClient(t)

	gock.New("http://compute.local").
		Get("/v2.1/" + projectID + "/servers/detail").
		Reply(http.StatusInternalServerError).
		BodyString(`{"computeFault": {"message": "boom"}}`)

	_, err := c.ListServers(context.Background(), projectID)
	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, http.StatusInternalServerError, opErr.Status)
	assert.Contains(t, opErr.Body, "boom")
	assertDone(t)
}

func TestTokenSourceFailurePropagates(t *testing.T) {
	defer gock.Off()
	gock.Intercept()
	viper.Set("cloud.compute_url", computeURL)
	c := NewClient(&staticTokenSource{err: assert.AnError})

	_, err := c.ListServers(context.Background(), projectID)
	require.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, gock.GetUnmatchedRequests())
}
