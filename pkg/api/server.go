// SPDX-FileCopyrightText: 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

// Package api is the HTTP boundary of the gateway. It authenticates callers,
// enforces project ownership and maps the core error taxonomy onto transport
// status codes; all cloud semantics live in the packages below it.
package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/spf13/viper"

	"github.com/sapcc/go-bits/logg"

	"github.com/strato-cloud/strato/pkg/auth"
	"github.com/strato-cloud/strato/pkg/cloud"
	"github.com/strato-cloud/strato/pkg/keystone"
	"github.com/strato-cloud/strato/pkg/registry"
)

// gateway is the slice of the cloud client the handlers use.
type gateway interface {
	ListServers(ctx context.Context, projectID string) (json.RawMessage, error)
	CreateServer(ctx context.Context, projectID, name, imageRef, flavorRef string, networkIDs []string) (json.RawMessage, error)
	DeleteServer(ctx context.Context, projectID, serverID string) error
	ServerAction(ctx context.Context, projectID, serverID, action string) error
	ListFlavors(ctx context.Context, projectID string) (json.RawMessage, error)
	ListNetworks(ctx context.Context, projectID string) (json.RawMessage, error)
	ListVolumes(ctx context.Context, projectID string) (json.RawMessage, error)
	CreateVolume(ctx context.Context, projectID string, size int, name string) (json.RawMessage, error)
	DeleteVolume(ctx context.Context, projectID, volumeID string) error
	AttachVolume(ctx context.Context, projectID, serverID, volumeID, device string) (json.RawMessage, error)
	DetachVolume(ctx context.Context, projectID, serverID, attachmentID string) error
}

// v1 bundles the collaborators of the versioned API.
type v1 struct {
	identity keystone.Driver
	cloud    gateway
	store    registry.Store
	guard    *auth.Guard
	verifier *auth.Verifier
}

// Server initializes all drivers and serves the API until the listener fails.
func Server(ctx context.Context) error {
	store, err := registry.Open(viper.GetString("db.driver"), viper.GetString("db.dsn"))
	if err != nil {
		return err
	}

	identity := keystone.NewDriver()
	api := &v1{
		identity: identity,
		cloud:    cloud.NewClient(identity),
		store:    store,
		guard:    auth.NewGuard(store),
		verifier: auth.NewVerifier(),
	}

	handler := cors.New(cors.Options{
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
	}).Handler(setupRouter(api))

	bindAddress := viper.GetString("api.bind_address")
	logg.Info("listening on %s", bindAddress)
	server := &http.Server{
		Addr:        bindAddress,
		Handler:     handler,
		ReadTimeout: viper.GetDuration("api.read_timeout"),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	return server.ListenAndServe()
}

// setupRouter wires the main router. Registration and login are open; every
// resource route runs behind the bearer middleware and the ownership guard.
func setupRouter(api *v1) http.Handler {
	mainRouter := mux.NewRouter()
	mainRouter.Use(requestIDMiddleware)

	mainRouter.Methods(http.MethodGet).Path("/healthz").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ReturnJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mainRouter.Handle("/metrics", promhttp.Handler())

	apiRouter := mainRouter.PathPrefix("/api").Subrouter()

	apiRouter.Methods(http.MethodPost).Path("/auth/register").HandlerFunc(api.register)
	apiRouter.Methods(http.MethodPost).Path("/auth/login").HandlerFunc(api.login)
	apiRouter.Methods(http.MethodPost).Path("/auth/refresh").HandlerFunc(api.refresh)

	apiRouter.Methods(http.MethodGet).Path("/projects").HandlerFunc(api.authenticate(api.listProjects))
	apiRouter.Methods(http.MethodPost).Path("/projects").HandlerFunc(api.authenticate(api.createProject))

	apiRouter.Methods(http.MethodGet).Path("/servers/{projectId}").HandlerFunc(api.authenticate(api.listServers))
	apiRouter.Methods(http.MethodPost).Path("/servers/{projectId}").HandlerFunc(api.authenticate(api.createServer))
	apiRouter.Methods(http.MethodGet).Path("/servers/{projectId}/flavors").HandlerFunc(api.authenticate(api.listFlavors))
	apiRouter.Methods(http.MethodGet).Path("/servers/{projectId}/networks").HandlerFunc(api.authenticate(api.listNetworks))
	apiRouter.Methods(http.MethodPost).Path("/servers/{projectId}/{serverId}/action").HandlerFunc(api.authenticate(api.serverAction))
	apiRouter.Methods(http.MethodDelete).Path("/servers/{projectId}/{serverId}").HandlerFunc(api.authenticate(api.deleteServer))

	apiRouter.Methods(http.MethodGet).Path("/volumes/{projectId}").HandlerFunc(api.authenticate(api.listVolumes))
	apiRouter.Methods(http.MethodPost).Path("/volumes/{projectId}").HandlerFunc(api.authenticate(api.createVolume))
	apiRouter.Methods(http.MethodDelete).Path("/volumes/{projectId}/{volumeId}").HandlerFunc(api.authenticate(api.deleteVolume))
	apiRouter.Methods(http.MethodPost).Path("/volumes/{projectId}/{serverId}/attach").HandlerFunc(api.authenticate(api.attachVolume))
	apiRouter.Methods(http.MethodDelete).Path("/volumes/{projectId}/{serverId}/attach/{attachmentId}").HandlerFunc(api.authenticate(api.detachVolume))

	return mainRouter
}
