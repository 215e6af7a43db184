// SPDX-FileCopyrightText: 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sapcc/go-bits/logg"

	"github.com/strato-cloud/strato/pkg/auth"
	"github.com/strato-cloud/strato/pkg/cloud"
	"github.com/strato-cloud/strato/pkg/keystone"
	"github.com/strato-cloud/strato/pkg/registry"
)

// utility functionality

var authFailuresCounter = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "strato_logon_failures_count", Help: "Number of logon attempts rejected due to wrong or expired credentials"})
var upstreamErrorsCounter = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "strato_upstream_errors_count", Help: "Number of errors returned by the identity or resource services"})

func init() {
	prometheus.MustRegister(authFailuresCounter, upstreamErrorsCounter)
}

// ReturnJSON is a convenience function for HTTP handlers returning JSON data.
// The `code` argument specifies the HTTP Response code, usually 200.
func ReturnJSON(w http.ResponseWriter, code int, data any) {
	payload, err := json.Marshal(&data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(payload); err != nil {
		logg.Error("writing response: %s", err.Error())
	}
}

// ReturnRawJSON forwards an upstream document without re-encoding it.
func ReturnRawJSON(w http.ResponseWriter, code int, payload json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(payload); err != nil {
		logg.Error("writing response: %s", err.Error())
	}
}

// ReturnError maps the error taxonomy of the lower layers onto HTTP status
// codes. Ownership failures surface as 404 so that callers cannot probe for
// the existence of foreign projects.
func ReturnError(w http.ResponseWriter, err error) {
	var (
		authErr *keystone.AuthenticationError
		provErr *keystone.ProvisioningError
		opErr   *cloud.OperationError
	)
	switch {
	case errors.Is(err, cloud.ErrInvalidAction):
		ReturnJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, auth.ErrInvalidToken):
		authFailuresCounter.Add(1)
		ReturnJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.Is(err, registry.ErrNotFound):
		ReturnJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, registry.ErrDuplicateEmail):
		ReturnJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.As(err, &authErr), errors.As(err, &provErr), errors.As(err, &opErr):
		upstreamErrorsCounter.Add(1)
		logg.Error("upstream failure: %s", err.Error())
		ReturnJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream service failure"})
	default:
		logg.Error("internal error: %s", err.Error())
		ReturnJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
