// SPDX-FileCopyrightText: 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sapcc/go-bits/logg"

	"github.com/strato-cloud/strato/pkg/auth"
)

// contextKey is a custom type to prevent collisions with other packages
// that might use string keys in context.Context.
type contextKey string

const (
	callerKey    contextKey = "strato.caller"
	requestIDKey contextKey = "strato.request_id"
)

// requestIDMiddleware tags every request with an id for log correlation.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		logg.Debug("request %s: %s %s", requestID, r.Method, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authenticate verifies the bearer token and stores the caller's claims in
// the request context before dispatching to the wrapped handler.
func (api *v1) authenticate(wrappedHandlerFunc http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			ReturnError(w, auth.ErrInvalidToken)
			return
		}
		claims, err := api.verifier.VerifyAccess(token)
		if err != nil {
			ReturnError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), callerKey, claims)
		wrappedHandlerFunc(w, r.WithContext(ctx))
	}
}

// callerFromContext retrieves the claims stored by the authenticate wrapper.
func callerFromContext(ctx context.Context) *auth.Claims {
	if claims, ok := ctx.Value(callerKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}
