// SPDX-FileCopyrightText: 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"

	"github.com/strato-cloud/strato/pkg/registry"
)

// Guard enforces that a caller only ever acts within projects it owns. Every
// request is re-checked; authorization decisions are never cached.
type Guard struct {
	store registry.Store
}

// NewGuard builds a guard over the registry store.
func NewGuard(store registry.Store) *Guard {
	return &Guard{store: store}
}

// ResolveOwnedProject loads the project and verifies ownership. A missing
// project and a foreign project both come back as registry.ErrNotFound, so a
// caller cannot probe for the existence of other tenants' projects.
func (g *Guard) ResolveOwnedProject(ctx context.Context, callerID, projectID uint) (*registry.Project, error) {
	project, err := g.store.FindProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != callerID {
		return nil, registry.ErrNotFound
	}
	return project, nil
}
