// SPDX-FileCopyrightText: 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package keystone

import "regexp"

// Deployments configure the admin domain and project either by opaque ID or by
// human-readable name. Keystone wants them in different payload fields, so the
// distinction is made once at configuration-load time: a string that looks
// like a UUID-ish hex value (32+ chars of hex and dashes) is an ID, everything
// else is a name.
var idPattern = regexp.MustCompile(`^[0-9a-fA-F-]{32,}$`)

// ResourceRef is a domain or project identifier that carries either an ID or
// a name, never both.
type ResourceRef struct {
	id   string
	name string
}

// ParseResourceRef classifies a configured identifier as ID or name.
func ParseResourceRef(value string) ResourceRef {
	if idPattern.MatchString(value) {
		return ResourceRef{id: value}
	}
	return ResourceRef{name: value}
}

// IsID reports whether the ref carries an opaque ID.
func (r ResourceRef) IsID() bool {
	return r.id != ""
}

// ID returns the opaque ID, or "" when the ref is a name.
func (r ResourceRef) ID() string {
	return r.id
}

// Name returns the human-readable name, or "" when the ref is an ID.
func (r ResourceRef) Name() string {
	return r.name
}
