// SPDX-FileCopyrightText: 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package keystone

import "fmt"

// AuthenticationError means the gateway's own admin login to the identity
// service failed or returned malformed data. It is fatal to the current
// request and never cached.
type AuthenticationError struct {
	Message string
	Err     error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("admin authentication failed: %s: %s", e.Message, e.Err.Error())
	}
	return "admin authentication failed: " + e.Message
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// ProvisioningError means an identity, tenant or role-grant call failed.
// It aborts the surrounding registration/creation flow; already completed
// steps are not rolled back.
type ProvisioningError struct {
	Op  string
	Err error
}

func (e *ProvisioningError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s", e.Op, e.Err.Error())
	}
	return e.Op + " failed"
}

func (e *ProvisioningError) Unwrap() error {
	return e.Err
}
