// SPDX-FileCopyrightText: 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package cloud

import (
	"errors"
	"fmt"

	"github.com/gophercloud/gophercloud/v2"
)

// ErrInvalidAction rejects a server action outside the allowed set before any
// network call is made.
var ErrInvalidAction = errors.New("invalid server action")

// OperationError reports a non-2xx response from a platform sub-service. The
// upstream status and body are preserved for diagnostics; nothing is retried.
type OperationError struct {
	Op     string
	Status int
	Body   string
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: upstream returned %d: %s", e.Op, e.Status, e.Body)
}

// wrapUpstream converts a transport-level error into an OperationError when
// the sub-service answered with an unexpected status, and passes every other
// failure through annotated.
func wrapUpstream(op string, err error) error {
	var unexpected gophercloud.ErrUnexpectedResponseCode
	if errors.As(err, &unexpected) {
		return &OperationError{Op: op, Status: unexpected.Actual, Body: string(unexpected.Body)}
	}
	return fmt.Errorf("%s: %w", op, err)
}
