// SPDX-FileCopyrightText: 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestGormConfigTranslatesDriverErrors(t *testing.T) {
	// duplicate-email detection relies on the driver's unique-constraint
	// violations being translated to gorm.ErrDuplicatedKey
	assert.True(t, gormConfig().TranslateError)
}

func TestTranslateCreateError(t *testing.T) {
	assert.NoError(t, translateCreateError(nil))
	assert.ErrorIs(t, translateCreateError(gorm.ErrDuplicatedKey), ErrDuplicateEmail)
	assert.ErrorIs(t, translateCreateError(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)), ErrDuplicateEmail)

	other := fmt.Errorf("connection reset")
	assert.Equal(t, other, translateCreateError(other))
}
