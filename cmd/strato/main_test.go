// SPDX-FileCopyrightText: 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestInitConfigEnvBindings(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	t.Setenv("OS_AUTH_URL", "http://keystone.local/v3")
	t.Setenv("JWT_ACCESS_SECRET", "s1")
	t.Setenv("JWT_ACCESS_EXPIRATION", "5m")
	t.Setenv("JWT_REFRESH_EXPIRATION", "72h")
	t.Setenv("STRATO_DB_DRIVER", "postgres")

	initConfig()

	assert.Equal(t, "http://keystone.local/v3", viper.GetString("keystone.auth_url"))
	assert.Equal(t, "s1", viper.GetString("auth.access_secret"))
	assert.Equal(t, 5*time.Minute, viper.GetDuration("auth.access_lifetime"))
	assert.Equal(t, 72*time.Hour, viper.GetDuration("auth.refresh_lifetime"))
	assert.Equal(t, "postgres", viper.GetString("db.driver"))
}

func TestInitConfigDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	initConfig()

	assert.Equal(t, "0.0.0.0:4000", viper.GetString("api.bind_address"))
	assert.Equal(t, 15*time.Minute, viper.GetDuration("auth.access_lifetime"))
	assert.Equal(t, 168*time.Hour, viper.GetDuration("auth.refresh_lifetime"))
	assert.Equal(t, "member", viper.GetString("keystone.default_role"))
}
