// SPDX-FileCopyrightText: 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sapcc/go-bits/logg"

	"github.com/strato-cloud/strato/pkg/api"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "strato",
	Short: "Multi-tenant control-plane gateway for an OpenStack-style cloud",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return api.Server(ctx)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config-file", "c", "", "path to the configuration file")
	rootCmd.AddCommand(serveCmd)

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	viper.SetDefault("api.bind_address", "0.0.0.0:4000")
	viper.SetDefault("api.read_timeout", "30s")
	viper.SetDefault("auth.access_lifetime", "15m")
	viper.SetDefault("auth.refresh_lifetime", "168h")
	viper.SetDefault("keystone.default_role", "member")
	viper.SetDefault("keystone.role_cache_time", "1h")
	viper.SetDefault("cloud.request_timeout", "60s")

	bindEnvs := map[string]string{
		"keystone.auth_url":     "OS_AUTH_URL",
		"keystone.username":     "OS_ADMIN_USERNAME",
		"keystone.password":     "OS_ADMIN_PASSWORD",
		"keystone.domain":       "OS_ADMIN_DOMAIN_ID",
		"keystone.project":      "OS_ADMIN_PROJECT_ID",
		"keystone.default_role": "OS_DEFAULT_ROLE_NAME",
		"cloud.compute_url":     "OS_COMPUTE_URL",
		"cloud.volume_url":      "OS_VOLUME_URL",
		"cloud.network_url":     "OS_NETWORK_URL",
		"auth.access_secret":    "JWT_ACCESS_SECRET",
		"auth.refresh_secret":   "JWT_REFRESH_SECRET",
		"auth.access_lifetime":  "JWT_ACCESS_EXPIRATION",
		"auth.refresh_lifetime": "JWT_REFRESH_EXPIRATION",
		"api.bind_address":      "STRATO_BIND_ADDRESS",
		"db.driver":             "STRATO_DB_DRIVER",
		"db.dsn":                "STRATO_DB_DSN",
	}
	for key, env := range bindEnvs {
		if err := viper.BindEnv(key, env); err != nil {
			logg.Fatal("cannot bind %s: %s", env, err.Error())
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			logg.Fatal("cannot read configuration file %s: %s", configFile, err.Error())
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logg.Fatal(err.Error())
	}
}
