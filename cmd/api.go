package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"labsys.dev/lab-control/internal/api"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Run the REST API server",
	Long: `Run the REST API server that:
- Accepts sensor readings pushed by the ESP32 controller
- Serves relay commands and schedules the device polls for
- Serves the authenticated management API used by the admin portal
- Persists all state to PostgreSQL`,
	RunE: runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)

	// API-specific flags
	apiCmd.Flags().Int("http-port", 8080, "HTTP server port")
	apiCmd.Flags().String("db-host", "localhost", "PostgreSQL host")
	apiCmd.Flags().Int("db-port", 5432, "PostgreSQL port")
	apiCmd.Flags().String("db-user", "postgres", "PostgreSQL user")
	apiCmd.Flags().String("db-password", "", "PostgreSQL password")
	apiCmd.Flags().String("db-name", "labcontrol", "PostgreSQL database name")
	apiCmd.Flags().String("db-sslmode", "disable", "PostgreSQL SSL mode")
	apiCmd.Flags().String("jwt-secret", "", "HMAC secret used to sign bearer tokens")
	apiCmd.Flags().Duration("token-ttl", 7*24*time.Hour, "bearer token lifetime")
	apiCmd.Flags().String("admin-username", "admin", "username of the seeded admin account")
	apiCmd.Flags().String("admin-email", "admin@lab.local", "email of the seeded admin account")
	apiCmd.Flags().String("admin-password", "", "password of the seeded admin account")

	// Bind flags to viper
	_ = viper.BindPFlag("api.http.port", apiCmd.Flags().Lookup("http-port"))
	_ = viper.BindPFlag("api.db.host", apiCmd.Flags().Lookup("db-host"))
	_ = viper.BindPFlag("api.db.port", apiCmd.Flags().Lookup("db-port"))
	_ = viper.BindPFlag("api.db.user", apiCmd.Flags().Lookup("db-user"))
	_ = viper.BindPFlag("api.db.password", apiCmd.Flags().Lookup("db-password"))
	_ = viper.BindPFlag("api.db.name", apiCmd.Flags().Lookup("db-name"))
	_ = viper.BindPFlag("api.db.sslmode", apiCmd.Flags().Lookup("db-sslmode"))
	_ = viper.BindPFlag("api.jwt.secret", apiCmd.Flags().Lookup("jwt-secret"))
	_ = viper.BindPFlag("api.jwt.token_ttl", apiCmd.Flags().Lookup("token-ttl"))
	_ = viper.BindPFlag("api.admin.username", apiCmd.Flags().Lookup("admin-username"))
	_ = viper.BindPFlag("api.admin.email", apiCmd.Flags().Lookup("admin-email"))
	_ = viper.BindPFlag("api.admin.password", apiCmd.Flags().Lookup("admin-password"))
}

func runAPI(_ *cobra.Command, _ []string) error {
	logger := GetLogger()
	logger.Info("starting api service")

	// Create API configuration from viper
	config := &api.ServerConfig{
		Logger:        logger,
		HTTPPort:      viper.GetInt("api.http.port"),
		DBHost:        viper.GetString("api.db.host"),
		DBPort:        viper.GetInt("api.db.port"),
		DBUser:        viper.GetString("api.db.user"),
		DBPassword:    viper.GetString("api.db.password"),
		DBName:        viper.GetString("api.db.name"),
		DBSSLMode:     viper.GetString("api.db.sslmode"),
		JWTSecret:     viper.GetString("api.jwt.secret"),
		TokenTTL:      viper.GetDuration("api.jwt.token_ttl"),
		AdminUsername: viper.GetString("api.admin.username"),
		AdminEmail:    viper.GetString("api.admin.email"),
		AdminPassword: viper.GetString("api.admin.password"),
	}

	// Create and run server
	server, err := api.NewServer(config)
	if err != nil {
		logger.Error("failed to create api server", "error", err)
		return err
	}

	logger.Info("api server configuration",
		"http_port", config.HTTPPort,
		"db_host", config.DBHost,
		"db_port", config.DBPort,
		"db_name", config.DBName,
		"token_ttl", config.TokenTTL,
		"admin_email", config.AdminEmail,
	)

	if err := server.Run(context.Background()); err != nil {
		logger.Error("api server error", "error", err)
		return err
	}

	logger.Info("api server stopped")
	return nil
}
