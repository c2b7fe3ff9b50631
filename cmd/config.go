// Package main provides the unified CLI entry point for the lab-control services.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"labsys.dev/lab-control/pkg/logger"
)

// InitConfig initializes Viper configuration.
// A .env file in the working directory is loaded first (the deployment
// convention carried over from the original backend), then config files
// (config.yaml) and LAB_CONTROL_* environment variables.
func InitConfig(cfgFile string) error {
	// Missing .env is fine; env vars and config files still apply.
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in current directory and /etc/lab-control/
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/lab-control/")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Environment variables
	viper.SetEnvPrefix("LAB_CONTROL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		var configNotFoundErr viper.ConfigFileNotFoundError
		if errors.As(err, &configNotFoundErr) {
			// Config file not found; rely on env vars and defaults
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// GetLogger creates a slog.Logger based on configuration.
func GetLogger() *slog.Logger {
	cfg := logger.DefaultConfig()
	cfg.Level = logger.ParseLevel(viper.GetString("log.level"))
	return logger.New(cfg)
}
