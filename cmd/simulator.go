package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"labsys.dev/lab-control/internal/simulator"
)

var simulatorCmd = &cobra.Command{
	Use:   "simulator",
	Short: "Run the ESP32 device simulator",
	Long: `Run the device simulator that:
- Generates synthetic sensor readings (temperature, humidity, light, flame)
- Pushes them to the API the way the ESP32 firmware does
- Polls relay commands, prayer times and working hours
- Applies the firmware's time-window gating and logs the outcome`,
	RunE: runSimulator,
}

func init() {
	rootCmd.AddCommand(simulatorCmd)

	// Simulator-specific flags
	simulatorCmd.Flags().String("api-url", "http://localhost:8080", "base URL of the lab-control API")
	simulatorCmd.Flags().Duration("interval", 5*time.Second, "interval between sensor pushes")
	simulatorCmd.Flags().Int("device-count", 1, "number of concurrent simulated devices")

	// Bind flags to viper
	_ = viper.BindPFlag("simulator.api_url", simulatorCmd.Flags().Lookup("api-url"))
	_ = viper.BindPFlag("simulator.interval", simulatorCmd.Flags().Lookup("interval"))
	_ = viper.BindPFlag("simulator.device_count", simulatorCmd.Flags().Lookup("device-count"))
}

func runSimulator(_ *cobra.Command, _ []string) error {
	logger := GetLogger()
	logger.Info("starting simulator service")

	// Create simulator configuration from viper
	config := &simulator.ServerConfig{
		Logger:      logger,
		APIBaseURL:  viper.GetString("simulator.api_url"),
		Interval:    viper.GetDuration("simulator.interval"),
		DeviceCount: viper.GetInt("simulator.device_count"),
	}

	// Create and run server
	server, err := simulator.NewServer(config)
	if err != nil {
		logger.Error("failed to create simulator server", "error", err)
		return err
	}

	logger.Info("simulator configuration",
		"api_url", config.APIBaseURL,
		"interval", config.Interval,
		"device_count", config.DeviceCount,
	)

	if err := server.Run(context.Background()); err != nil {
		logger.Error("simulator error", "error", err)
		return err
	}

	logger.Info("simulator stopped")
	return nil
}
