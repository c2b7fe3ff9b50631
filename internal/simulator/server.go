package simulator

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"labsys.dev/lab-control/pkg/metrics"
)

// ServerConfig holds the configuration for the simulator server.
type ServerConfig struct {
	// Logger is the structured logger
	Logger *slog.Logger
	// APIBaseURL is the base URL of the lab-control API
	APIBaseURL string
	// Interval is the time between sensor pushes
	Interval time.Duration
	// DeviceCount is the number of concurrent simulated devices
	DeviceCount int
	// Metrics is the optional Prometheus metrics collector
	Metrics *metrics.SimulatorMetrics
}

// Server manages multiple simulated devices.
type Server struct {
	logger  *slog.Logger
	config  *ServerConfig
	devices []*device
	wg      sync.WaitGroup
	metrics *metrics.SimulatorMetrics
}

// device bundles one simulated controller's identity, generator and state.
type device struct {
	identity  *DeviceIdentity
	generator *ReadingGenerator
	client    *Client
	lastRelay *RelayCommands
}

var (
	errInvalidDeviceCount = errors.New("device count must be greater than 0")
	errInvalidInterval    = errors.New("interval must be greater than 0")
	errAPIURLRequired     = errors.New("API base URL is required")
	errLoggerRequired     = errors.New("logger is required")
)

// NewServer creates a new simulator server with the given configuration.
func NewServer(cfg *ServerConfig) (*Server, error) {
	if cfg.DeviceCount <= 0 {
		return nil, errInvalidDeviceCount
	}

	if cfg.Interval <= 0 {
		return nil, errInvalidInterval
	}

	if cfg.APIBaseURL == "" {
		return nil, errAPIURLRequired
	}

	if cfg.Logger == nil {
		return nil, errLoggerRequired
	}

	s := &Server{
		config:  cfg,
		devices: make([]*device, 0, cfg.DeviceCount),
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}

	for i := 0; i < cfg.DeviceCount; i++ {
		identity := NewDeviceIdentity()

		client := NewClient(cfg.APIBaseURL, cfg.Logger.With(
			slog.String("component", "api-client"),
			slog.Int("device", i),
		))

		s.devices = append(s.devices, &device{
			identity:  identity,
			generator: NewReadingGenerator(),
			client:    client,
		})

		s.logger.Info("created simulated device",
			"device", i,
			"device_id", identity.DeviceID,
			"location", identity.Location,
			"firmware", identity.Firmware,
		)
	}

	return s, nil
}

// Run starts all devices and blocks until shutdown signal is received.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	for i, dev := range s.devices {
		s.wg.Add(1)
		go s.runDevice(ctx, i, dev)
	}

	s.logger.Info("simulator started",
		"device_count", len(s.devices),
		"interval", s.config.Interval,
		"api_url", s.config.APIBaseURL,
	)

	select {
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		cancel()
	case <-ctx.Done():
		s.logger.Info("context canceled, shutting down")
	}

	s.logger.Info("waiting for devices to shut down...")
	s.wg.Wait()

	s.logger.Info("simulator stopped")
	return nil
}

// runDevice runs one simulated controller: push a reading every interval,
// then poll commands and schedules the way the firmware loop does.
func (s *Server) runDevice(ctx context.Context, id int, dev *device) {
	defer s.wg.Done()

	if s.metrics != nil {
		s.metrics.ActiveDevices.Inc()
		defer s.metrics.ActiveDevices.Dec()
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	deviceLogger := s.logger.With(slog.Int("device", id))
	deviceLogger.Info("device started")

	for {
		select {
		case <-ctx.Done():
			deviceLogger.Info("device shutting down")
			return

		case <-ticker.C:
			if err := s.cycle(ctx, dev, deviceLogger); err != nil {
				deviceLogger.Error("device cycle failed", "error", err)
				// Keep running, the API may come back
				continue
			}

			deviceLogger.Debug("device cycle completed")
		}
	}
}

// cycle performs one firmware iteration: push, poll, gate.
func (s *Server) cycle(ctx context.Context, dev *device, logger *slog.Logger) error {
	now := time.Now()

	reading := dev.generator.Reading(now)
	if err := s.pushReading(ctx, dev, reading); err != nil {
		return err
	}

	commands, err := s.pollRelays(ctx, dev)
	if err != nil {
		return err
	}

	prayerWindows, err := dev.client.PrayerWindows(ctx)
	if err != nil {
		if s.metrics != nil {
			s.metrics.PushFailures.WithLabelValues("prayer-times").Inc()
		}
		return err
	}

	workingHours, err := dev.client.WorkingHours(ctx)
	if err != nil {
		if s.metrics != nil {
			s.metrics.PushFailures.WithLabelValues("working-hours").Inc()
		}
		return err
	}

	allowed := OutputsAllowed(now, workingHours, prayerWindows)

	if dev.lastRelay != nil && *dev.lastRelay != *commands {
		if s.metrics != nil {
			s.metrics.RelayStateFlips.Inc()
		}
		logger.Info("relay commands changed",
			"relay1", commands.Relay1,
			"relay2", commands.Relay2,
			"relay3", commands.Relay3,
			"relay4", commands.Relay4,
			"outputs_allowed", allowed,
		)
	}
	dev.lastRelay = commands

	logger.Debug("firmware gate evaluated",
		"outputs_allowed", allowed,
		"in_working_hours", InWorkingHours(now, workingHours),
		"in_prayer_window", InAnyPrayerWindow(now, prayerWindows),
	)

	return nil
}

func (s *Server) pushReading(ctx context.Context, dev *device, reading *SensorReading) error {
	start := time.Now()
	err := dev.client.PushReading(ctx, reading)
	if s.metrics != nil {
		s.metrics.PollDuration.WithLabelValues("sensors").Observe(time.Since(start).Seconds())
		if err != nil {
			s.metrics.PushFailures.WithLabelValues("sensors").Inc()
		} else {
			s.metrics.ReadingsPushed.Inc()
		}
	}
	return err
}

func (s *Server) pollRelays(ctx context.Context, dev *device) (*RelayCommands, error) {
	start := time.Now()
	commands, err := dev.client.RelayCommands(ctx)
	if s.metrics != nil {
		s.metrics.PollDuration.WithLabelValues("relays").Observe(time.Since(start).Seconds())
		if err != nil {
			s.metrics.PushFailures.WithLabelValues("relays").Inc()
		}
	}
	return commands, err
}
