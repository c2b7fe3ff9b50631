package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"labsys.dev/lab-control/internal/auth"
	"labsys.dev/lab-control/internal/store"
	"labsys.dev/lab-control/pkg/metrics"
)

// Server represents the API HTTP server.
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
	db         *gorm.DB
	config     *ServerConfig
}

// ServerConfig holds the configuration for the Server.
type ServerConfig struct {
	Logger *slog.Logger

	// HTTP server configuration
	HTTPPort int

	// Database configuration
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Token configuration
	JWTSecret string
	TokenTTL  time.Duration

	// Seeded admin account
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// NewServer creates a new API Server instance.
func NewServer(cfg *ServerConfig) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server config cannot be nil")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.HTTPPort <= 0 {
		return nil, errors.New("HTTP port must be positive")
	}

	if cfg.DBHost == "" {
		return nil, errors.New("database host cannot be empty")
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}

	return &Server{
		logger: cfg.Logger,
		config: cfg,
	}, nil
}

// Run starts the API server and blocks until shutdown.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting api server")

	// Create context with cancellation
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Connect to database
	db, err := store.NewDB(&store.DBConfig{
		Logger:   s.logger,
		Host:     s.config.DBHost,
		Port:     s.config.DBPort,
		User:     s.config.DBUser,
		Password: s.config.DBPassword,
		DBName:   s.config.DBName,
		SSLMode:  s.config.DBSSLMode,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db

	st, err := store.New(db, s.logger)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	ttl := s.config.TokenTTL
	if ttl <= 0 {
		ttl = auth.DefaultTokenTTL
	}
	tokens, err := auth.NewTokenManager(s.config.JWTSecret, ttl)
	if err != nil {
		return fmt.Errorf("failed to create token manager: %w", err)
	}

	if err := s.seedAdmin(ctx, st); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	// Initialize metrics
	apiMetrics := metrics.NewAPIMetrics("labcontrol")

	handlers, err := NewHandlers(s.logger, st, tokens, apiMetrics)
	if err != nil {
		return fmt.Errorf("failed to create handlers: %w", err)
	}

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.HTTPPort),
		Handler:           handlers.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("starting HTTP server", "address", s.httpServer.Addr)

	// Start HTTP server in goroutine
	httpErr := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- fmt.Errorf("HTTP server error: %w", err)
		}
		close(httpErr)
	}()

	s.logger.Info("api server started successfully")

	// Wait for shutdown signal or HTTP error
	select {
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		cancel()
	case <-ctx.Done():
		s.logger.Info("context canceled")
	case err := <-httpErr:
		if err != nil {
			s.logger.Error("HTTP server error", "error", err)
			cancel()
			return err
		}
	}

	// Shutdown
	return s.Shutdown()
}

// seedAdmin creates the initial admin account when none exists. Without an
// admin password the seed is skipped and the register endpoint is the only
// way to create the first account.
func (s *Server) seedAdmin(ctx context.Context, st *store.Store) error {
	if s.config.AdminPassword == "" {
		s.logger.Warn("admin password not configured, skipping admin seed")
		return nil
	}

	hash, err := auth.HashPassword(s.config.AdminPassword)
	if err != nil {
		return err
	}

	_, err = st.SeedAdmin(ctx, s.config.AdminUsername, s.config.AdminEmail, hash)
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	s.logger.Info("shutting down api server")

	var shutdownErr error

	// Shutdown HTTP server
	if s.httpServer != nil {
		s.logger.Info("stopping HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("failed to shutdown HTTP server", "error", err)
			shutdownErr = fmt.Errorf("HTTP server shutdown error: %w", err)
		}
		s.logger.Info("HTTP server stopped")
	}

	// Close database connection
	if s.db != nil {
		s.logger.Info("closing database connection")
		if err := store.CloseDB(s.db, s.logger); err != nil {
			s.logger.Error("failed to close database connection", "error", err)
			if shutdownErr != nil {
				shutdownErr = fmt.Errorf("%w; database close error: %w", shutdownErr, err)
			} else {
				shutdownErr = fmt.Errorf("database close error: %w", err)
			}
		}
	}

	if shutdownErr != nil {
		s.logger.Error("api server shutdown completed with errors", "error", shutdownErr)
		return shutdownErr
	}

	s.logger.Info("api server shutdown completed successfully")
	return nil
}
