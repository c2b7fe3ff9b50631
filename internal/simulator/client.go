package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// SensorReading is the push payload in the device wire format.
type SensorReading struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	LightLevel  int     `json:"lightLevel"`
	FlameStatus int     `json:"flameStatus"`
}

// RelayCommands is the four-channel state the device polls.
type RelayCommands struct {
	Relay1 bool `json:"relay1"`
	Relay2 bool `json:"relay2"`
	Relay3 bool `json:"relay3"`
	Relay4 bool `json:"relay4"`
}

// envelope mirrors the API's uniform response shape.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to the lab-control API the way the ESP32 firmware does:
// plain HTTP, no authentication, short timeouts.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an API client for the simulator.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// PushReading sends one sensor reading to the ingest endpoint.
func (c *Client) PushReading(ctx context.Context, reading *SensorReading) error {
	body, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("failed to marshal reading: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/esp32/sensors", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to push reading: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ingest endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// RelayCommands polls the desired relay state.
func (c *Client) RelayCommands(ctx context.Context) (*RelayCommands, error) {
	var commands RelayCommands
	if err := c.get(ctx, "/esp32/relays", &commands); err != nil {
		return nil, err
	}
	return &commands, nil
}

// PrayerWindows polls the configured prayer windows.
func (c *Client) PrayerWindows(ctx context.Context) ([]PrayerWindow, error) {
	var windows []PrayerWindow
	if err := c.get(ctx, "/esp32/prayer-times", &windows); err != nil {
		return nil, err
	}
	return windows, nil
}

// WorkingHours polls the operating window. A 404 means none is configured,
// which the firmware treats as unrestricted.
func (c *Client) WorkingHours(ctx context.Context) (*WorkingHours, error) {
	var hours WorkingHours
	err := c.get(ctx, "/esp32/working-hours", &hours)
	if err != nil {
		if errNotConfigured(err) {
			return nil, nil
		}
		return nil, err
	}
	return &hours, nil
}

type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.status)
}

func errNotConfigured(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.status == http.StatusNotFound
}

// get fetches a path and unwraps the response envelope into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &statusError{status: resp.StatusCode}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode data from %s: %w", path, err)
	}
	return nil
}
