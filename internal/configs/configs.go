/*
Package configs is responsible for loading and parsing the application's configuration settings.

It configures the client by reading operating system environment variables,
including the running environment, the REST and live-transport endpoints,
the bearer token, and outgoing send pacing.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig contains all configuration parameters required for the client to run.
// All configuration values are loaded from environment variables.
type AppConfig struct {
	// General Settings
	Environment string

	// Endpoint Settings
	APIBaseURL string
	WSBaseURL  string

	// Security Settings
	AuthToken string

	// Send pacing (token bucket): messages per second and burst capacity.
	SendRate  float64
	SendBurst int

	// HTTPTimeout bounds every request/response call (history, roster).
	HTTPTimeout time.Duration
}

// LoadConfig reads and parses the client configuration from environment variables.
// It provides default values for each configuration item and performs necessary type
// conversions and validation. It returns a pointer to the AppConfig struct and any
// error encountered.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Settings ---
	// Environment
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	// --- Endpoint Settings ---
	// APIBaseURL
	cfg.APIBaseURL = strings.TrimRight(os.Getenv("API_BASE_URL"), "/")
	if cfg.APIBaseURL == "" {
		if cfg.Environment == "development" {
			cfg.APIBaseURL = "http://localhost:8080"
		} else {
			return nil, fmt.Errorf("API_BASE_URL environment variable is required in %s environment", cfg.Environment)
		}
	}

	// WSBaseURL
	cfg.WSBaseURL = strings.TrimRight(os.Getenv("WS_BASE_URL"), "/")
	if cfg.WSBaseURL == "" {
		if cfg.Environment == "development" {
			cfg.WSBaseURL = "ws://localhost:8080"
		} else {
			return nil, fmt.Errorf("WS_BASE_URL environment variable is required in %s environment", cfg.Environment)
		}
	}
	if !strings.HasPrefix(cfg.WSBaseURL, "ws://") && !strings.HasPrefix(cfg.WSBaseURL, "wss://") {
		return nil, fmt.Errorf("WS_BASE_URL must use the ws:// or wss:// scheme, got %q", cfg.WSBaseURL)
	}

	// --- Security Settings ---
	// AuthToken
	cfg.AuthToken = os.Getenv("AUTH_TOKEN")
	if cfg.AuthToken == "" {
		return nil, fmt.Errorf("AUTH_TOKEN environment variable is required to identify the current user")
	}

	// --- Send Pacing ---
	// SendRate
	rateStr := os.Getenv("SEND_RATE")
	if rateStr == "" {
		rateStr = "1"
	}
	sendRate, err := strconv.ParseFloat(rateStr, 64)
	if err != nil || sendRate <= 0 {
		return nil, fmt.Errorf("invalid SEND_RATE environment variable: %q", rateStr)
	}
	cfg.SendRate = sendRate

	// SendBurst
	burstStr := os.Getenv("SEND_BURST")
	if burstStr == "" {
		burstStr = "5"
	}
	sendBurst, err := strconv.Atoi(burstStr)
	if err != nil || sendBurst < 1 {
		return nil, fmt.Errorf("invalid SEND_BURST environment variable: %q", burstStr)
	}
	cfg.SendBurst = sendBurst

	// --- HTTP Timeout ---
	timeoutStr := os.Getenv("HTTP_TIMEOUT_SECONDS")
	if timeoutStr == "" {
		timeoutStr = "15"
	}
	timeoutSecs, err := strconv.Atoi(timeoutStr)
	if err != nil || timeoutSecs < 1 {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT_SECONDS environment variable: %q", timeoutStr)
	}
	cfg.HTTPTimeout = time.Duration(timeoutSecs) * time.Second

	return cfg, nil
}
