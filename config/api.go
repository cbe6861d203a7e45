package config

import (
	"fmt"
	"net"
	"time"
)

// APIConfig defines the listen address of the dashboard API.
type APIConfig struct {
	Addr string `json:"addr"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// Validate checks the listen address.
func (c APIConfig) Validate() error {
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("api: invalid addr %q: %w", c.Addr, err)
	}
	return nil
}

// ExportConfig controls the periodic capacity export that feeds the
// metrics sinks.
type ExportConfig struct {
	// Interval between capacity snapshots, as a duration string.
	Interval string `json:"interval"`
}

// SetDefaults applies sane defaults.
func (c *ExportConfig) SetDefaults() {
	if c.Interval == "" {
		c.Interval = "5m"
	}
}

// Validate checks the interval.
func (c ExportConfig) Validate() error {
	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return fmt.Errorf("export: invalid interval: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("export: interval must be positive")
	}
	return nil
}

// IntervalDuration returns the parsed interval. Validate must have
// accepted the value first.
func (c ExportConfig) IntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.Interval)
	return d
}
