package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Load reads, strictly decodes, and validates the config file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	jb, _, err := coerceToJSONBytes(path, b)
	if err != nil {
		return nil, err
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("invalid config: trailing data")
		}
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints that the decoder cannot.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.TasksDir) == "" {
		return errors.New("tasks_dir is required")
	}
	if strings.TrimSpace(c.API.UserID) == "" {
		return errors.New("api.user_id is required")
	}
	if strings.TrimSpace(c.API.APIToken) == "" {
		return errors.New("api.api_token is required")
	}
	if c.API.RatePerMin < 0 {
		return errors.New("api.rate_per_min must be >= 0")
	}
	if _, err := ParseDurationField("api.timeout", c.API.Timeout); err != nil {
		return err
	}
	if _, err := ParseDurationField("history.busy_timeout", c.History.BusyTimeout); err != nil {
		return err
	}
	if _, err := c.Zone(); err != nil {
		return err
	}
	if c.Notify.Enabled {
		if strings.TrimSpace(c.Notify.Token) == "" || c.Notify.ChatID == 0 {
			return errors.New("notify requires token and chat_id when enabled")
		}
	}
	return nil
}

// Zone resolves the fixed reference zone used for every "now" comparison.
// Defaults to UTC so due-time decisions never depend on the host locale.
func (c *Config) Zone() (*time.Location, error) {
	tz := strings.TrimSpace(c.Timezone)
	if tz == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("timezone: unknown zone %q: %w", tz, err)
	}
	return loc, nil
}
