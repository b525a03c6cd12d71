package config

// Config is the application config file (YAML or JSON).
//
// All durations are Go duration strings (e.g. "10s", "1m").
type Config struct {
	API      APIConfig     `json:"api"`
	TasksDir string        `json:"tasks_dir"`
	Timezone string        `json:"timezone,omitempty"`
	Schedule string        `json:"schedule,omitempty"`
	History  HistoryConfig `json:"history,omitempty"`
	Notify   NotifyConfig  `json:"notify,omitempty"`
	Logging  LoggingConfig `json:"logging,omitempty"`
}

// APIConfig is the remote task-service session.
type APIConfig struct {
	BaseURL  string `json:"base_url,omitempty"`
	UserID   string `json:"user_id"`
	APIToken string `json:"api_token"`

	// RatePerMin caps client-side request rate; the public service
	// enforces 30 requests/min.
	RatePerMin int `json:"rate_per_min,omitempty"`

	// Timeout is the per-request HTTP deadline.
	Timeout string `json:"timeout,omitempty"`
}

// HistoryConfig configures the cycle-history store.
// Driver: "none" (default), "file", or "sqlite" (requires -tags sqlite).
type HistoryConfig struct {
	Driver      string `json:"driver,omitempty"`
	Path        string `json:"path,omitempty"`
	Retention   int    `json:"retention,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

// NotifyConfig configures optional Telegram notifications.
type NotifyConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	Token   string `json:"token,omitempty"`
	ChatID  int64  `json:"chat_id,omitempty"`
}

type LoggingConfig struct {
	Level   string        `json:"level,omitempty"`
	Console bool          `json:"console,omitempty"`
	File    LogFileConfig `json:"file,omitempty"`
}

type LogFileConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`
}
