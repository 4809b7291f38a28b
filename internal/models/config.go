package models

// Config holds the application configuration
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Database DatabaseConfig `json:"database"`
	Retry    RetryConfig    `json:"retry"`
	Server   ServerConfig   `json:"server"`
	Tracing  TracingConfig  `json:"tracing"`
	LogLevel string         `json:"log_level"`
}

// TelegramConfig holds Bot API related configuration
type TelegramConfig struct {
	BotToken       string `json:"bot_token"`
	APIBaseURL     string `json:"api_base_url"`
	PollTimeoutSec int    `json:"pollTimeoutSec"`
	// Mode selects how updates arrive: "polling" (default) or "webhook".
	Mode string `json:"mode"`
}

// DatabaseConfig holds the optional audit-log database configuration.
// An empty path disables audit logging entirely.
type DatabaseConfig struct {
	Path string `json:"path"`
}

// RetryConfig holds transport retry configuration for the update poller
type RetryConfig struct {
	InitialBackoffMs int `json:"initialBackoffMs"`
	MaxBackoffMs     int `json:"maxBackoffMs"`
	MaxAttempts      int `json:"maxAttempts"`
}

// ServerConfig holds webhook-mode HTTP server configuration
type ServerConfig struct {
	Port int `json:"port"`
}

// TracingConfig holds OpenTelemetry configuration
type TracingConfig struct {
	Enabled        bool    `json:"enabled"`
	ServiceName    string  `json:"service_name"`
	ServiceVersion string  `json:"service_version"`
	Environment    string  `json:"environment"`
	OTLPEndpoint   string  `json:"otlp_endpoint"`
	SampleRate     float64 `json:"sample_rate"`
	UseStdout      bool    `json:"use_stdout"`
}

type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}
