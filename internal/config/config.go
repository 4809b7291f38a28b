package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"channelguard/internal/constants"
	"channelguard/internal/models"
	"channelguard/internal/security"
)

var (
	ErrMissingBotToken = models.ConfigError{Message: "missing Telegram bot token"}
	ErrInvalidMode     = models.ConfigError{Message: "telegram mode must be \"polling\" or \"webhook\""}
)

// LoadConfig reads the JSON config file, applies environment overrides, and
// validates the result.
func LoadConfig(path string) (*models.Config, error) {
	if err := security.ValidateFilePath(path); err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config models.Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	applyEnvironmentOverrides(&config)
	applyDefaults(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func applyEnvironmentOverrides(c *models.Config) {
	if token := os.Getenv("CHANNELGUARD_BOT_TOKEN"); token != "" {
		c.Telegram.BotToken = token
	}
	if mode := os.Getenv("CHANNELGUARD_MODE"); mode != "" {
		c.Telegram.Mode = mode
	}
	if dbPath := os.Getenv("CHANNELGUARD_DB_PATH"); dbPath != "" {
		c.Database.Path = dbPath
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
}

func applyDefaults(c *models.Config) {
	if c.Telegram.Mode == "" {
		c.Telegram.Mode = "polling"
	}
	if c.Telegram.PollTimeoutSec <= 0 {
		c.Telegram.PollTimeoutSec = constants.DefaultPollTimeoutSec
	}
	if c.Retry.InitialBackoffMs <= 0 {
		c.Retry.InitialBackoffMs = constants.DefaultBackoffInitialMs
	}
	if c.Retry.MaxBackoffMs <= 0 {
		c.Retry.MaxBackoffMs = constants.DefaultBackoffMaxMs
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = constants.DefaultBackoffMaxAttempts
	}
	if c.Server.Port <= 0 {
		c.Server.Port = constants.DefaultServerPort
	}
}

func validate(c *models.Config) error {
	if c.Telegram.BotToken == "" {
		return ErrMissingBotToken
	}
	if c.Telegram.Mode != "polling" && c.Telegram.Mode != "webhook" {
		return ErrInvalidMode
	}
	return nil
}
