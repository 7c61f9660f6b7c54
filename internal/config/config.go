package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/prezmon/prezmon/internal/models"
)

// Config represents the complete application configuration
type Config struct {
	Election ElectionConfig `mapstructure:"election"`
	Network  NetworkConfig  `mapstructure:"network"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ElectionConfig pins the election being monitored: source URL layout, the two
// round path tags, the round-to-round day offset, and the observation window.
type ElectionConfig struct {
	BaseURL     string     `mapstructure:"base_url"`
	Round1Tag   string     `mapstructure:"round1_tag"`
	Round2Tag   string     `mapstructure:"round2_tag"`
	Month       string     `mapstructure:"month"`
	DayOffset   int        `mapstructure:"day_offset"`
	WindowStart WindowEdge `mapstructure:"window_start"`
	WindowEnd   WindowEdge `mapstructure:"window_end"`
	HomeRegion  string     `mapstructure:"home_region"`
	Regions     []string   `mapstructure:"regions"`
}

// WindowEdge is one boundary of the observation window.
type WindowEdge struct {
	Day  int `mapstructure:"day"`
	Hour int `mapstructure:"hour"`
}

// Timestamp converts the edge to an observation timestamp.
func (e WindowEdge) Timestamp() models.ObservationTimestamp {
	return models.ObservationTimestamp{Day: e.Day, Hour: e.Hour}
}

// NetworkConfig holds HTTP fetch configuration
type NetworkConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// ScheduleConfig holds the hourly refresh alignment
type ScheduleConfig struct {
	UpdateMinute int `mapstructure:"update_minute"`
	UpdateSecond int `mapstructure:"update_second"`
}

// CacheConfig holds durable cache configuration
type CacheConfig struct {
	FilePath string `mapstructure:"file_path"`
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	Enabled  bool   `mapstructure:"enabled"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	setDefaults(v)

	v.SetEnvPrefix("PREZMON")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options. The
// election defaults pin the May 2025 presidential runoff this monitor was
// built for.
func setDefaults(v *viper.Viper) {
	v.SetDefault("election.base_url", "https://prezenta.roaep.ro")
	v.SetDefault("election.round1_tag", "prezidentiale04052025")
	v.SetDefault("election.round2_tag", "prezidentiale18052025")
	v.SetDefault("election.month", "2025-05")
	v.SetDefault("election.day_offset", 14)
	v.SetDefault("election.window_start.day", 15)
	v.SetDefault("election.window_start.hour", 22)
	v.SetDefault("election.window_end.day", 18)
	v.SetDefault("election.window_end.hour", 21)
	v.SetDefault("election.home_region", "ROMANIA")
	v.SetDefault("election.regions", []string{
		"REGATUL UNIT AL MARII BRITANII ȘI AL IRLANDEI DE NORD",
		"GERMANIA",
		"FRANȚA",
		"ITALIA",
		"SPANIA",
		"REGATUL ȚĂRILOR DE JOS",
		"REPUBLICA MOLDOVA",
	})

	v.SetDefault("network.timeout", "30s")
	v.SetDefault("network.user_agent", "Mozilla/5.0")

	v.SetDefault("schedule.update_minute", 1)
	v.SetDefault("schedule.update_second", 1)

	v.SetDefault("cache.file_path", "./data/cache.json")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.Election.BaseURL == "" {
		return fmt.Errorf("election.base_url is required")
	}
	if c.Election.Round1Tag == "" || c.Election.Round2Tag == "" {
		return fmt.Errorf("election.round1_tag and election.round2_tag are required")
	}
	if c.Election.Month == "" {
		return fmt.Errorf("election.month is required")
	}
	if c.Election.DayOffset < 1 {
		return fmt.Errorf("election.day_offset must be at least 1")
	}
	if c.Election.HomeRegion == "" {
		return fmt.Errorf("election.home_region is required")
	}
	if len(c.Election.Regions) == 0 {
		return fmt.Errorf("election.regions must contain at least one region")
	}

	start := c.Election.WindowStart.Timestamp()
	end := c.Election.WindowEnd.Timestamp()
	if !start.Before(end) {
		return fmt.Errorf("election.window_start must be before election.window_end")
	}
	for _, edge := range []WindowEdge{c.Election.WindowStart, c.Election.WindowEnd} {
		if edge.Day < 1 || edge.Day > 31 {
			return fmt.Errorf("window day %d out of range", edge.Day)
		}
		if edge.Hour < 0 || edge.Hour > 23 {
			return fmt.Errorf("window hour %d out of range", edge.Hour)
		}
	}

	if c.Network.Timeout < time.Second {
		return fmt.Errorf("network.timeout must be at least 1 second")
	}
	if c.Network.UserAgent == "" {
		return fmt.Errorf("network.user_agent is required")
	}

	if c.Schedule.UpdateMinute < 0 || c.Schedule.UpdateMinute > 59 {
		return fmt.Errorf("schedule.update_minute must be between 0 and 59")
	}
	if c.Schedule.UpdateSecond < 0 || c.Schedule.UpdateSecond > 59 {
		return fmt.Errorf("schedule.update_second must be between 0 and 59")
	}

	if c.Cache.FilePath == "" {
		return fmt.Errorf("cache.file_path is required")
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
