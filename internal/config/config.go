package config

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Mshel/snakebot/internal/game"
)

const (
	StrategyGreedy = "greedy"
	StrategyLua    = "lua"
)

// Config holds all snakebot configuration
type Config struct {
	// Logging
	LogLevel string `mapstructure:"log-level"`

	// Decision
	Strategy      string        `mapstructure:"strategy"`
	ScriptPath    string        `mapstructure:"script"`
	ScriptTimeout time.Duration `mapstructure:"script-timeout"`
	JournalPath   string        `mapstructure:"journal"`

	// SSH transport
	Host                string `mapstructure:"host"`
	Port                string `mapstructure:"port"`
	HostKeyPath         string `mapstructure:"host-key"`
	MaxConnectionsPerIP int    `mapstructure:"max-conns-per-ip"`

	// Journal browsing
	Limit  int `mapstructure:"limit"`
	Offset int `mapstructure:"offset"`
}

// Default returns a config with sensible defaults
func Default() *Config {
	return &Config{
		LogLevel:            "warn",
		Strategy:            StrategyGreedy,
		ScriptTimeout:       game.DefaultScriptTimeout,
		Host:                "0.0.0.0",
		Port:                "6996",
		HostKeyPath:         ".ssh/snakebot_ed25519",
		MaxConnectionsPerIP: 2,
		Limit:               20,
	}
}

// Validate checks the settings every command needs
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch c.Strategy {
	case StrategyGreedy:
	case StrategyLua:
		if c.ScriptPath == "" {
			return fmt.Errorf("script is required for the %s strategy", StrategyLua)
		}
	default:
		return fmt.Errorf("unknown strategy %q (want %s or %s)", c.Strategy, StrategyGreedy, StrategyLua)
	}
	if c.ScriptTimeout <= 0 {
		return fmt.Errorf("script_timeout must be positive")
	}
	return nil
}

// ValidateServe checks the SSH transport settings
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.MaxConnectionsPerIP <= 0 {
		return fmt.Errorf("max_conns_per_ip must be positive")
	}
	return nil
}

// ValidateBrowse checks the journal browsing settings
func (c *Config) ValidateBrowse() error {
	if c.JournalPath == "" {
		return fmt.Errorf("journal is required")
	}
	if c.Limit <= 0 {
		return fmt.Errorf("limit must be positive")
	}
	if c.Offset < 0 {
		return fmt.Errorf("offset must not be negative")
	}
	return nil
}

// NewStrategy builds the configured decision strategy
func (c *Config) NewStrategy() (game.Strategy, error) {
	if c.Strategy == StrategyLua {
		return game.LoadLuaStrategy(c.ScriptPath, c.ScriptTimeout)
	}
	return game.GreedyStrategy{}, nil
}
