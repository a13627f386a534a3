package client

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/pokerio/fillgame/internal/roster"
)

// Config represents the complete harness configuration
type Config struct {
	Server  ServerConnection `hcl:"server,block"`
	Session SessionSettings  `hcl:"session,block"`
	UI      UISettings       `hcl:"ui,block"`
}

// ServerConnection contains server connection settings
type ServerConnection struct {
	URL            string `hcl:"url,optional"`
	RequestTimeout int    `hcl:"request_timeout,optional"`
}

// SessionSettings describes the game being filled
type SessionSettings struct {
	GameID        string   `hcl:"game_id,optional"`
	Players       []string `hcl:"players,optional"`
	SmallBlind    int      `hcl:"small_blind,optional"`
	StartingFunds int      `hcl:"starting_funds,optional"`
}

// UISettings contains console and logging settings
type UISettings struct {
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
	NoColor  bool   `hcl:"no_color,optional"`
}

// fileConfig mirrors Config with optional blocks so a partial file decodes.
type fileConfig struct {
	Server  *ServerConnection `hcl:"server,block"`
	Session *SessionSettings  `hcl:"session,block"`
	UI      *UISettings       `hcl:"ui,block"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConnection{
			URL: DefaultServerURL,
		},
		Session: SessionSettings{
			Players:       append([]string(nil), roster.DefaultPlayers...),
			SmallBlind:    10,
			StartingFunds: 1000,
		},
		UI: UISettings{
			LogLevel: "warn",
		},
	}
}

// LoadConfig loads configuration from an HCL file. A missing file yields the defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config := DefaultConfig()

	if s := fc.Server; s != nil {
		if s.URL != "" {
			config.Server.URL = s.URL
		}
		config.Server.RequestTimeout = s.RequestTimeout
	}

	if s := fc.Session; s != nil {
		config.Session.GameID = s.GameID
		if len(s.Players) > 0 {
			config.Session.Players = s.Players
		}
		if s.SmallBlind != 0 {
			config.Session.SmallBlind = s.SmallBlind
		}
		if s.StartingFunds != 0 {
			config.Session.StartingFunds = s.StartingFunds
		}
	}

	if u := fc.UI; u != nil {
		if u.LogLevel != "" {
			config.UI.LogLevel = u.LogLevel
		}
		config.UI.LogFile = u.LogFile
		config.UI.NoColor = u.NoColor
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server URL is required")
	}

	u, err := url.Parse(c.Server.URL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server URL must be http or https, got %q", c.Server.URL)
	}

	if c.Server.RequestTimeout < 0 {
		return fmt.Errorf("request timeout cannot be negative")
	}

	if len(c.Session.Players) == 0 {
		return fmt.Errorf("at least one player is required")
	}

	seen := make(map[string]bool, len(c.Session.Players))
	for i, p := range c.Session.Players {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("player %d has an empty token", i)
		}
		if seen[p] {
			return fmt.Errorf("duplicate player token: %s", p)
		}
		seen[p] = true
	}

	if c.Session.SmallBlind <= 0 {
		return fmt.Errorf("small blind must be positive")
	}

	if c.Session.StartingFunds <= 0 {
		return fmt.Errorf("starting funds must be positive")
	}

	if _, err := log.ParseLevel(c.UI.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %s", c.UI.LogLevel)
	}

	return nil
}

// Roster builds the player roster from the session settings.
func (c *Config) Roster() *roster.Roster {
	return roster.New(c.Session.Players)
}

// Timeout returns the per-request timeout; zero means none.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Server.RequestTimeout) * time.Second
}

// Level returns the configured log level, falling back to warn.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.UI.LogLevel)
	if err != nil {
		return log.WarnLevel
	}
	return level
}
