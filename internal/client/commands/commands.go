package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/pokerio/fillgame/internal/client"
	"github.com/pokerio/fillgame/internal/driver"
)

// GlobalFlags holds common configuration for all commands
type GlobalFlags struct {
	Config   string `short:"c" long:"config" env:"FILLGAME_CONFIG" default:"fillgame.hcl" help:"Path to HCL configuration file"`
	Server   string `short:"s" long:"server" env:"FILLGAME_SERVER" help:"Game server URL (overrides config)"`
	Game     string `short:"g" long:"game" env:"FILLGAME_GAME" help:"Game ID to fill (overrides config, prompted when empty)"`
	LogLevel string `short:"l" long:"log-level" env:"FILLGAME_LOG_LEVEL" help:"Log level (overrides config)"`
	LogFile  string `long:"log-file" env:"FILLGAME_LOG_FILE" help:"Log file path (overrides config)"`
	NoColor  bool   `long:"no-color" env:"FILLGAME_NO_COLOR" help:"Disable colored output"`

	In  io.Reader `kong:"-"`
	Out io.Writer `kong:"-"`
}

// defaultTUILogFile keeps log lines off the alternate screen.
const defaultTUILogFile = "fillgame.log"

// Session bundles everything a command needs once configuration is resolved
type Session struct {
	Config *client.Config
	Client *client.Client
	Logger *log.Logger
	Styles driver.Styles
	In     io.Reader
	Out    io.Writer

	logFile *os.File
}

// Close releases the log file, if one was opened.
func (s *Session) Close() error {
	if s.logFile == nil {
		return nil
	}
	return s.logFile.Close()
}

// GameID is the resolved game id; empty means the driver prompts for it.
func (s *Session) GameID() string {
	return s.Config.Session.GameID
}

// Driver builds a session driver wired to the session's console and client.
func (s *Session) Driver(opts driver.Options) *driver.Driver {
	if opts.GameID == "" {
		opts.GameID = s.GameID()
	}
	if opts.SmallBlind == 0 {
		opts.SmallBlind = s.Config.Session.SmallBlind
	}
	if opts.StartingFunds == 0 {
		opts.StartingFunds = s.Config.Session.StartingFunds
	}
	return driver.New(s.Client, s.Config.Roster(), s.In, s.Out, s.Styles, s.Logger, opts)
}

// Printf writes to the session's console.
func (s *Session) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.Out, format, args...)
}

// Setup loads configuration and builds a session logging to stderr or the configured file
func Setup(flags *GlobalFlags) (*Session, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	return setupConfigured(flags, cfg)
}

// SetupWithFileLogging is Setup for full-screen commands: logs always go to a file.
func SetupWithFileLogging(flags *GlobalFlags) (*Session, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	if cfg.UI.LogFile == "" {
		cfg.UI.LogFile = defaultTUILogFile
	}
	return setupConfigured(flags, cfg)
}

// loadConfig reads the config file and applies command line overrides
func loadConfig(flags *GlobalFlags) (*client.Config, error) {
	cfg, err := client.LoadConfig(flags.Config)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if flags.Server != "" {
		cfg.Server.URL = flags.Server
	}
	if flags.Game != "" {
		cfg.Session.GameID = flags.Game
	}
	if flags.LogLevel != "" {
		cfg.UI.LogLevel = flags.LogLevel
	}
	if flags.LogFile != "" {
		cfg.UI.LogFile = flags.LogFile
	}
	if flags.NoColor {
		cfg.UI.NoColor = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setupConfigured(flags *GlobalFlags, cfg *client.Config) (*Session, error) {
	s := &Session{
		Config: cfg,
		In:     flags.In,
		Out:    flags.Out,
	}
	if s.In == nil {
		s.In = os.Stdin
	}
	if s.Out == nil {
		s.Out = os.Stdout
	}

	var logWriter io.Writer = os.Stderr
	if cfg.UI.LogFile != "" {
		// Overwrite each run
		f, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		s.logFile = f
		logWriter = f
	}

	s.Logger = log.New(logWriter)
	s.Logger.SetLevel(cfg.Level())
	s.Logger.SetReportTimestamp(true)

	s.Styles = driver.NewStyles(driver.NewRenderer(s.Out, cfg.UI.NoColor))
	s.Client = client.New(cfg.Server.URL,
		client.WithTimeout(cfg.Timeout()),
		client.WithLogger(s.Logger),
	)

	s.Logger.Debug("Session configured",
		"server", cfg.Server.URL,
		"game", cfg.Session.GameID,
		"players", len(cfg.Session.Players),
		"config", flags.Config)

	return s, nil
}
