package commands

import (
	"context"

	"github.com/pokerio/fillgame/internal/driver"
	"github.com/pokerio/fillgame/internal/tui"
)

// SetupFlags controls how the join phase sets the game up.
type SetupFlags struct {
	Create bool `help:"Have the first player create a new game instead of joining an existing one"`
	Start  bool `help:"Have the first player start the game once everyone has joined"`
}

func (f SetupFlags) options() driver.Options {
	return driver.Options{Create: f.Create, Start: f.Start}
}

// RunCommand joins the roster and then relays actions from the console
type RunCommand struct {
	SetupFlags `embed:""`
}

func (cmd *RunCommand) Run(flags *GlobalFlags, ctx context.Context) error {
	s, err := Setup(flags)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	s.Logger.Info("Filling game", "server", s.Config.Server.URL, "players", len(s.Config.Session.Players))
	return s.Driver(cmd.options()).Run(ctx)
}

// JoinCommand only runs the join phase
type JoinCommand struct {
	SetupFlags `embed:""`
}

func (cmd *JoinCommand) Run(flags *GlobalFlags, ctx context.Context) error {
	s, err := Setup(flags)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	d := s.Driver(cmd.options())
	if err := d.Join(ctx); err != nil {
		return err
	}
	s.Printf("Joined %d players to game %s\n", s.Config.Roster().Len(), d.GameID())
	return nil
}

// TUICommand joins the roster and then starts the full-screen menu
type TUICommand struct {
	SetupFlags `embed:""`
}

func (cmd *TUICommand) Run(flags *GlobalFlags, ctx context.Context) error {
	s, err := SetupWithFileLogging(flags)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	d := s.Driver(cmd.options())
	if err := d.Join(ctx); err != nil {
		return err
	}

	s.Logger.Info("Starting TUI", "server", s.Config.Server.URL, "game", d.GameID())
	styles := tui.NewStyles(driver.NewRenderer(s.Out, s.Config.UI.NoColor))
	return tui.Run(ctx, s.Client, s.Config.Roster(), d.GameID(), styles, s.Logger)
}
