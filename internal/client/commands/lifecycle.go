package commands

import (
	"context"
	"fmt"
)

// creator resolves the creator token, defaulting to the first roster player.
func creator(s *Session, name string) (string, error) {
	if name == "" {
		p, _ := s.Config.Roster().Player(0)
		return p, nil
	}
	return s.Config.Roster().Lookup(name)
}

// CreateCommand opens a new game and prints its ID
type CreateCommand struct {
	Creator string `arg:"" optional:"" help:"Creator player index or token (defaults to the first player)"`
}

func (cmd *CreateCommand) Run(flags *GlobalFlags, ctx context.Context) error {
	s, err := Setup(flags)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	token, err := creator(s, cmd.Creator)
	if err != nil {
		return err
	}

	res, created, err := s.Client.CreateGame(ctx, token, token, s.Config.Session.SmallBlind, s.Config.Session.StartingFunds)
	if err := report(s, "create", token, res, err); err != nil {
		return err
	}
	s.Printf("%s\n", s.Styles.Banner.Render(fmt.Sprintf("GAME ID: %s", created.ID())))
	s.Logger.Info("Game created", "game", created.ID(), "creator", token)
	return nil
}

// StartCommand starts the game owned by the creator
type StartCommand struct {
	Creator string `arg:"" optional:"" help:"Creator player index or token (defaults to the first player)"`
}

func (cmd *StartCommand) Run(flags *GlobalFlags, ctx context.Context) error {
	s, err := Setup(flags)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	token, err := creator(s, cmd.Creator)
	if err != nil {
		return err
	}
	res, err := s.Client.StartGame(ctx, token)
	return report(s, "start", token, res, err)
}

// LeaveCommand removes a player from its game
type LeaveCommand struct {
	Player string `arg:"" help:"Player index or token"`
}

func (cmd *LeaveCommand) Run(flags *GlobalFlags, ctx context.Context) error {
	s, err := Setup(flags)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	token, err := s.Config.Roster().Lookup(cmd.Player)
	if err != nil {
		return err
	}
	res, err := s.Client.LeaveGame(ctx, token)
	return report(s, "leave", token, res, err)
}

// KickCommand has the creator remove another player
type KickCommand struct {
	Player  string `arg:"" help:"Player index or token to kick"`
	Creator string `help:"Creator player index or token (defaults to the first player)"`
}

func (cmd *KickCommand) Run(flags *GlobalFlags, ctx context.Context) error {
	s, err := Setup(flags)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	owner, err := creator(s, cmd.Creator)
	if err != nil {
		return err
	}
	token, err := s.Config.Roster().Lookup(cmd.Player)
	if err != nil {
		return err
	}
	if token == owner {
		return fmt.Errorf("%s cannot kick itself", owner)
	}
	res, err := s.Client.KickPlayer(ctx, owner, token)
	return report(s, "kick", token, res, err)
}
