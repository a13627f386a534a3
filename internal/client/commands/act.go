package commands

import (
	"context"
	"fmt"

	"github.com/pokerio/fillgame/internal/client"
	"github.com/pokerio/fillgame/internal/driver"
	"github.com/pokerio/fillgame/internal/roster"
)

// ActCommand sends a single action without the interactive menu
type ActCommand struct {
	Player string `arg:"" help:"Player index or token"`
	Action string `arg:"" help:"Action index or name (fold, check, call, raise)"`
	Amount string `arg:"" optional:"" help:"Amount, required for raise"`
}

func (cmd *ActCommand) Run(flags *GlobalFlags, ctx context.Context) error {
	s, err := Setup(flags)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if s.GameID() == "" {
		return fmt.Errorf("a game ID is required, use --game or session.game_id")
	}

	token, err := s.Config.Roster().Lookup(cmd.Player)
	if err != nil {
		return err
	}
	action, err := roster.ParseAction(cmd.Action)
	if err != nil {
		return err
	}
	if action.NeedsAmount() && cmd.Amount == "" {
		return fmt.Errorf("%s requires an amount", action)
	}

	res, err := s.Client.Act(ctx, s.GameID(), token, action, cmd.Amount)
	return report(s, "action"+action.String(), token, res, err)
}

// report prints a one-shot request's URL and status, failing on anything but 200/201.
func report(s *Session, op, token string, res client.Result, err error) error {
	if res.URL != "" {
		s.Printf("%s\n", s.Styles.URL.Render(res.URL))
	}
	if err != nil {
		return fmt.Errorf("%s failed: %w", op, err)
	}
	status := fmt.Sprintf("Status: %d", res.StatusCode)
	if !res.OK() {
		s.Printf("%s\n", s.Styles.Failure.Render(status))
		return &driver.RejectedError{Op: op, Token: token, StatusCode: res.StatusCode}
	}
	s.Printf("%s\n", s.Styles.Success.Render(status))
	return nil
}
