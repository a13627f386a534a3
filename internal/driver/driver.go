// Package driver fills a game with the roster and then relays the operator's
// choices to the server, one request at a time.
package driver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pokerio/fillgame/internal/client"
	"github.com/pokerio/fillgame/internal/roster"
)

// State of the driver
type State int

const (
	Joining State = iota
	Interacting
	Done
)

func (s State) String() string {
	switch s {
	case Joining:
		return "joining"
	case Interacting:
		return "interacting"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrRejected is wrapped by every RejectedError.
var ErrRejected = errors.New("request rejected")

// errInputClosed marks the end of operator input. It is distinct from io.EOF,
// which net/http also returns when the server drops a connection.
var errInputClosed = errors.New("input closed")

// RejectedError reports a setup request the server answered outside 200/201.
type RejectedError struct {
	Op         string
	Token      string
	StatusCode int
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s for %s rejected with status %d", e.Op, e.Token, e.StatusCode)
}

func (e *RejectedError) Unwrap() error {
	return ErrRejected
}

// GameClient is the subset of the game client the driver needs.
type GameClient interface {
	Join(ctx context.Context, gameID, token, nickname string) (client.Result, error)
	Act(ctx context.Context, gameID, token string, action roster.Action, amount string) (client.Result, error)
	CreateGame(ctx context.Context, creatorToken, nickname string, smallBlind, startingFunds int) (client.Result, *client.CreatedGame, error)
	StartGame(ctx context.Context, creatorToken string) (client.Result, error)
}

// Options controls the join phase.
type Options struct {
	// GameID skips the game id prompt when set.
	GameID string
	// Create has the first player create a fresh game instead of joining one.
	Create        bool
	SmallBlind    int
	StartingFunds int
	// Start has the creator start the game once everyone is seated.
	Start bool
}

// Driver runs one session against the server
type Driver struct {
	client GameClient
	roster *roster.Roster
	in     *bufio.Scanner
	out    io.Writer
	styles Styles
	logger *log.Logger
	opts   Options

	state  State
	gameID string
}

// New creates a driver reading operator input from in and writing the console to out
func New(c GameClient, r *roster.Roster, in io.Reader, out io.Writer, styles Styles, logger *log.Logger, opts Options) *Driver {
	return &Driver{
		client: c,
		roster: r,
		in:     bufio.NewScanner(in),
		out:    out,
		styles: styles,
		logger: logger.WithPrefix("driver"),
		opts:   opts,
		state:  Joining,
	}
}

// State returns the current state.
func (d *Driver) State() State {
	return d.state
}

// GameID returns the session's game id, known once the join phase has begun.
func (d *Driver) GameID() string {
	return d.gameID
}

// Run joins every player and then serves the operator until input runs out.
func (d *Driver) Run(ctx context.Context) error {
	if err := d.Join(ctx); err != nil {
		return err
	}
	return d.Interact(ctx)
}

// Join registers every roster token in the session, in order. The first
// rejection stops the phase; nothing else is sent after it.
func (d *Driver) Join(ctx context.Context) error {
	if d.state != Joining {
		return fmt.Errorf("join phase already ran (state %s)", d.state)
	}

	players := d.roster.Players()
	if len(players) == 0 {
		return fmt.Errorf("roster is empty")
	}

	if d.opts.Create {
		if err := d.create(ctx, players[0]); err != nil {
			return err
		}
		players = players[1:]
	} else if err := d.readGameID(); err != nil {
		return err
	}

	d.printf("%s\n", d.styles.Banner.Render("----"+d.gameID+"----"))

	for _, token := range players {
		res, err := d.client.Join(ctx, d.gameID, token, token)
		d.printf("%s\n", d.styles.URL.Render(res.URL))
		if err != nil {
			return fmt.Errorf("failed to join %s: %w", token, err)
		}
		if !res.OK() {
			d.printf("%s\n", d.styles.Failure.Render(fmt.Sprintf("Error: %d", res.StatusCode)))
			d.logger.Error("Join rejected", "player", token, "status", res.StatusCode)
			return &RejectedError{Op: "join", Token: token, StatusCode: res.StatusCode}
		}
		d.printf("%s\n", d.styles.Success.Render(fmt.Sprintf("Status: %d", res.StatusCode)))
		d.logger.Info("Joined", "player", token, "game", d.gameID, "status", res.StatusCode)
	}

	if d.opts.Start {
		creator := d.roster.Players()[0]
		res, err := d.client.StartGame(ctx, creator)
		d.printf("%s\n", d.styles.URL.Render(res.URL))
		if err != nil {
			return fmt.Errorf("failed to start game: %w", err)
		}
		if !res.OK() {
			d.printf("%s\n", d.styles.Failure.Render(fmt.Sprintf("Error: %d", res.StatusCode)))
			return &RejectedError{Op: "start", Token: creator, StatusCode: res.StatusCode}
		}
		d.printf("%s\n", d.styles.Success.Render(fmt.Sprintf("Status: %d", res.StatusCode)))
		d.logger.Info("Game started", "game", d.gameID, "creator", creator)
	}

	d.state = Interacting
	return nil
}

func (d *Driver) create(ctx context.Context, creator string) error {
	res, created, err := d.client.CreateGame(ctx, creator, creator, d.opts.SmallBlind, d.opts.StartingFunds)
	d.printf("%s\n", d.styles.URL.Render(res.URL))
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	if !res.OK() {
		d.printf("%s\n", d.styles.Failure.Render(fmt.Sprintf("Error: %d", res.StatusCode)))
		return &RejectedError{Op: "create", Token: creator, StatusCode: res.StatusCode}
	}
	d.gameID = created.ID()
	d.logger.Info("Game created", "game", d.gameID, "creator", creator,
		"small_blind", created.SmallBlind, "starting_funds", created.StartingFunds)
	return nil
}

func (d *Driver) readGameID() error {
	if d.opts.GameID != "" {
		d.gameID = d.opts.GameID
		return nil
	}
	line, err := d.prompt("GAME ID: ")
	if err != nil {
		return fmt.Errorf("failed to read game id: %w", err)
	}
	d.gameID = line
	return nil
}

// Interact repeats Step until the operator's input ends.
func (d *Driver) Interact(ctx context.Context) error {
	if d.state != Interacting {
		return fmt.Errorf("cannot interact in state %s", d.state)
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := d.Step(ctx)
		if errors.Is(err, errInputClosed) {
			d.state = Done
			d.logger.Info("Input closed")
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Step runs one menu round: choose player, choose action, maybe an amount,
// send. Invalid choices print a message and return nil without sending.
// Once the input is exhausted the returned error wraps errInputClosed.
func (d *Driver) Step(ctx context.Context) error {
	d.printMenu("Players:", d.roster.Players())
	line, err := d.prompt("Choose player: ")
	if err != nil {
		return err
	}
	token, ok := d.choosePlayer(line)
	if !ok {
		d.printf("%s\n", d.styles.Warning.Render("Wrong player number"))
		return nil
	}

	names := make([]string, len(roster.Actions))
	for i, a := range roster.Actions {
		names[i] = a.String()
	}
	d.printMenu("Actions:", names)
	line, err = d.prompt("Choose action: ")
	if err != nil {
		return err
	}
	action, ok := chooseAction(line)
	if !ok {
		d.printf("%s\n", d.styles.Warning.Render("Wrong action number"))
		return nil
	}

	var amount string
	if action.NeedsAmount() {
		if amount, err = d.prompt("Choose amount: "); err != nil {
			return err
		}
	}

	res, err := d.client.Act(ctx, d.gameID, token, action, amount)
	if err != nil {
		return fmt.Errorf("failed to send %s for %s: %w", action, token, err)
	}
	d.logger.Debug("Action sent", "player", token, "action", action, "amount", amount, "status", res.StatusCode)

	style := d.styles.Success
	if !res.OK() {
		style = d.styles.Failure
	}
	d.printf("%s\n", style.Render(fmt.Sprintf("Status: %d", res.StatusCode)))
	return nil
}

func (d *Driver) choosePlayer(line string) (string, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return "", false
	}
	return d.roster.Player(i)
}

func chooseAction(line string) (roster.Action, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, false
	}
	a := roster.Action(i)
	return a, a.Valid()
}

func (d *Driver) printMenu(title string, items []string) {
	d.printf("%s\n", d.styles.Header.Render(title))
	for i, item := range items {
		d.printf("%d. %s\n", i, item)
	}
}

func (d *Driver) prompt(label string) (string, error) {
	d.printf("%s", label)
	if !d.in.Scan() {
		if err := d.in.Err(); err != nil {
			return "", err
		}
		return "", errInputClosed
	}
	return strings.TrimRight(d.in.Text(), "\r"), nil
}

func (d *Driver) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(d.out, format, args...)
}
