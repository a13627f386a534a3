package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/pokerio/fillgame/internal/client/commands"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	commands.GlobalFlags `embed:""`

	Version kong.VersionFlag `short:"v" help:"Show version"`

	Run        commands.RunCommand    `cmd:"" default:"1" help:"Join every player, then send actions chosen at the prompt"`
	TUI        commands.TUICommand    `cmd:"" name:"tui" help:"Join every player, then choose actions in a full-screen menu"`
	Join       commands.JoinCommand   `cmd:"" help:"Join every player and exit"`
	Act        commands.ActCommand    `cmd:"" help:"Send a single action"`
	Create     commands.CreateCommand `cmd:"" help:"Create a new game"`
	Start      commands.StartCommand  `cmd:"" help:"Start a game"`
	Leave      commands.LeaveCommand  `cmd:"" help:"Remove a player from its game"`
	Kick       commands.KickCommand   `cmd:"" help:"Kick a player from the creator's game"`
	StubServer StubServerCmd          `cmd:"" name:"stub-server" help:"Run an in-memory stand-in for the game server"`
}

// loadDotenv reads .env from the working directory when present. Values
// already in the environment win over it.
func loadDotenv() {
	_ = godotenv.Load()
}

func main() {
	loadDotenv()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("fillgame"),
		kong.Description("Fill a Pokerio game with test players and drive their actions by hand"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	err := kctx.Run(&cli.GlobalFlags)
	kctx.FatalIfErrorf(err)
}
