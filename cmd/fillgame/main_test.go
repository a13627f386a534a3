package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/pokerio/fillgame/internal/client/commands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test"})
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, kctx
}

func TestDefaultCommandIsRun(t *testing.T) {
	cli, kctx := parse(t)
	assert.Equal(t, "run", kctx.Command())
	assert.Equal(t, "fillgame.hcl", cli.Config)
	assert.Empty(t, cli.Game)
}

func TestGlobalFlags(t *testing.T) {
	cli, kctx := parse(t, "-s", "http://10.0.0.5:42069", "-g", "42", "--no-color", "join", "--create", "--start")
	assert.Equal(t, "join", kctx.Command())
	assert.Equal(t, "http://10.0.0.5:42069", cli.Server)
	assert.Equal(t, "42", cli.Game)
	assert.True(t, cli.NoColor)
	assert.True(t, cli.Join.Create)
	assert.True(t, cli.Join.Start)
}

func TestEnvironment(t *testing.T) {
	t.Setenv("FILLGAME_SERVER", "http://env-host:42069")
	t.Setenv("FILLGAME_GAME", "777")

	cli, _ := parse(t, "run")
	assert.Equal(t, "http://env-host:42069", cli.Server)
	assert.Equal(t, "777", cli.Game)

	cli, _ = parse(t, "--game", "42", "run")
	assert.Equal(t, "42", cli.Game, "flags win over the environment")

	t.Run("dotenv", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(
			"FILLGAME_SERVER=http://dotenv-host:42069\n"+
				"FILLGAME_LOG_LEVEL=debug\n"), 0o600))
		t.Chdir(dir)

		// Restored afterwards; unset so only .env provides it.
		t.Setenv("FILLGAME_LOG_LEVEL", "")
		require.NoError(t, os.Unsetenv("FILLGAME_LOG_LEVEL"))

		loadDotenv()

		cli, _ := parse(t, "run")
		assert.Equal(t, "debug", cli.LogLevel, ".env fills unset variables")
		assert.Equal(t, "http://env-host:42069", cli.Server, "the real environment wins over .env")
		assert.Equal(t, "777", cli.Game)

		cli, _ = parse(t, "--log-level", "error", "run")
		assert.Equal(t, "error", cli.LogLevel, "flags win over .env")
	})
}

func TestActArgs(t *testing.T) {
	cli, kctx := parse(t, "act", "Czarek", "raise", "150")
	assert.True(t, strings.HasPrefix(kctx.Command(), "act"))
	assert.Equal(t, "Czarek", cli.Act.Player)
	assert.Equal(t, "raise", cli.Act.Action)
	assert.Equal(t, "150", cli.Act.Amount)

	cli, _ = parse(t, "act", "0", "fold")
	assert.Empty(t, cli.Act.Amount)
}

func TestStubServerFlags(t *testing.T) {
	cli, kctx := parse(t, "stub-server", "--listen", "127.0.0.1:0")
	assert.Equal(t, "stub-server", kctx.Command())
	assert.Equal(t, "127.0.0.1:0", cli.StubServer.Listen)
}

func TestStubServerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := &StubServerCmd{Listen: "127.0.0.1:0"}
	assert.NoError(t, cmd.Run(&commands.GlobalFlags{LogLevel: "error"}, ctx))
}

func TestStubServerBadLogLevel(t *testing.T) {
	cmd := &StubServerCmd{Listen: "127.0.0.1:0"}
	assert.Error(t, cmd.Run(&commands.GlobalFlags{LogLevel: "loud"}, context.Background()))
}
