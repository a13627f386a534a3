package commands

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/pokerio/fillgame/internal/driver"
	"github.com/pokerio/fillgame/internal/roster"
	"github.com/pokerio/fillgame/internal/stubserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	stub *stubserver.Server
	url  string
	dir  string
	out  *bytes.Buffer
}

func newEnv(t *testing.T) *env {
	t.Helper()
	stub := stubserver.New(log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel}))
	ts := httptest.NewServer(stub)
	t.Cleanup(ts.Close)
	return &env{stub: stub, url: ts.URL, dir: t.TempDir(), out: &bytes.Buffer{}}
}

// flags returns flags pointing at the stub with a config file that does not exist.
func (e *env) flags(input string) *GlobalFlags {
	return &GlobalFlags{
		Config:   filepath.Join(e.dir, "missing.hcl"),
		Server:   e.url,
		LogLevel: "error",
		LogFile:  filepath.Join(e.dir, "fillgame.log"),
		NoColor:  true,
		In:       strings.NewReader(input),
		Out:      e.out,
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fillgame.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
server {
  url = "http://config-host:42069"
}
session {
  game_id = "1"
  players = ["Ala", "Ola", "Ela"]
}
ui {
  log_level = "info"
}
`), 0o644))

	t.Run("file values", func(t *testing.T) {
		cfg, err := loadConfig(&GlobalFlags{Config: path})
		require.NoError(t, err)
		assert.Equal(t, "http://config-host:42069", cfg.Server.URL)
		assert.Equal(t, "1", cfg.Session.GameID)
		assert.Equal(t, []string{"Ala", "Ola", "Ela"}, cfg.Session.Players)
		assert.Equal(t, log.InfoLevel, cfg.Level())
		assert.False(t, cfg.UI.NoColor)
	})

	t.Run("flags win", func(t *testing.T) {
		cfg, err := loadConfig(&GlobalFlags{
			Config:   path,
			Server:   "http://flag-host:1234",
			Game:     "42",
			LogLevel: "debug",
			LogFile:  "x.log",
			NoColor:  true,
		})
		require.NoError(t, err)
		assert.Equal(t, "http://flag-host:1234", cfg.Server.URL)
		assert.Equal(t, "42", cfg.Session.GameID)
		assert.Equal(t, log.DebugLevel, cfg.Level())
		assert.Equal(t, "x.log", cfg.UI.LogFile)
		assert.True(t, cfg.UI.NoColor)
	})

	t.Run("invalid override", func(t *testing.T) {
		_, err := loadConfig(&GlobalFlags{Config: path, LogLevel: "loud"})
		assert.ErrorContains(t, err, "invalid configuration")
	})
}

func TestSetupWithFileLogging(t *testing.T) {
	e := newEnv(t)
	flags := e.flags("")

	s, err := SetupWithFileLogging(flags)
	require.NoError(t, err)
	s.Logger.Error("hello from test")
	require.NoError(t, s.Close())

	data, err := os.ReadFile(flags.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")
}

func TestRunCommand(t *testing.T) {
	e := newEnv(t)
	flags := e.flags("42\n2\n3\n150\n9\n")

	require.NoError(t, (&RunCommand{}).Run(flags, context.Background()))

	reqs := e.stub.Requests()
	require.Len(t, reqs, 8)
	assert.Equal(t, "/actionRaise/", reqs[7].Path)
	assert.Equal(t, "playerToken=Czarek&amount=150&gameId=42", reqs[7].Query)

	out := e.out.String()
	assert.True(t, strings.HasPrefix(out, "GAME ID: ----42----\n"))
	assert.Contains(t, out, "Status: 200\n")
	assert.Contains(t, out, "Wrong player number\n")
}

func TestRunCommandJoinRejected(t *testing.T) {
	e := newEnv(t)
	e.stub.ForceStatus("/joinGame/", 418)
	flags := e.flags("0\n0\n")
	flags.Game = "42"

	err := (&RunCommand{}).Run(flags, context.Background())
	assert.ErrorIs(t, err, driver.ErrRejected)
	assert.Len(t, e.stub.Requests(), 1)
	assert.Contains(t, e.out.String(), "Error: 418\n")
}

func TestJoinCommandCreate(t *testing.T) {
	e := newEnv(t)
	cmd := &JoinCommand{SetupFlags{Create: true, Start: true}}

	require.NoError(t, cmd.Run(e.flags(""), context.Background()))

	assert.Contains(t, e.out.String(), "Joined 7 players to game 100001\n")
	assert.Equal(t, roster.DefaultPlayers, e.stub.Players("100001"))
	assert.True(t, e.stub.Started("100001"))
}

func TestActCommand(t *testing.T) {
	e := newEnv(t)
	flags := e.flags("")
	flags.Game = "42"
	require.NoError(t, (&JoinCommand{}).Run(flags, context.Background()))

	t.Run("raise by name", func(t *testing.T) {
		e.out.Reset()
		cmd := &ActCommand{Player: "Daria", Action: "raise", Amount: "40"}
		require.NoError(t, cmd.Run(flags, context.Background()))
		assert.Contains(t, e.out.String(), e.url+"/actionRaise/?playerToken=Daria&amount=40&gameId=42\nStatus: 200\n")
	})

	t.Run("call by index", func(t *testing.T) {
		cmd := &ActCommand{Player: "1", Action: "2"}
		require.NoError(t, cmd.Run(flags, context.Background()))
		reqs := e.stub.Requests()
		assert.Equal(t, "/actionCall/", reqs[len(reqs)-1].Path)
	})

	t.Run("raise without amount", func(t *testing.T) {
		before := len(e.stub.Requests())
		err := (&ActCommand{Player: "0", Action: "3"}).Run(flags, context.Background())
		assert.ErrorContains(t, err, "requires an amount")
		assert.Len(t, e.stub.Requests(), before)
	})

	t.Run("unknown player", func(t *testing.T) {
		err := (&ActCommand{Player: "Zenon", Action: "fold"}).Run(flags, context.Background())
		assert.Error(t, err)
	})

	t.Run("rejected", func(t *testing.T) {
		err := (&ActCommand{Player: "0", Action: "raise", Amount: "lots"}).Run(flags, context.Background())
		var rejected *driver.RejectedError
		require.ErrorAs(t, err, &rejected)
		assert.Equal(t, 400, rejected.StatusCode)
	})

	t.Run("no game", func(t *testing.T) {
		err := (&ActCommand{Player: "0", Action: "fold"}).Run(e.flags(""), context.Background())
		assert.ErrorContains(t, err, "game ID is required")
	})
}

func TestLifecycleCommands(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, (&CreateCommand{}).Run(e.flags(""), ctx))
	assert.Contains(t, e.out.String(), "GAME ID: 100001\n")

	flags := e.flags("")
	flags.Game = "100001"
	require.NoError(t, (&JoinCommand{}).Run(flags, ctx), "creator rejoining its own game is accepted")

	require.NoError(t, (&KickCommand{Player: "Bartek"}).Run(flags, ctx))
	require.NoError(t, (&LeaveCommand{Player: "2"}).Run(flags, ctx))

	err := (&KickCommand{Player: "Daria", Creator: "Ewa"}).Run(flags, ctx)
	assert.ErrorIs(t, err, driver.ErrRejected, "only the creator may kick")

	err = (&KickCommand{Player: "Ania"}).Run(flags, ctx)
	assert.ErrorContains(t, err, "cannot kick itself")

	require.NoError(t, (&StartCommand{}).Run(flags, ctx))
	assert.True(t, e.stub.Started("100001"))

	assert.Equal(t, []string{"Ania", "Daria", "Ewa", "Filip", "Gosia"}, e.stub.Players("100001"))
}
