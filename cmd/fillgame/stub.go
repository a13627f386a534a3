package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pokerio/fillgame/internal/client/commands"
	"github.com/pokerio/fillgame/internal/stubserver"
	"golang.org/x/sync/errgroup"
)

// StubServerCmd serves the stub game server until interrupted
type StubServerCmd struct {
	Listen string `default:":42069" help:"Address to listen on"`
}

func (c *StubServerCmd) Run(flags *commands.GlobalFlags, ctx context.Context) error {
	logger := log.New(os.Stderr)
	logger.SetReportTimestamp(true)
	logger.SetLevel(log.InfoLevel)
	if flags.LogLevel != "" {
		level, err := log.ParseLevel(flags.LogLevel)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
	}

	srv := &http.Server{
		Addr:              c.Listen,
		Handler:           stubserver.New(logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Stub server listening", "addr", c.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("Shutting down stub server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
