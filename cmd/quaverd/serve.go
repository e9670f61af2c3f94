package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quaverd/quaverd/internal/config"
	"github.com/quaverd/quaverd/internal/daemon"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the daemon in the foreground",
	Long: `Run the daemon in the foreground until it receives SIGINT or
SIGTERM, or a client issues the kill command. Settings come from the
environment; see the QUAVERD_* variables.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	d, err := daemon.New(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := d.Start(); err != nil {
		return err
	}

	stopped := make(chan struct{})
	go func() {
		d.Wait()
		close(stopped)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case <-stopped:
		// A client issued kill; the daemon already tore itself down.
		return nil
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(), 5*time.Second)
	defer shutdownCancel()
	return d.Stop(shutdownCtx)
}
