package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pseudomuto/projectx/pkg/cmd"
	"go.uber.org/fx"
)

// NB: These are set by GoReleaser during a build.
var (
	version string
	commit  string
	date    string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           log.InfoLevel,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "projectx",
	})
	slog.SetDefault(slog.New(logger))

	app := fx.New(
		fx.Provide(func() context.Context { return ctx }),
		fx.Supply(
			os.Args,
			logger,
			&cmd.Version{
				Version:   version,
				Commit:    commit,
				Timestamp: date,
			},
		),
		// commands run inside the start hook
		fx.StartTimeout(24*time.Hour),
		fx.NopLogger,
		cmd.Module,
	)

	app.Run()
}
