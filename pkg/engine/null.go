package engine

import (
	"context"
	"log/slog"
)

// Null is the engine of projects without a managed environment. Lifecycle
// operations do nothing.
type Null struct{}

func (*Null) Install(context.Context) error { return skipped("install") }
func (*Null) Up(context.Context) error      { return skipped("up") }
func (*Null) Down(context.Context) error    { return skipped("down") }
func (*Null) Start(context.Context) error   { return skipped("start") }
func (*Null) Stop(context.Context) error    { return skipped("stop") }
func (*Null) Restart(context.Context) error { return skipped("restart") }
func (*Null) Rebuild(context.Context) error { return skipped("rebuild") }

func (*Null) Exec(context.Context, string, ...string) error {
	return ErrNoEngine
}

func (*Null) Status(context.Context) ([]ServiceStatus, error) {
	return nil, nil
}

func skipped(action string) error {
	slog.Warn("No environment engine configured, skipping", "action", action)
	return nil
}
