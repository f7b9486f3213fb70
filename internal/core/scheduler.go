package core

// scheduler.go runs the field rules reloader. It re-reads the rules file on
// an interval and swaps the column epoch when the rules changed. A broken
// file is logged and the previous epoch keeps serving.

import (
	"context"
	"log/slog"
	"time"
)

// StartRulesReloader blocks, reloading the rules file every interval until
// ctx is cancelled. It returns immediately when interval is not positive or
// no rules file is configured.
func (s *Service) StartRulesReloader(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.rulesFile == "" {
		return
	}

	slog.Info("field rules reloader started",
		"path", s.rulesFile,
		"interval", interval,
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("field rules reloader stopped")
			return
		case <-ticker.C:
			s.runReload(ctx)
		}
	}
}

// runReload performs one reload cycle.
func (s *Service) runReload(ctx context.Context) {
	start := time.Now()

	changed, err := s.ReloadRules(ctx)
	if err != nil {
		msg := MapError(err)
		slog.Error("field rules reload failed",
			"path", s.rulesFile,
			"code", msg.Code,
			"error", err,
		)
		return
	}

	slog.Debug("field rules reload completed",
		"changed", changed,
		"epoch", s.Columns().ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
