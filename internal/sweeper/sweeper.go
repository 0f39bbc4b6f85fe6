// Package sweeper periodically evicts stale staging files left behind by
// jobs that were never retrieved (or whose callback/cleanup step failed).
package sweeper

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Neur0toxine/atranscoder-rpc/internal/job"
	"github.com/Neur0toxine/atranscoder-rpc/internal/logging"
)

// Sweeper deletes files under WorkDir whose extension matches the staging
// extension and whose modification time is older than TTL.
type Sweeper struct {
	WorkDir  string
	TTL      time.Duration
	Interval time.Duration
}

// Run starts the sweep loop, running one pass immediately and then every
// Interval until ctx is cancelled. When Interval is not positive, Run
// returns at once without sweeping.
func (s *Sweeper) Run(ctx context.Context) {
	logger := logging.WithComponent("sweeper")
	if s.Interval <= 0 {
		return
	}

	logger.Info().Dur("interval", s.Interval).Dur("ttl", s.TTL).Str(logging.FieldPath, s.WorkDir).Msg("staging sweeper started")

	s.SweepOnce(ctx)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce performs exactly one pass over WorkDir, deleting every entry
// whose name ends (case-insensitively) in the staging extension and whose
// modification time is older than TTL. It is deterministic given the
// filesystem state and therefore unit-testable without a ticker.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	logger := logging.WithComponentFromContext(ctx, "sweeper")

	entries, err := os.ReadDir(s.WorkDir)
	if err != nil {
		logger.Warn().Err(err).Str(logging.FieldPath, s.WorkDir).Msg("failed to list staging directory")
		return
	}

	now := time.Now()
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !hasStagingExtension(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			logger.Warn().Err(err).Str(logging.FieldPath, entry.Name()).Msg("failed to stat staging entry")
			continue
		}
		if now.Sub(info.ModTime()) <= s.TTL {
			continue
		}
		path := filepath.Join(s.WorkDir, entry.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn().Err(err).Str(logging.FieldPath, path).Msg("failed to remove stale staging file")
			continue
		}
		removed++
	}
	if removed > 0 {
		logger.Info().Int("removed", removed).Msg("swept stale staging files")
	}
}

func hasStagingExtension(name string) bool {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	return strings.EqualFold(ext, job.StagingExtension)
}
