// Package jobs holds background work scheduled with cron.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Skotchmaster/storefront/internal/repo"
)

// TokenCleanup removes refresh tokens that expired or were revoked more than
// Retention ago.
type TokenCleanup struct {
	Repo      *repo.GormRepo
	Log       *slog.Logger
	Retention time.Duration
	Timeout   time.Duration

	cron *cron.Cron
	now  func() time.Time
}

func NewTokenCleanup(r *repo.GormRepo, l *slog.Logger) *TokenCleanup {
	return &TokenCleanup{
		Repo:      r,
		Log:       l.With("job", "token_cleanup"),
		Retention: 24 * time.Hour,
		Timeout:   time.Minute,
		cron:      cron.New(),
		now:       time.Now,
	}
}

// Start schedules the job with a standard cron spec ("@hourly", "0 3 * * *").
func (j *TokenCleanup) Start(spec string) error {
	_, err := j.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.Timeout)
		defer cancel()
		_, _ = j.Run(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule token cleanup %q: %w", spec, err)
	}
	j.cron.Start()
	j.Log.Info("job_scheduled", "spec", spec)
	return nil
}

// Stop waits for a running cleanup to finish or ctx to end.
func (j *TokenCleanup) Stop(ctx context.Context) {
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (j *TokenCleanup) Run(ctx context.Context) (int64, error) {
	cutoff := j.now().Add(-j.Retention)
	n, err := j.Repo.DeleteStaleTokens(ctx, cutoff)
	if err != nil {
		j.Log.Error("token_cleanup_failed", "error", err)
		return 0, err
	}
	j.Log.Info("token_cleanup_done", "deleted", n, "cutoff", cutoff)
	return n, nil
}
