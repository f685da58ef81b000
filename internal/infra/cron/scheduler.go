// Package cron runs periodic application jobs on robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	robfig "github.com/robfig/cron/v3"

	"rentavail/internal/app/schedule"
)

// Scheduler implements schedule.Scheduler. Overlapping runs of one job are
// skipped and each run gets its own timeout.
type Scheduler struct {
	c       *robfig.Cron
	ctx     context.Context
	timeout time.Duration
	logger  *slog.Logger
}

func New(ctx context.Context, timeout time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	c := robfig.New(
		robfig.WithLocation(time.UTC),
		robfig.WithChain(robfig.Recover(cronLogger{logger}), robfig.SkipIfStillRunning(cronLogger{logger})),
	)
	return &Scheduler{c: c, ctx: ctx, timeout: timeout, logger: logger}
}

func (s *Scheduler) Every(spec, name string, job schedule.Job) error {
	_, err := s.c.AddFunc(spec, func() {
		ctx := s.ctx
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		start := time.Now()
		if err := job(ctx); err != nil {
			s.logger.Warn("scheduled job failed", "job", name, "duration", time.Since(start), "error", err)
			return
		}
		s.logger.Debug("scheduled job done", "job", name, "duration", time.Since(start))
	})
	if err != nil {
		return err
	}
	s.logger.Info("job scheduled", "job", name, "spec", spec)
	return nil
}

// Run starts the scheduler and blocks until ctx ends, then waits for
// running jobs.
func (s *Scheduler) Run(ctx context.Context) error {
	s.c.Start()
	<-ctx.Done()
	<-s.c.Stop().Done()
	return nil
}

type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(msg, append(keysAndValues, "error", err)...)
}

var _ schedule.Scheduler = (*Scheduler)(nil)
