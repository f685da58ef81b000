package schedule

import (
	"context"
)

// Job is a periodic task. Errors are logged by the scheduler and never stop it.
type Job func(ctx context.Context) error

// Scheduler runs named jobs on cron specs.
type Scheduler interface {
	Every(spec, name string, job Job) error
}
