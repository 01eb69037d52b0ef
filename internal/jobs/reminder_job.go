package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/straye-as/billing-api/internal/config"
	"github.com/straye-as/billing-api/internal/reminder"
	"go.uber.org/zap"
)

// DefaultJobTimeout bounds a single sweep when no timeout is configured
const DefaultJobTimeout = 5 * time.Minute

// SweepRunner runs a named reminder sweep.
// This interface allows the job to call the engine without depending on its construction.
type SweepRunner interface {
	Run(ctx context.Context, job string) (*reminder.Result, error)
}

// ReminderJob runs one reminder sweep on each scheduler tick.
type ReminderJob struct {
	name    string
	runner  SweepRunner
	logger  *zap.Logger
	timeout time.Duration
}

// NewReminderJob creates a job for the named sweep.
// The timeout controls how long the sweep is allowed to run.
func NewReminderJob(name string, runner SweepRunner, logger *zap.Logger, timeout time.Duration) *ReminderJob {
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}
	return &ReminderJob{
		name:    name,
		runner:  runner,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes the sweep. This is called by the scheduler according to the cron expression.
func (j *ReminderJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	result, err := j.runner.Run(ctx, j.name)
	if err != nil {
		j.logger.Error("reminder sweep failed",
			zap.String("job_name", j.name),
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	if result.Errors > 0 || result.ChannelFailures > 0 {
		j.logger.Warn("reminder sweep completed with failures",
			zap.String("job_name", j.name),
			zap.Int("errors", result.Errors),
			zap.Int("channel_failures", result.ChannelFailures))
	}
}

// RegisterReminderJobs registers every reminder sweep with the scheduler using
// the cron expressions from cfg.
func RegisterReminderJobs(scheduler JobScheduler, runner SweepRunner, cfg *config.NotificationsConfig, logger *zap.Logger) error {
	schedules := map[string]string{
		reminder.JobDeadlineReminders:   cfg.DeadlineCron,
		reminder.JobOverdueProjects:     cfg.OverdueCron,
		reminder.JobInvoiceReminders:    cfg.InvoiceCron,
		reminder.JobNotificationCleanup: cfg.CleanupCron,
	}

	for _, name := range reminder.Jobs {
		expr := schedules[name]
		if expr == "" {
			logger.Info("reminder job disabled, no cron expression", zap.String("job_name", name))
			continue
		}
		job := NewReminderJob(name, runner, logger, cfg.JobTimeoutDuration())
		if err := scheduler.AddJob(name, expr, job.Run); err != nil {
			return fmt.Errorf("failed to register reminder job: %w", err)
		}
	}
	return nil
}
