// Package reminder implements the scheduled sweeps that turn project
// deadlines, overdue work and unpaid invoices into notifications.
//
// Each qualifying entity produces exactly one notification per run. The
// notification is stored first, then every configured channel is attempted
// independently and the outcome is written back onto the notification.
// Runs are not deduplicated: two runs over the same data emit twice.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/straye-as/billing-api/internal/domain"
	"github.com/straye-as/billing-api/internal/logger"
	"github.com/straye-as/billing-api/internal/notify"
	"github.com/straye-as/billing-api/internal/repository"
	"go.uber.org/zap"
)

// Job names
const (
	JobDeadlineReminders   = "deadline_reminders"
	JobOverdueProjects     = "overdue_projects"
	JobInvoiceReminders    = "invoice_reminders"
	JobNotificationCleanup = "notification_cleanup"
)

// Jobs lists every sweep in scheduling order
var Jobs = []string{JobDeadlineReminders, JobOverdueProjects, JobInvoiceReminders, JobNotificationCleanup}

// DefaultDeadlineWindows are the days-ahead at which deadline reminders fire
var DefaultDeadlineWindows = []int{1, 3, 7}

// ErrUnknownJob is returned by Run for a job name that is not in Jobs
var ErrUnknownJob = errors.New("unknown reminder job")

// Clock supplies the current time to sweeps
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// NotificationSink persists notifications produced by sweeps
type NotificationSink interface {
	Emit(ctx context.Context, n *domain.Notification) error
	RecordDelivery(ctx context.Context, id string, channels domain.NotificationChannels) error
	DeleteExpired(ctx context.Context) (int, error)
}

// Recorder receives sweep metrics
type Recorder interface {
	NotificationEmitted(job string)
	ChannelResult(channel string, ok bool)
	SweepCompleted(job string, took time.Duration, failed bool)
}

type nopRecorder struct{}

func (nopRecorder) NotificationEmitted(string)                 {}
func (nopRecorder) ChannelResult(string, bool)                 {}
func (nopRecorder) SweepCompleted(string, time.Duration, bool) {}

// Options configures the engine
type Options struct {
	OwnerEmail      string
	OwnerWhatsApp   string
	DeadlineWindows []int
	Clock           Clock
	Recorder        Recorder
}

// Result summarizes one sweep
type Result struct {
	Job                  string
	Scanned              int
	NotificationsCreated int
	Deleted              int
	ChannelFailures      int
	Errors               int
}

// Engine runs reminder sweeps
type Engine struct {
	projectRepo *repository.ProjectRepository
	invoiceRepo *repository.InvoiceRepository
	clientRepo  *repository.ClientRepository
	sink        NotificationSink
	channels    []notify.Channel
	owner       notify.Recipient
	windows     map[int]domain.Priority
	clock       Clock
	recorder    Recorder
	logger      *zap.Logger
}

// NewEngine creates a reminder engine
func NewEngine(
	projectRepo *repository.ProjectRepository,
	invoiceRepo *repository.InvoiceRepository,
	clientRepo *repository.ClientRepository,
	sink NotificationSink,
	channels []notify.Channel,
	opts Options,
	log *zap.Logger,
) *Engine {
	windows := opts.DeadlineWindows
	if len(windows) == 0 {
		windows = DefaultDeadlineWindows
	}
	byDays := make(map[int]domain.Priority, len(windows))
	for _, d := range windows {
		byDays[d] = deadlinePriority(d)
	}

	clock := opts.Clock
	if clock == nil {
		clock = ClockFunc(time.Now)
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &Engine{
		projectRepo: projectRepo,
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		sink:        sink,
		channels:    channels,
		owner:       notify.Recipient{Name: "owner", Email: opts.OwnerEmail, WhatsApp: opts.OwnerWhatsApp},
		windows:     byDays,
		clock:       clock,
		recorder:    recorder,
		logger:      log,
	}
}

// Run executes a single sweep by name
func (e *Engine) Run(ctx context.Context, job string) (*Result, error) {
	var sweep func(context.Context, *zap.Logger, *Result)
	switch job {
	case JobDeadlineReminders:
		sweep = e.deadlineReminders
	case JobOverdueProjects:
		sweep = e.overdueProjects
	case JobInvoiceReminders:
		sweep = e.invoiceReminders
	case JobNotificationCleanup:
		sweep = e.cleanup
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, job)
	}

	log := logger.WithJob(e.logger, job)
	result := &Result{Job: job}
	start := time.Now()

	sweep(ctx, log, result)

	took := time.Since(start)
	e.recorder.SweepCompleted(job, took, result.Errors > 0)
	log.Info("reminder sweep finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("notifications_created", result.NotificationsCreated),
		zap.Int("deleted", result.Deleted),
		zap.Int("channel_failures", result.ChannelFailures),
		zap.Int("errors", result.Errors),
		zap.Duration("duration", took))

	return result, nil
}

func (e *Engine) deadlineReminders(ctx context.Context, log *zap.Logger, result *Result) {
	now := e.clock.Now()
	for _, p := range e.projectRepo.All(ctx) {
		result.Scanned++
		if p.EndDate == nil || p.Status.IsClosed() {
			continue
		}
		days := DaysUntil(now, *p.EndDate)
		priority, ok := e.windows[days]
		if !ok {
			continue
		}

		n := &domain.Notification{
			Type:      domain.NotificationDeadlineReminder,
			Title:     "Project deadline approaching",
			Message:   fmt.Sprintf("%q is due in %s (%s)", p.Title, pluralDays(days), p.EndDate.Format("2006-01-02")),
			ClientID:  p.ClientID,
			ProjectID: p.ID,
			Priority:  priority,
		}
		e.deliver(ctx, log.With(zap.String("projectID", p.ID)), JobDeadlineReminders, n, e.owner, result)
	}
}

func (e *Engine) overdueProjects(ctx context.Context, log *zap.Logger, result *Result) {
	now := e.clock.Now()
	for _, p := range e.projectRepo.All(ctx) {
		result.Scanned++
		if !p.IsOverdue(now) {
			continue
		}

		n := &domain.Notification{
			Type:      domain.NotificationProjectOverdue,
			Title:     "Project overdue",
			Message:   fmt.Sprintf("%q was due on %s and is still %s", p.Title, p.EndDate.Format("2006-01-02"), p.Status),
			ClientID:  p.ClientID,
			ProjectID: p.ID,
			Priority:  domain.PriorityHigh,
		}
		e.deliver(ctx, log.With(zap.String("projectID", p.ID)), JobOverdueProjects, n, e.owner, result)
	}
}

func (e *Engine) invoiceReminders(ctx context.Context, log *zap.Logger, result *Result) {
	now := e.clock.Now()
	for _, inv := range e.invoiceRepo.All(ctx) {
		result.Scanned++
		if inv.Status != domain.InvoiceStatusSent || inv.DueDate == nil || !inv.DueDate.Before(now) {
			continue
		}

		recipient := notify.Recipient{}
		if client, err := e.clientRepo.GetByID(ctx, inv.ClientID); err == nil {
			recipient = notify.Recipient{Name: client.Name, Email: client.Email, WhatsApp: client.WhatsApp}
		} else {
			log.Warn("invoice client not found, reminder will not be delivered",
				zap.String("invoiceID", inv.ID),
				zap.String("clientID", inv.ClientID))
		}

		n := &domain.Notification{
			Type:  domain.NotificationInvoiceOverdue,
			Title: "Invoice payment overdue",
			Message: fmt.Sprintf("Invoice %s for %s was due on %s",
				inv.InvoiceNumber, inv.Total.StringFixed(2), inv.DueDate.Format("2006-01-02")),
			ClientID:  inv.ClientID,
			ProjectID: inv.ProjectID,
			InvoiceID: inv.ID,
			Priority:  domain.PriorityHigh,
		}
		e.deliver(ctx, log.With(zap.String("invoiceID", inv.ID)), JobInvoiceReminders, n, recipient, result)
	}
}

func (e *Engine) cleanup(ctx context.Context, log *zap.Logger, result *Result) {
	deleted, err := e.sink.DeleteExpired(ctx)
	if err != nil {
		result.Errors++
		log.Error("failed to delete expired notifications", zap.Error(err))
		return
	}
	result.Deleted = deleted
}

// deliver stores n and then fans it out to every channel. Failures are
// counted on result and never abort the sweep.
func (e *Engine) deliver(ctx context.Context, log *zap.Logger, job string, n *domain.Notification, to notify.Recipient, result *Result) {
	if err := e.sink.Emit(ctx, n); err != nil {
		result.Errors++
		log.Error("failed to create notification", zap.Error(err))
		return
	}
	result.NotificationsCreated++
	e.recorder.NotificationEmitted(job)

	if len(e.channels) == 0 {
		return
	}

	msg := notify.Message{Subject: n.Title, Body: n.Message}
	var channels domain.NotificationChannels
	for _, ch := range e.channels {
		address := ch.Address(to)
		if address == "" {
			continue
		}

		at := e.clock.Now()
		delivery := domain.ChannelDelivery{Attempted: true, Timestamp: &at}
		if err := ch.Send(ctx, address, msg); err != nil {
			delivery.Error = err.Error()
			result.ChannelFailures++
			log.Warn("channel delivery failed",
				zap.String("channel", ch.Name()),
				zap.String("notificationID", n.ID),
				zap.Error(err))
		} else {
			delivery.Succeeded = true
		}
		e.recorder.ChannelResult(ch.Name(), delivery.Succeeded)

		switch ch.Name() {
		case notify.ChannelEmail:
			channels.Email = delivery
		case notify.ChannelWhatsApp:
			channels.WhatsApp = delivery
		}
	}

	if err := e.sink.RecordDelivery(ctx, n.ID, channels); err != nil {
		result.Errors++
		log.Error("failed to record channel delivery",
			zap.String("notificationID", n.ID),
			zap.Error(err))
	}
}

// DaysUntil returns the number of whole calendar days (UTC) from now to target
func DaysUntil(now, target time.Time) int {
	from := truncateDay(now)
	to := truncateDay(target)
	return int(to.Sub(from).Hours() / 24)
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func deadlinePriority(days int) domain.Priority {
	switch {
	case days <= 1:
		return domain.PriorityUrgent
	case days <= 3:
		return domain.PriorityHigh
	default:
		return domain.PriorityMedium
	}
}

func pluralDays(days int) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}
