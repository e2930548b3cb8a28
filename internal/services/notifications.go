package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/terraincognita07/medport/internal/i18n"
	"github.com/terraincognita07/medport/internal/metrics"
	"github.com/terraincognita07/medport/internal/models"
	"github.com/terraincognita07/medport/internal/schedule"
	"golang.org/x/time/rate"
)

const maxRememberedNotifications = 500

// Sender delivers one rendered notification.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// DueSource is the part of the scheduler the poller needs.
type DueSource interface {
	Now() time.Time
	DueReminders(ctx context.Context, at time.Time, medicationID *uint) ([]ReminderEvaluation, error)
}

type NotificationOptions struct {
	Spec       string
	Language   string
	RatePerSec int
	Location   *time.Location
}

// NotificationService polls the scheduler on a cron spec and sends each due
// reminder once per firing.
type NotificationService struct {
	source   DueSource
	sender   Sender
	messages *i18n.Manager
	language string
	spec     string
	location *time.Location
	limiter  *rate.Limiter
	metrics  *metrics.Metrics
	logger   *slog.Logger

	mu   sync.Mutex
	sent map[string]time.Time
}

func NewNotificationService(source DueSource, sender Sender, messages *i18n.Manager, options NotificationOptions, m *metrics.Metrics, logger *slog.Logger) *NotificationService {
	if options.Location == nil {
		options.Location = time.UTC
	}
	if options.RatePerSec <= 0 {
		options.RatePerSec = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{
		source:   source,
		sender:   sender,
		messages: messages,
		language: messages.NormalizeLanguage(options.Language),
		spec:     options.Spec,
		location: options.Location,
		limiter:  rate.NewLimiter(rate.Limit(options.RatePerSec), options.RatePerSec),
		metrics:  m,
		logger:   logger.With("component", "notifications"),
		sent:     make(map[string]time.Time),
	}
}

// Start registers the poll with cron and stops it when ctx is done.
func (service *NotificationService) Start(ctx context.Context) error {
	if service.sender == nil {
		return errors.New("notifications: no sender configured")
	}

	scheduler := cron.New(cron.WithLocation(service.location), cron.WithChain(service.jobWrappers()...))
	if _, err := scheduler.AddFunc(service.spec, func() {
		service.Poll(ctx)
	}); err != nil {
		return fmt.Errorf("notifications: schedule %q: %w", service.spec, err)
	}
	scheduler.Start()
	service.logger.Info("due poller started", "spec", service.spec)

	go func() {
		<-ctx.Done()
		stopped := scheduler.Stop()
		<-stopped.Done()
		service.logger.Info("due poller stopped")
	}()
	return nil
}

// jobWrappers keep a panicking poll from taking the process down; the next
// tick runs normally.
func (service *NotificationService) jobWrappers() []cron.JobWrapper {
	panics := slog.NewLogLogger(service.logger.Handler(), slog.LevelError)
	return []cron.JobWrapper{cron.Recover(cron.PrintfLogger(panics))}
}

// Poll sends every reminder that is due now and not yet delivered for its
// current firing. It returns the number of messages sent.
func (service *NotificationService) Poll(ctx context.Context) int {
	started := time.Now()
	defer func() {
		service.metrics.ObservePoll(time.Since(started))
	}()

	now := service.source.Now()
	due, err := service.source.DueReminders(ctx, now, nil)
	if err != nil {
		service.logger.Warn("due check reported errors", "error", err)
	}

	sentCount := 0
	for _, evaluation := range due {
		if evaluation.State != schedule.Due || evaluation.Occurrence == nil {
			continue
		}

		key, again := firingKey(evaluation)
		if !service.shouldSend(key, now) {
			continue
		}

		if err := service.limiter.Wait(ctx); err != nil {
			service.logger.Warn("notification throttle interrupted", "error", err)
			return sentCount
		}

		message := service.render(evaluation, again)
		if err := service.sender.Send(ctx, message); err != nil {
			service.forget(key)
			service.metrics.ObserveNotification("failed")
			service.logger.Error("send reminder failed", "reminder_id", evaluation.Reminder.ID, "error", err)
			continue
		}
		service.metrics.ObserveNotification("sent")
		sentCount++
	}
	return sentCount
}

// firingKey identifies one firing: the occurrence itself, or the moment a
// snooze on that occurrence expired.
func firingKey(evaluation ReminderEvaluation) (string, bool) {
	occurrence := *evaluation.Occurrence
	key := fmt.Sprintf("%d:%d", evaluation.Reminder.ID, occurrence.Unix())

	until := evaluation.Reminder.SnoozedUntil
	if until != nil && !until.Before(occurrence) {
		return fmt.Sprintf("%s:%d", key, until.Unix()), true
	}
	return key, false
}

func (service *NotificationService) render(evaluation ReminderEvaluation, again bool) string {
	name := fmt.Sprintf("#%d", evaluation.Reminder.MedicationID)
	dosage := models.DefaultDosage
	unit := service.messages.Translate(service.language, "notification.unit_default")
	if medication := evaluation.Reminder.Medication; medication != nil {
		name = medication.Name
		dosage = medication.Dosage
		if medication.Unit != "" && medication.Unit != models.DefaultUnit {
			unit = medication.Unit
		}
	}

	key := "notification.due"
	if again {
		key = "notification.due_again"
	}
	scheduled := evaluation.Occurrence.In(service.location).Format("15:04")
	return service.messages.Translatef(service.language, key, name, dosage, unit, scheduled)
}

func (service *NotificationService) shouldSend(key string, now time.Time) bool {
	service.mu.Lock()
	defer service.mu.Unlock()

	if _, ok := service.sent[key]; ok {
		return false
	}

	if len(service.sent) >= maxRememberedNotifications {
		cutoff := now.Add(-24 * time.Hour)
		for sentKey, sentAt := range service.sent {
			if sentAt.Before(cutoff) {
				delete(service.sent, sentKey)
			}
		}
	}
	service.sent[key] = now
	return true
}

func (service *NotificationService) forget(key string) {
	service.mu.Lock()
	defer service.mu.Unlock()
	delete(service.sent, key)
}
