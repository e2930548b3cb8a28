package api

import (
	"errors"
	"log/slog"
	"time"

	"github.com/terraincognita07/medport/internal/clock"
	"github.com/terraincognita07/medport/internal/db"
	"github.com/terraincognita07/medport/internal/services"
	"gorm.io/gorm"
)

func NewHandler(database *gorm.DB, options Options) (*Handler, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	if options.Location == nil {
		options.Location = time.UTC
	}
	if options.Clock == nil {
		options.Clock = clock.NewSystem(options.Location)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	handler := &Handler{
		db:            database,
		clock:         options.Clock,
		location:      options.Location,
		tokenThrottle: newFailureThrottle(defaultTokenFailureLimit, defaultTokenFailureWindow),
		metrics:       options.Metrics,
		logger:        options.Logger.With("component", "api"),
	}
	if options.Secret != "" {
		handler.secretKey = []byte(options.Secret)
	}
	return handler.withDependencies(database), nil
}

func (handler *Handler) withDependencies(database *gorm.DB) *Handler {
	handler.repositories = db.NewRepositories(database)
	handler.colors = services.NewColorService(handler.repositories.Colors)
	handler.medications = services.NewMedicationService(handler.repositories.Medications, handler.repositories.Colors)
	handler.reminders = services.NewReminderService(handler.repositories.Reminders, handler.repositories.Medications, handler.clock, handler.location)
	handler.scheduler = services.NewSchedulerService(handler.repositories.Reminders, handler.clock, handler.location, handler.metrics)
	handler.exports = services.NewExportService(handler.repositories.Reminders, handler.location)
	handler.stats = services.NewStatsService(handler.repositories.Reminders)
	return handler
}

// Scheduler exposes the due-check facade shared with the background poller.
func (handler *Handler) Scheduler() *services.SchedulerService {
	return handler.scheduler
}
