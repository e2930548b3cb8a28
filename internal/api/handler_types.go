package api

import (
	"log/slog"
	"time"

	"github.com/terraincognita07/medport/internal/clock"
	"github.com/terraincognita07/medport/internal/db"
	"github.com/terraincognita07/medport/internal/metrics"
	"github.com/terraincognita07/medport/internal/services"
	"gorm.io/gorm"
)

const (
	contextSubjectKey       = "token_subject"
	defaultOccurrenceLimit  = 10
	invalidRulesCountHeader = "X-Invalid-Rules"
)

type Handler struct {
	db            *gorm.DB
	repositories  *db.Repositories
	colors        *services.ColorService
	medications   *services.MedicationService
	reminders     *services.ReminderService
	scheduler     *services.SchedulerService
	exports       *services.ExportService
	stats         *services.StatsService
	clock         clock.Clock
	location      *time.Location
	secretKey     []byte
	tokenThrottle *failureThrottle
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

type Options struct {
	Location *time.Location
	Clock    clock.Clock
	// Secret enables bearer-token auth on /api when non-empty.
	Secret  string
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}
