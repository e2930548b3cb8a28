package db

import (
	"context"
	"time"

	"github.com/terraincognita07/medport/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReminderRepository struct {
	database *gorm.DB
}

func NewReminderRepository(database *gorm.DB) *ReminderRepository {
	return &ReminderRepository{database: database}
}

func (repo *ReminderRepository) List(ctx context.Context) ([]models.Reminder, error) {
	reminders := make([]models.Reminder, 0)
	if err := repo.database.WithContext(ctx).Order("id ASC").Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

// ListActive returns active reminders whose medication still exists, with
// the medication preloaded. A non-nil medicationID narrows the result.
func (repo *ReminderRepository) ListActive(ctx context.Context, medicationID *uint) ([]models.Reminder, error) {
	reminders := make([]models.Reminder, 0)
	query := repo.database.WithContext(ctx).
		Preload("Medication").
		Where("active = ?", true).
		Where("EXISTS (SELECT 1 FROM medications WHERE medications.id = reminders.medication_id)")
	if medicationID != nil {
		query = query.Where("medication_id = ?", *medicationID)
	}
	if err := query.Order("medication_id ASC, id ASC").Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

func (repo *ReminderRepository) ListByMedication(ctx context.Context, medicationID uint) ([]models.Reminder, error) {
	reminders := make([]models.Reminder, 0)
	if err := repo.database.WithContext(ctx).
		Where("medication_id = ?", medicationID).
		Order("id ASC").
		Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

func (repo *ReminderRepository) FindByID(ctx context.Context, reminderID uint) (models.Reminder, error) {
	reminder := models.Reminder{}
	if err := repo.database.WithContext(ctx).Preload("Medication").First(&reminder, reminderID).Error; err != nil {
		return models.Reminder{}, err
	}
	return reminder, nil
}

func (repo *ReminderRepository) Create(ctx context.Context, reminder *models.Reminder) error {
	return repo.database.WithContext(ctx).Omit(clause.Associations).Create(reminder).Error
}

func (repo *ReminderRepository) Save(ctx context.Context, reminder *models.Reminder) error {
	return repo.database.WithContext(ctx).Omit(clause.Associations).Save(reminder).Error
}

func (repo *ReminderRepository) Delete(ctx context.Context, reminderID uint) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("reminder_id = ?", reminderID).Delete(&models.ReminderEvent{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Reminder{}, reminderID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// UpdateSnooze stores the snooze deadline and records a snoozed event.
func (repo *ReminderRepository) UpdateSnooze(ctx context.Context, reminderID uint, at time.Time, until time.Time) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		until = until.UTC()
		result := tx.Model(&models.Reminder{}).Where("id = ?", reminderID).Update("snoozed_until", until)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		event := models.ReminderEvent{
			ReminderID: reminderID,
			Kind:       models.EventSnoozed,
			OccurredAt: at.UTC(),
			Until:      &until,
		}
		return tx.Create(&event).Error
	})
}

// UpdateAcknowledged stores the acknowledgement, clears any snooze and
// records an acknowledged event.
func (repo *ReminderRepository) UpdateAcknowledged(ctx context.Context, reminderID uint, firedAt time.Time) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Reminder{}).Where("id = ?", reminderID).Updates(map[string]any{
			"last_acknowledged_at": firedAt.UTC(),
			"snoozed_until":        nil,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		event := models.ReminderEvent{
			ReminderID: reminderID,
			Kind:       models.EventAcknowledged,
			OccurredAt: firedAt.UTC(),
		}
		return tx.Create(&event).Error
	})
}

func (repo *ReminderRepository) ListEvents(ctx context.Context, reminderID uint) ([]models.ReminderEvent, error) {
	events := make([]models.ReminderEvent, 0)
	if err := repo.database.WithContext(ctx).
		Where("reminder_id = ?", reminderID).
		Order("occurred_at ASC, id ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// ListEventHistory returns events of every reminder with occurred_at in
// [from, to), oldest first, with reminder and medication preloaded. Nil
// bounds are open.
func (repo *ReminderRepository) ListEventHistory(ctx context.Context, from *time.Time, to *time.Time) ([]models.ReminderEvent, error) {
	events := make([]models.ReminderEvent, 0)
	query := repo.database.WithContext(ctx).Preload("Reminder.Medication")
	if from != nil {
		query = query.Where("occurred_at >= ?", from.UTC())
	}
	if to != nil {
		query = query.Where("occurred_at < ?", to.UTC())
	}
	if err := query.Order("occurred_at ASC, id ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
