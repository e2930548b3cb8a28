package db

import (
	"context"

	"github.com/terraincognita07/medport/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MedicationRepository struct {
	database *gorm.DB
}

func NewMedicationRepository(database *gorm.DB) *MedicationRepository {
	return &MedicationRepository{database: database}
}

func (repo *MedicationRepository) List(ctx context.Context) ([]models.Medication, error) {
	medications := make([]models.Medication, 0)
	if err := repo.database.WithContext(ctx).
		Preload("Color").
		Preload("Reminders", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		Order("id ASC").
		Find(&medications).Error; err != nil {
		return nil, err
	}
	return medications, nil
}

func (repo *MedicationRepository) FindByID(ctx context.Context, medicationID uint) (models.Medication, error) {
	medication := models.Medication{}
	if err := repo.database.WithContext(ctx).
		Preload("Color").
		Preload("Reminders", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		First(&medication, medicationID).Error; err != nil {
		return models.Medication{}, err
	}
	return medication, nil
}

func (repo *MedicationRepository) Create(ctx context.Context, medication *models.Medication) error {
	return repo.database.WithContext(ctx).Omit(clause.Associations).Create(medication).Error
}

func (repo *MedicationRepository) Save(ctx context.Context, medication *models.Medication) error {
	return repo.database.WithContext(ctx).Omit(clause.Associations).Save(medication).Error
}

// ColorInUse reports whether another medication already carries colorID.
func (repo *MedicationRepository) ColorInUse(ctx context.Context, colorID uint, exceptMedicationID uint) (bool, error) {
	var count int64
	if err := repo.database.WithContext(ctx).Model(&models.Medication{}).
		Where("color_id = ? AND id <> ?", colorID, exceptMedicationID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete removes the medication together with its reminders and their events.
func (repo *MedicationRepository) Delete(ctx context.Context, medicationID uint) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reminderIDs := tx.Model(&models.Reminder{}).Select("id").Where("medication_id = ?", medicationID)
		if err := tx.Where("reminder_id IN (?)", reminderIDs).Delete(&models.ReminderEvent{}).Error; err != nil {
			return err
		}
		if err := tx.Where("medication_id = ?", medicationID).Delete(&models.Reminder{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Medication{}, medicationID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
