package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/terraincognita07/medport/internal/models"
)

const (
	maxMedicationNameLength  = 255
	maxMedicationImageLength = 1024
	maxMedicationUnitLength  = 255
)

type MedicationRepository interface {
	List(ctx context.Context) ([]models.Medication, error)
	FindByID(ctx context.Context, medicationID uint) (models.Medication, error)
	Create(ctx context.Context, medication *models.Medication) error
	Save(ctx context.Context, medication *models.Medication) error
	Delete(ctx context.Context, medicationID uint) error
	ColorInUse(ctx context.Context, colorID uint, exceptMedicationID uint) (bool, error)
}

type MedicationService struct {
	medications MedicationRepository
	colors      ColorRepository
}

func NewMedicationService(medications MedicationRepository, colors ColorRepository) *MedicationService {
	return &MedicationService{medications: medications, colors: colors}
}

func (service *MedicationService) List(ctx context.Context) ([]models.Medication, error) {
	medications, err := service.medications.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	return medications, nil
}

func (service *MedicationService) Get(ctx context.Context, medicationID uint) (models.Medication, error) {
	medication, err := service.medications.FindByID(ctx, medicationID)
	if err != nil {
		return models.Medication{}, notFoundOr(err, "medication", medicationID)
	}
	return medication, nil
}

func (service *MedicationService) Create(ctx context.Context, input MedicationInput) (models.Medication, error) {
	medication := models.Medication{
		Dosage:                models.DefaultDosage,
		Unit:                  models.DefaultUnit,
		FrequencyTimeInterval: models.IntervalDay,
	}
	if err := service.apply(ctx, &medication, input, ModeCreate); err != nil {
		return models.Medication{}, err
	}
	if err := service.medications.Create(ctx, &medication); err != nil {
		return models.Medication{}, fmt.Errorf("create medication: %w", err)
	}
	return service.Get(ctx, medication.ID)
}

func (service *MedicationService) Update(ctx context.Context, medicationID uint, input MedicationInput, mode WriteMode) (models.Medication, error) {
	medication, err := service.Get(ctx, medicationID)
	if err != nil {
		return models.Medication{}, err
	}
	if err := service.apply(ctx, &medication, input, mode); err != nil {
		return models.Medication{}, err
	}
	if err := service.medications.Save(ctx, &medication); err != nil {
		return models.Medication{}, fmt.Errorf("save medication %d: %w", medicationID, err)
	}
	return service.Get(ctx, medicationID)
}

// Delete removes the medication with its reminders.
func (service *MedicationService) Delete(ctx context.Context, medicationID uint) error {
	return notFoundOr(service.medications.Delete(ctx, medicationID), "medication", medicationID)
}

func (service *MedicationService) apply(ctx context.Context, medication *models.Medication, input MedicationInput, mode WriteMode) error {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return invalidField("name", "must not be blank")
		}
		if len(name) > maxMedicationNameLength {
			return invalidField("name", "must be at most %d characters", maxMedicationNameLength)
		}
		medication.Name = name
	} else if mode.requiresAll() {
		return invalidField("name", "is required")
	}

	if input.Frequency != nil {
		if *input.Frequency <= 0 {
			return invalidField("frequency", "must be positive")
		}
		medication.Frequency = *input.Frequency
	} else if mode.requiresAll() {
		return invalidField("frequency", "is required")
	}

	if input.Image != nil {
		image := strings.TrimSpace(*input.Image)
		if len(image) > maxMedicationImageLength {
			return invalidField("image", "must be at most %d characters", maxMedicationImageLength)
		}
		medication.Image = image
	}

	if input.Dosage != nil {
		if *input.Dosage <= 0 {
			return invalidField("dosage", "must be positive")
		}
		medication.Dosage = *input.Dosage
	}

	if input.Unit != nil {
		unit := strings.TrimSpace(*input.Unit)
		if len(unit) > maxMedicationUnitLength {
			return invalidField("unit", "must be at most %d characters", maxMedicationUnitLength)
		}
		if unit == "" {
			unit = models.DefaultUnit
		}
		medication.Unit = unit
	}

	if input.FrequencyTimeInterval != nil {
		interval := strings.ToUpper(strings.TrimSpace(*input.FrequencyTimeInterval))
		if !slices.Contains(models.FrequencyTimeIntervals(), interval) {
			return invalidField("frequency_time_interval", "must be one of %s", strings.Join(models.FrequencyTimeIntervals(), ", "))
		}
		medication.FrequencyTimeInterval = interval
	}

	if input.ColorID.Set {
		if input.ColorID.Value == nil {
			medication.ColorID = nil
			medication.Color = nil
			return nil
		}
		colorID := *input.ColorID.Value
		if _, err := service.colors.FindByID(ctx, colorID); err != nil {
			if notFound := notFoundOr(err, "color", colorID); isNotFound(notFound) {
				return invalidField("color_id", "color %d does not exist", colorID)
			}
			return fmt.Errorf("load color %d: %w", colorID, err)
		}
		inUse, err := service.medications.ColorInUse(ctx, colorID, medication.ID)
		if err != nil {
			return fmt.Errorf("check color %d usage: %w", colorID, err)
		}
		if inUse {
			return invalidField("color_id", "color %d already tags another medication", colorID)
		}
		medication.ColorID = &colorID
		medication.Color = nil
	}
	return nil
}
