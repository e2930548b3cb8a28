package services

import (
	"context"
	"sort"
	"time"

	"github.com/terraincognita07/medport/internal/models"
	"gorm.io/gorm"
)

// memoryStore backs the repository interfaces with maps.
type memoryStore struct {
	colors      map[uint]models.Color
	medications map[uint]models.Medication
	reminders   map[uint]models.Reminder
	events      []models.ReminderEvent
	nextID      uint
	listErr     error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		colors:      map[uint]models.Color{},
		medications: map[uint]models.Medication{},
		reminders:   map[uint]models.Reminder{},
	}
}

func (store *memoryStore) id() uint {
	store.nextID++
	return store.nextID
}

type memoryColors struct{ store *memoryStore }
type memoryMedications struct{ store *memoryStore }
type memoryReminders struct{ store *memoryStore }

func (repo memoryColors) List(context.Context) ([]models.Color, error) {
	colors := make([]models.Color, 0, len(repo.store.colors))
	for _, color := range repo.store.colors {
		colors = append(colors, color)
	}
	sort.Slice(colors, func(i, j int) bool { return colors[i].ID < colors[j].ID })
	return colors, nil
}

func (repo memoryColors) FindByID(_ context.Context, colorID uint) (models.Color, error) {
	color, ok := repo.store.colors[colorID]
	if !ok {
		return models.Color{}, gorm.ErrRecordNotFound
	}
	return color, nil
}

func (repo memoryColors) Create(_ context.Context, color *models.Color) error {
	color.ID = repo.store.id()
	repo.store.colors[color.ID] = *color
	return nil
}

func (repo memoryColors) Save(_ context.Context, color *models.Color) error {
	repo.store.colors[color.ID] = *color
	return nil
}

func (repo memoryColors) Delete(_ context.Context, colorID uint) error {
	if _, ok := repo.store.colors[colorID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(repo.store.colors, colorID)
	for id, medication := range repo.store.medications {
		if medication.ColorID != nil && *medication.ColorID == colorID {
			medication.ColorID = nil
			repo.store.medications[id] = medication
		}
	}
	return nil
}

func (repo memoryMedications) List(context.Context) ([]models.Medication, error) {
	medications := make([]models.Medication, 0, len(repo.store.medications))
	for _, medication := range repo.store.medications {
		medications = append(medications, medication)
	}
	sort.Slice(medications, func(i, j int) bool { return medications[i].ID < medications[j].ID })
	return medications, nil
}

func (repo memoryMedications) FindByID(_ context.Context, medicationID uint) (models.Medication, error) {
	medication, ok := repo.store.medications[medicationID]
	if !ok {
		return models.Medication{}, gorm.ErrRecordNotFound
	}
	if medication.ColorID != nil {
		if color, ok := repo.store.colors[*medication.ColorID]; ok {
			medication.Color = &color
		}
	}
	return medication, nil
}

func (repo memoryMedications) Create(_ context.Context, medication *models.Medication) error {
	medication.ID = repo.store.id()
	repo.store.medications[medication.ID] = *medication
	return nil
}

func (repo memoryMedications) Save(_ context.Context, medication *models.Medication) error {
	repo.store.medications[medication.ID] = *medication
	return nil
}

func (repo memoryMedications) Delete(_ context.Context, medicationID uint) error {
	if _, ok := repo.store.medications[medicationID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(repo.store.medications, medicationID)
	for id, reminder := range repo.store.reminders {
		if reminder.MedicationID == medicationID {
			delete(repo.store.reminders, id)
		}
	}
	return nil
}

func (repo memoryMedications) ColorInUse(_ context.Context, colorID uint, exceptMedicationID uint) (bool, error) {
	for _, medication := range repo.store.medications {
		if medication.ID != exceptMedicationID && medication.ColorID != nil && *medication.ColorID == colorID {
			return true, nil
		}
	}
	return false, nil
}

func (repo memoryReminders) sorted(keep func(models.Reminder) bool) []models.Reminder {
	reminders := make([]models.Reminder, 0)
	for _, reminder := range repo.store.reminders {
		if keep(reminder) {
			if medication, ok := repo.store.medications[reminder.MedicationID]; ok {
				reminder.Medication = &medication
			}
			reminders = append(reminders, reminder)
		}
	}
	sort.Slice(reminders, func(i, j int) bool { return reminders[i].ID < reminders[j].ID })
	return reminders
}

func (repo memoryReminders) List(context.Context) ([]models.Reminder, error) {
	return repo.sorted(func(models.Reminder) bool { return true }), nil
}

func (repo memoryReminders) ListActive(_ context.Context, medicationID *uint) ([]models.Reminder, error) {
	if repo.store.listErr != nil {
		return nil, repo.store.listErr
	}
	return repo.sorted(func(reminder models.Reminder) bool {
		if !reminder.Active {
			return false
		}
		if _, ok := repo.store.medications[reminder.MedicationID]; !ok {
			return false
		}
		return medicationID == nil || reminder.MedicationID == *medicationID
	}), nil
}

func (repo memoryReminders) ListByMedication(_ context.Context, medicationID uint) ([]models.Reminder, error) {
	return repo.sorted(func(reminder models.Reminder) bool { return reminder.MedicationID == medicationID }), nil
}

func (repo memoryReminders) FindByID(_ context.Context, reminderID uint) (models.Reminder, error) {
	reminder, ok := repo.store.reminders[reminderID]
	if !ok {
		return models.Reminder{}, gorm.ErrRecordNotFound
	}
	if medication, ok := repo.store.medications[reminder.MedicationID]; ok {
		reminder.Medication = &medication
	}
	return reminder, nil
}

func (repo memoryReminders) Create(_ context.Context, reminder *models.Reminder) error {
	reminder.ID = repo.store.id()
	stored := *reminder
	stored.Medication = nil
	repo.store.reminders[reminder.ID] = stored
	return nil
}

func (repo memoryReminders) Save(_ context.Context, reminder *models.Reminder) error {
	stored := *reminder
	stored.Medication = nil
	repo.store.reminders[reminder.ID] = stored
	return nil
}

func (repo memoryReminders) Delete(_ context.Context, reminderID uint) error {
	if _, ok := repo.store.reminders[reminderID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(repo.store.reminders, reminderID)
	return nil
}

func (repo memoryReminders) UpdateSnooze(_ context.Context, reminderID uint, at time.Time, until time.Time) error {
	reminder, ok := repo.store.reminders[reminderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	reminder.SnoozedUntil = &until
	repo.store.reminders[reminderID] = reminder
	repo.store.events = append(repo.store.events, models.ReminderEvent{
		ID: repo.store.id(), ReminderID: reminderID, Kind: models.EventSnoozed, OccurredAt: at, Until: &until,
	})
	return nil
}

func (repo memoryReminders) UpdateAcknowledged(_ context.Context, reminderID uint, firedAt time.Time) error {
	reminder, ok := repo.store.reminders[reminderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	reminder.LastAcknowledgedAt = &firedAt
	reminder.SnoozedUntil = nil
	repo.store.reminders[reminderID] = reminder
	repo.store.events = append(repo.store.events, models.ReminderEvent{
		ID: repo.store.id(), ReminderID: reminderID, Kind: models.EventAcknowledged, OccurredAt: firedAt,
	})
	return nil
}

func (repo memoryReminders) ListEvents(_ context.Context, reminderID uint) ([]models.ReminderEvent, error) {
	events := make([]models.ReminderEvent, 0)
	for _, event := range repo.store.events {
		if event.ReminderID == reminderID {
			events = append(events, event)
		}
	}
	return events, nil
}

func intPtr(value int) *int          { return &value }
func uintPtr(value uint) *uint       { return &value }
func stringPtr(value string) *string { return &value }
func boolPtr(value bool) *bool       { return &value }
