package db

import "gorm.io/gorm"

type Repositories struct {
	Colors      *ColorRepository
	Medications *MedicationRepository
	Reminders   *ReminderRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Colors:      NewColorRepository(database),
		Medications: NewMedicationRepository(database),
		Reminders:   NewReminderRepository(database),
	}
}
