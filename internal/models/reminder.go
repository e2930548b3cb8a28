package models

import "time"

const (
	DefaultRepeatInterval = 1
	DefaultSnoozeMinutes  = 10
)

const (
	EventSnoozed      = "snoozed"
	EventAcknowledged = "acknowledged"
)

type Reminder struct {
	ID                 uint `gorm:"primaryKey"`
	MedicationID       uint `gorm:"not null;index"`
	Medication         *Medication
	Time               string     `gorm:"column:time;not null"`
	RepeatInterval     int        `gorm:"not null;default:1"`
	RepeatDays         []string   `gorm:"serializer:json"`
	SpecificDate       *time.Time `gorm:"type:date"`
	StartsOn           *time.Time `gorm:"type:date"`
	Active             bool       `gorm:"not null;index"`
	SnoozeDuration     int        `gorm:"not null;default:10"`
	EndsOn             *time.Time `gorm:"type:date"`
	SnoozedUntil       *time.Time
	LastAcknowledgedAt *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type ReminderEvent struct {
	ID         uint      `gorm:"primaryKey"`
	ReminderID uint      `gorm:"not null;index"`
	Reminder   *Reminder `gorm:"constraint:OnDelete:CASCADE"`
	Kind       string    `gorm:"not null"`
	OccurredAt time.Time `gorm:"not null"`
	Until      *time.Time
	CreatedAt  time.Time
}
