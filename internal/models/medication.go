package models

import "time"

const (
	IntervalDay    = "DAY"
	IntervalHour   = "HOUR"
	IntervalWeek   = "WEEK"
	IntervalBiWeek = "BI-WEEK"
)

const (
	DefaultDosage = 1
	DefaultUnit   = "_"
)

type Medication struct {
	ID                    uint       `gorm:"primaryKey"`
	Name                  string     `gorm:"not null"`
	Image                 string     `gorm:"not null;default:''"`
	ColorID               *uint      `gorm:"uniqueIndex:uidx_medications_color"`
	Color                 *Color     `gorm:"constraint:OnDelete:SET NULL"`
	Dosage                int        `gorm:"not null;default:1"`
	Unit                  string     `gorm:"not null;default:_"`
	Frequency             int        `gorm:"not null"`
	FrequencyTimeInterval string     `gorm:"not null;default:DAY"`
	Reminders             []Reminder `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func FrequencyTimeIntervals() []string {
	return []string{IntervalDay, IntervalHour, IntervalWeek, IntervalBiWeek}
}
