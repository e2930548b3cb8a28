package models

import "time"

const DefaultColorName = "Untitled"

type Color struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null;default:Untitled"`
	Red       int    `gorm:"not null"`
	Green     int    `gorm:"not null"`
	Blue      int    `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
