package models

import (
	"time"

	"gorm.io/datatypes"
)

// LeaderboardEntry is one recorded prediction. It is never updated.
type LeaderboardEntry struct {
	ID             uint      `gorm:"primaryKey"`
	UserID         uint      `gorm:"not null;index"`
	CarbonEmission float64   `gorm:"not null"`
	DateRecorded   time.Time `gorm:"not null;index"`
	Survey         datatypes.JSON

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
