package models

import "time"

// BaseModel is gorm.Model without soft deletes. Rows built on it are removed
// for real so unique indexes can be reused.
type BaseModel struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
