package models

import "gorm.io/gorm"

type User struct {
	gorm.Model

	Email        string `gorm:"uniqueIndex;size:100;not null"`
	PasswordHash string `gorm:"not null"`
	Name         string `gorm:"size:100"`
	City         string `gorm:"size:100"`
	IsAdmin      bool   `gorm:"not null;default:false"`
}
