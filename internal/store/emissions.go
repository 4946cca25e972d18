package store

import (
	"context"
	"errors"
	"time"

	"github.com/monocle-dev/carbontrack/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RecordEmission persists one prediction for an existing user.
func (s *Store) RecordEmission(ctx context.Context, userID uint, emission float64, survey datatypes.JSON) (*models.LeaderboardEntry, error) {
	entry := models.LeaderboardEntry{
		UserID:         userID,
		CarbonEmission: emission,
		DateRecorded:   time.Now().UTC(),
		Survey:         survey,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrUserNotFound
		}
		return tx.Create(&entry).Error
	})

	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// History returns the user's entries, oldest first.
func (s *Store) History(ctx context.Context, userID uint) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry

	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date_recorded ASC").
		Order("id ASC").
		Find(&entries).Error

	return entries, err
}

type Standing struct {
	UserID       uint
	Name         string
	City         string
	AvgEmission  float64
	EntriesCount int64
}

// Leaderboard averages every user's entries, lowest average first. Users
// that no longer exist are left out.
func (s *Store) Leaderboard(ctx context.Context) ([]Standing, error) {
	var standings []Standing

	err := s.db.WithContext(ctx).
		Table("leaderboard_entries").
		Select("leaderboard_entries.user_id AS user_id, users.name AS name, users.city AS city, " +
			"AVG(leaderboard_entries.carbon_emission) AS avg_emission, COUNT(leaderboard_entries.id) AS entries_count").
		Joins("JOIN users ON users.id = leaderboard_entries.user_id AND users.deleted_at IS NULL").
		Group("leaderboard_entries.user_id, users.name, users.city").
		Order("avg_emission ASC").
		Order("leaderboard_entries.user_id ASC").
		Scan(&standings).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return standings, nil
}
