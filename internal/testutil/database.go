// Package testutil holds shared fixtures for tests. It must only be imported
// from _test.go files.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/monocle-dev/carbontrack/db"
	"github.com/monocle-dev/carbontrack/internal/auth"
	"github.com/monocle-dev/carbontrack/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewTestDB opens a private in-memory sqlite database with every table
// migrated. The database disappears when the test finishes.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	url := fmt.Sprintf("sqlite://file:testonlydb_%s?mode=memory&cache=shared", uuid.NewString())

	database, err := db.ConnectDatabase(url)
	require.NoError(t, err)
	require.NoError(t, db.MigrateDatabase(database))

	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return database
}

// CreateUser inserts a user whose password is "password123".
func CreateUser(t *testing.T, database *gorm.DB, email, name, city string, admin bool) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		City:         city,
		IsAdmin:      admin,
	}
	require.NoError(t, database.WithContext(context.Background()).Create(user).Error)

	return user
}
