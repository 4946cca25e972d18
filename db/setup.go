package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/monocle-dev/carbontrack/internal/logging"
	"github.com/monocle-dev/carbontrack/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialector picks the gorm driver from the scheme of a database URL:
// sqlite://<path>, postgres:// or postgresql://, mysql://<dsn>.
func Dialector(url string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(url, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(url, "sqlite://")), nil
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url), nil
	case strings.HasPrefix(url, "mysql://"):
		return mysql.Open(strings.TrimPrefix(url, "mysql://")), nil
	default:
		return nil, fmt.Errorf("unsupported database url %q", url)
	}
}

func ConnectDatabase(url string) (*gorm.DB, error) {
	dialector, err := Dialector(url)

	if err != nil {
		return nil, err
	}

	return Open(dialector)
}

// Open connects with the shared gorm settings. Driver errors are translated
// so duplicate keys surface as gorm.ErrDuplicatedKey.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	gormLogger := logger.New(
		logging.Log,
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	database, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})

	if err != nil {
		return nil, err
	}

	return database, nil
}

func MigrateDatabase(database *gorm.DB) error {
	models := []interface{}{
		&models.User{},
		&models.LeaderboardEntry{},
		&models.Post{},
		&models.Like{},
		&models.Comment{},
	}

	for _, model := range models {
		if err := database.AutoMigrate(model); err != nil {
			return fmt.Errorf("migrate %T: %w", model, err)
		}
	}

	return nil
}
