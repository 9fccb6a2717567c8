package database

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZJUSCT/TopTSP/internal/database/models"
	"go.uber.org/zap"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Init(dsn string) (*gorm.DB, error) {
	if isFileDSN(dsn) {
		if _, err := os.Stat(dsn); os.IsNotExist(err) {
			zap.S().Infof("database file not found at '%s', creating directory for it.", dsn)
			// Ensure the directory for the database file exists.
			dbDir := filepath.Dir(dsn)
			if err := os.MkdirAll(dbDir, 0755); err != nil {
				return nil, err
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: newGormLogger(zapWriter{}),
	})
	if err != nil {
		return nil, err
	}

	// SQLite has a single writer; one connection serializes every transaction
	// and keeps in-memory databases alive for the life of the pool.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	// Auto migrate schema
	err = db.AutoMigrate(
		&models.User{},
		&models.Instance{},
		&models.Submission{},
		&models.BestResult{},
		&models.Setting{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// zapWriter routes gorm's log lines to the global zap logger.
type zapWriter struct{}

func (zapWriter) Printf(format string, args ...interface{}) {
	zap.S().Warnf(format, args...)
}

// newGormLogger reports warnings and slow queries. Lookups of missing rows are
// expected (unset settings, first submission of a user) and stay silent.
func newGormLogger(w logger.Writer) logger.Interface {
	return logger.New(w, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

func isFileDSN(dsn string) bool {
	return dsn != ":memory:" && !strings.HasPrefix(dsn, "file:")
}
