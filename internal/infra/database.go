package infra

import (
	"fmt"

	"repairtrack/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the configured store, runs AutoMigrate for every model and
// then applies the idempotent patches AutoMigrate cannot express.
// driver is "postgres" or "sqlite"; for sqlite dsn is a file path or a
// "file::memory:" URI.
func NewDatabase(driver, dsn string, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	logLevel := logger.Silent
	if debug {
		logLevel = logger.Warn
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// One writer at a time; also keeps in-memory databases alive.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
	}

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates or updates the schema. Safe to call repeatedly.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Machine{}, &model.RepairEntry{}); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs DDL that GORM tags cannot describe. Both postgres
// and sqlite accept partial indexes with IF NOT EXISTS.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// at most one ongoing repair per machine
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_repair_entries_one_ongoing
		    ON repair_entries (machine_id) WHERE status = 'ongoing'`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
