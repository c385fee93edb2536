package database

import (
	"fmt"
	"time"

	"algoritmia_backend/internal/config"
	"algoritmia_backend/internal/model"
	applogger "algoritmia_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN returns the configured connection string, building it from the
// individual fields when no full DSN is set.
func DSN(cfg *config.DatabaseConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=UTC",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)
}

func InitDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(mysql.Open(DSN(cfg)), &gorm.Config{
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
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	applogger.Log.Info("Database connection established", zap.String("host", cfg.Host))

	if err := Migrate(db); err != nil {
		return nil, err
	}

	applogger.Log.Info("Database migration completed")
	return db, nil
}

// Migrate creates or updates every table of the schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.CourseSchedule{},
		&model.TeacherAssignment{},
		&model.StudentEnrollment{},
		&model.Difficulty{},
		&model.StudentDifficulty{},
		&model.Mission{},
		&model.MissionCompletion{},
		&model.Question{},
		&model.ReinforcementSession{},
		&model.AuditLog{},
	)
}
