package app

import (
	"time"

	"github.com/pkg/errors"
	"github.com/talkincode/storefront/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func getDatabase(cfg config.DBConfig) (*gorm.DB, error) {
	if cfg.Type != "postgres" {
		return nil, errors.Errorf("unsupported database type %q", cfg.Type)
	}

	level := logger.Warn
	if cfg.Debug {
		level = logger.Info
	}
	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger: logger.Default.LogMode(level),
		// unique and foreign key violations surface as gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "database pool")
	}
	sqlDB.SetMaxOpenConns(cfg.MaxConn)
	sqlDB.SetMaxIdleConns(cfg.IdleConn)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}
