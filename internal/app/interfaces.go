package app

import (
	"github.com/robfig/cron/v3"
	"github.com/talkincode/storefront/config"
	"gorm.io/gorm"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// AppContext combines the provider interfaces with the lifecycle methods used by main
type AppContext interface {
	DBProvider
	ConfigProvider
	SchedulerProvider

	MigrateDB(track bool) error
	Release()
}
