package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort              = 3000
	DefaultCheckoutTimeout   = 5 * time.Second
	DefaultLowStockThreshold = 5
)

// SysConfig system configuration
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
	// Seed inserts a demo catalog on startup when the products table is empty
	Seed bool `yaml:"seed"`
}

// WebConfig http server configuration
type WebConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DBConfig database configuration
type DBConfig struct {
	Type     string `yaml:"type"`
	URL      string `yaml:"url"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

// LogConfig logger configuration
type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// CheckoutConfig order placement configuration
type CheckoutConfig struct {
	// Timeout bounds every persistence call made while placing or reading an order.
	Timeout           time.Duration `yaml:"timeout"`
	LowStockThreshold int           `yaml:"low_stock_threshold"`
	LowStockSchedule  string        `yaml:"low_stock_schedule"`
}

type AppConfig struct {
	System   SysConfig      `yaml:"system"`
	Web      WebConfig      `yaml:"web"`
	Database DBConfig       `yaml:"database"`
	Logger   LogConfig      `yaml:"logger"`
	Checkout CheckoutConfig `yaml:"checkout"`
}

func (c *AppConfig) GetLogDir() string {
	return filepath.Join(c.System.Workdir, "logs")
}

// Addr returns the listen address of the http server
func (c *AppConfig) Addr() string {
	return c.Web.Host + ":" + cast.ToString(c.Web.Port)
}

// Validate reports configuration the application cannot start without.
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.Database.URL) == "" {
		return errors.New("database url is required (set DATABASE_URL)")
	}
	if c.Web.Port <= 0 || c.Web.Port > 65535 {
		return errors.Errorf("invalid web port %d", c.Web.Port)
	}
	return nil
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "storefront",
		Location: "Local",
		Workdir:  "/var/storefront",
		Debug:    false,
	},
	Web: WebConfig{
		Host:         "0.0.0.0",
		Port:         DefaultPort,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	},
	Database: DBConfig{
		Type:     "postgres",
		MaxConn:  100,
		IdleConn: 10,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: false,
		Filename:   "/var/storefront/storefront.log",
	},
	Checkout: CheckoutConfig{
		Timeout:           DefaultCheckoutTimeout,
		LowStockThreshold: DefaultLowStockThreshold,
		LowStockSchedule:  "@every 5m",
	},
}

// LoadConfig reads the optional yaml file, then .env, then environment overrides.
func LoadConfig(cfile string) (*AppConfig, error) {
	cfg := *DefaultAppConfig

	if cfile != "" {
		data, err := os.ReadFile(cfile)
		if err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "read config %s", cfile)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, errors.Wrapf(err, "parse config %s", cfile)
			}
		}
	}

	// .env is optional
	_ = godotenv.Load()

	applyEnv(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *AppConfig) {
	setEnvString("STOREFRONT_SYSTEM_WORKER_DIR", &cfg.System.Workdir)
	setEnvString("STOREFRONT_SYSTEM_LOCATION", &cfg.System.Location)
	setEnvBool("STOREFRONT_SYSTEM_DEBUG", &cfg.System.Debug)
	setEnvBool("STOREFRONT_SYSTEM_SEED", &cfg.System.Seed)

	setEnvString("STOREFRONT_WEB_HOST", &cfg.Web.Host)
	setEnvInt("PORT", &cfg.Web.Port)

	setEnvString("DATABASE_URL", &cfg.Database.URL)
	setEnvInt("STOREFRONT_DB_MAX_CONN", &cfg.Database.MaxConn)
	setEnvInt("STOREFRONT_DB_IDLE_CONN", &cfg.Database.IdleConn)
	setEnvBool("STOREFRONT_DB_DEBUG", &cfg.Database.Debug)

	setEnvString("STOREFRONT_LOG_MODE", &cfg.Logger.Mode)
	setEnvBool("STOREFRONT_LOG_FILE_ENABLE", &cfg.Logger.FileEnable)
	setEnvString("STOREFRONT_LOG_FILENAME", &cfg.Logger.Filename)

	setEnvDuration("STOREFRONT_CHECKOUT_TIMEOUT", &cfg.Checkout.Timeout)
	setEnvInt("STOREFRONT_LOW_STOCK_THRESHOLD", &cfg.Checkout.LowStockThreshold)
	setEnvString("STOREFRONT_LOW_STOCK_SCHEDULE", &cfg.Checkout.LowStockSchedule)
}

func setEnvString(name string, val *string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*val = v
	}
}

func setEnvInt(name string, val *int) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return
	}
	if i, err := cast.ToIntE(v); err == nil {
		*val = i
	}
}

func setEnvBool(name string, val *bool) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return
	}
	if b, err := cast.ToBoolE(v); err == nil {
		*val = b
	}
}

func setEnvDuration(name string, val *time.Duration) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return
	}
	if d, err := cast.ToDurationE(v); err == nil {
		*val = d
	}
}
