package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"AguaCoop"`
		Port int    `envconfig:"PORT" default:"8080"`
		// FrontendOrigin is the only origin allowed by CORS.
		FrontendOrigin string `envconfig:"FRONTEND_ORIGIN" default:"http://localhost:3000"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"aguacoop"`
		SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

		MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
		MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
		ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
		PingTimeout     time.Duration `envconfig:"DB_PING_TIMEOUT" default:"5s"`
	}

	Server struct {
		Timeout         time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
	}

	Auth struct {
		JWTSecret  string        `envconfig:"JWT_SECRET" required:"true"`
		TokenTTL   time.Duration `envconfig:"TOKEN_TTL" default:"12h"`
		BcryptCost int           `envconfig:"BCRYPT_COST" default:"10"`
		// The bootstrap admin is created at startup when both are set and the username is free.
		AdminUsername string `envconfig:"ADMIN_USERNAME"`
		AdminPassword string `envconfig:"ADMIN_PASSWORD"`
	}

	Mora struct {
		Schedule string        `envconfig:"MORA_SCHEDULE" default:"*/5 * * * *"`
		Timeout  time.Duration `envconfig:"MORA_TIMEOUT" default:"4m"`
	}

	Readings struct {
		// RolloverSchedule generates each month's pending readings ahead of the first capture.
		RolloverSchedule string `envconfig:"ROLLOVER_SCHEDULE" default:"0 1 1 * *"`
	}

	Receipts struct {
		Dir       string `envconfig:"RECEIPTS_DIR" default:"./receipts"`
		URLPrefix string `envconfig:"RECEIPTS_URL_PREFIX" default:"/receipts"`
		Issuer    string `envconfig:"RECEIPTS_ISSUER" default:"Cooperativa de Agua Potable"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"json"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must not be empty")
	}

	if cfg.Auth.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.Auth.TokenTTL)
	}

	return &cfg, nil
}
