package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type DBConfig struct {
	Host            string `envconfig:"DB_HOST" default:"postgres"`
	Port            int    `envconfig:"DB_PORT" default:"5432"`
	User            string `envconfig:"DB_USER" default:"booking"`
	Password        string `envconfig:"DB_PASSWORD" default:"booking"`
	Name            string `envconfig:"DB_NAME" default:"court_booking"`
	SSLMode         string `envconfig:"DB_SSLMODE" default:"disable"`
	TimeZone        string `envconfig:"DB_TIMEZONE" default:"UTC"`
	MaxOpenConns    int    `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int    `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifeTime int    `envconfig:"DB_CONN_MAX_LIFETIME_MIN" default:"30"` // минут
}

type AppConfig struct {
	// Адрес HTTP-сервера.
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`

	// Горизонт генерации/показа слотов, в днях.
	BookingWindowDays int `envconfig:"BOOKING_WINDOW_DAYS" default:"30"`
	// Хранение прошедших свободных слотов, в днях.
	RetentionDays int `envconfig:"SLOT_RETENTION_DAYS" default:"30"`
	// Порог «поздней» отмены до начала брони.
	CancelCutoff time.Duration `envconfig:"CANCEL_CUTOFF" default:"2h"`
	// Период фонового свипера.
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"1h"`
}

type Config struct {
	DB  DBConfig
	App AppConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg.DB); err != nil {
		return nil, fmt.Errorf("db config: %w", err)
	}
	if err := envconfig.Process("", &cfg.App); err != nil {
		return nil, fmt.Errorf("app config: %w", err)
	}

	// минимальная валидация
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, fmt.Errorf("invalid DB config: host/user/name must not be empty")
	}

	return &cfg, nil
}
