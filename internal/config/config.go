package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel   string   `yaml:"log_level" env:"LOG_LEVEL" env-default:"INFO"`
	ServerPort string   `yaml:"server_port" env:"SERVER_PORT" env-default:"8080"`
	Database   Database `yaml:"database"`
	JWT        JWT      `yaml:"jwt"`
	Storage    Storage  `yaml:"storage"`
}

type Database struct {
	// Driver is "postgres" or "sqlite".
	Driver       string        `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	Host         string        `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port         string        `yaml:"port" env:"DB_PORT" env-default:"5431"`
	User         string        `yaml:"user" env:"DB_USER" env-default:"workspaceflow"`
	Password     string        `yaml:"password" env:"DB_PASSWORD" env-default:"workspaceflow"`
	Name         string        `yaml:"name" env:"DB_NAME" env-default:"workspaceflow"`
	SSLMode      string        `yaml:"ssl_mode" env:"DB_SSLMODE" env-default:"disable"`
	Path         string        `yaml:"path" env:"DB_PATH" env-default:"workspaceflow.db"`
	Timeout      time.Duration `yaml:"timeout" env:"DB_TIMEOUT" env-default:"10s"`
	LockTimeout  time.Duration `yaml:"lock_timeout" env:"DB_LOCK_TIMEOUT" env-default:"3s"`
	MaxOpenConns int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"20"`
}

// DSN builds the postgres connection string.
func (d Database) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type JWT struct {
	Secret string        `yaml:"secret" env:"JWT_SECRET" env-default:"supersecretkey"`
	Expiry time.Duration `yaml:"expiry" env:"JWT_EXPIRY" env-default:"5h"`
}

type Storage struct {
	Dir                   string `yaml:"dir" env:"UPLOAD_DIR" env-default:"./files"`
	MaxAttachmentSize     int64  `yaml:"max_attachment_size" env:"MAX_ATTACHMENT_SIZE" env-default:"52428800"`
	MaxProfilePictureSize int64  `yaml:"max_profile_picture_size" env:"MAX_PROFILE_PICTURE_SIZE" env-default:"5242880"`
}

// Load reads an optional .env file, then the YAML file named by CONFIG_PATH
// if it exists, then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using system environment variables")
	}

	var cfg Config
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("read env: %w", err)
		}
		return cfg, cfg.validate()
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return Config{}, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("read env: %w", err)
		}
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	return nil
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
