package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	AccessSecret string
}

type DigestConfig struct {
	Enabled     bool
	At          string
	HorizonDays int
}

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	FromName string
	To       string
}

// Enabled reports whether digest delivery has a recipient and credentials.
func (m MailConfig) Enabled() bool {
	return m.To != "" && m.Username != ""
}

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
	UseSSL          bool
	URLExpiry       time.Duration
}

func (s S3Config) Enabled() bool {
	return s.Endpoint != ""
}

type FilesConfig struct {
	MaxImageBytes int64
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Digest      DigestConfig
	Mail        MailConfig
	S3          S3Config
	Files       FilesConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.SetDefault("DIGEST_ENABLED", true)
	v.SetDefault("DIGEST_HORIZON_DAYS", 30)
	v.SetDefault("MAIL_HOST", "smtp.gmail.com")
	v.SetDefault("MAIL_PORT", 587)
	v.SetDefault("S3_USE_SSL", true)
	v.SetDefault("S3_REGION", "us-east-1")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Digest: DigestConfig{
			Enabled:     v.GetBool("DIGEST_ENABLED"),
			At:          v.GetString("DIGEST_AT"),
			HorizonDays: v.GetInt("DIGEST_HORIZON_DAYS"),
		},
		Mail: MailConfig{
			Host:     v.GetString("MAIL_HOST"),
			Port:     v.GetInt("MAIL_PORT"),
			Username: v.GetString("MAIL_USER"),
			Password: v.GetString("MAIL_PASS"),
			FromName: v.GetString("MAIL_FROM_NAME"),
			To:       v.GetString("MAIL_TO"),
		},
		S3: S3Config{
			Endpoint:        v.GetString("S3_ENDPOINT"),
			AccessKeyID:     v.GetString("S3_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("S3_SECRET_ACCESS_KEY"),
			Bucket:          v.GetString("S3_BUCKET"),
			Region:          v.GetString("S3_REGION"),
			UseSSL:          v.GetBool("S3_USE_SSL"),
			URLExpiry:       v.GetDuration("S3_URL_EXPIRY"),
		},
		Files: FilesConfig{
			MaxImageBytes: v.GetInt64("MAX_IMAGE_BYTES"),
		},
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 3001
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Digest.At == "" {
		cfg.Digest.At = "04:00"
	}
	if cfg.Mail.FromName == "" {
		cfg.Mail.FromName = "AutoGest Bot"
	}
	if cfg.S3.Bucket == "" {
		cfg.S3.Bucket = "vehicle-images"
	}
	if cfg.S3.URLExpiry <= 0 {
		cfg.S3.URLExpiry = 24 * time.Hour
	}
	if cfg.Files.MaxImageBytes <= 0 {
		cfg.Files.MaxImageBytes = 5 << 20
	}
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if _, err := time.Parse("15:04", cfg.Digest.At); err != nil {
		return fmt.Errorf("DIGEST_AT must be HH:MM, got %q", cfg.Digest.At)
	}
	if cfg.Digest.HorizonDays < 0 {
		return fmt.Errorf("DIGEST_HORIZON_DAYS must not be negative")
	}
	return nil
}
