package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://fleet@localhost/fleet")
	t.Setenv("JWT_ACCESS_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Environment != "development" {
		t.Errorf("Environment = %q", cfg.Environment)
	}
	if cfg.HTTP.Host != "0.0.0.0" || cfg.HTTP.Port != 3001 {
		t.Errorf("HTTP = %+v", cfg.HTTP)
	}
	if !cfg.Digest.Enabled || cfg.Digest.At != "04:00" || cfg.Digest.HorizonDays != 30 {
		t.Errorf("Digest = %+v", cfg.Digest)
	}
	if cfg.Mail.Host != "smtp.gmail.com" || cfg.Mail.Port != 587 || cfg.Mail.FromName != "AutoGest Bot" {
		t.Errorf("Mail = %+v", cfg.Mail)
	}
	if cfg.Mail.Enabled() {
		t.Error("mail should be disabled without recipient")
	}
	if cfg.S3.Enabled() {
		t.Error("s3 should be disabled without endpoint")
	}
	if cfg.S3.Bucket != "vehicle-images" || cfg.S3.URLExpiry != 24*time.Hour {
		t.Errorf("S3 = %+v", cfg.S3)
	}
	if cfg.Files.MaxImageBytes != 5<<20 {
		t.Errorf("MaxImageBytes = %d", cfg.Files.MaxImageBytes)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://fleet@localhost/fleet")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("DIGEST_AT", "06:30")
	t.Setenv("DIGEST_HORIZON_DAYS", "45")
	t.Setenv("MAIL_USER", "bot@example.com")
	t.Setenv("MAIL_TO", "fleet@example.com")
	t.Setenv("S3_ENDPOINT", "minio:9000")
	t.Setenv("S3_URL_EXPIRY", "1h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("Port = %d", cfg.HTTP.Port)
	}
	if cfg.Digest.At != "06:30" || cfg.Digest.HorizonDays != 45 {
		t.Errorf("Digest = %+v", cfg.Digest)
	}
	if !cfg.Mail.Enabled() {
		t.Error("mail should be enabled")
	}
	if !cfg.S3.Enabled() || cfg.S3.URLExpiry != time.Hour {
		t.Errorf("S3 = %+v", cfg.S3)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing dsn", map[string]string{"JWT_ACCESS_SECRET": "s"}, "DB_DSN"},
		{"missing secret", map[string]string{"DB_DSN": "x"}, "JWT_ACCESS_SECRET"},
		{"bad digest time", map[string]string{"DB_DSN": "x", "JWT_ACCESS_SECRET": "s", "DIGEST_AT": "4am"}, "DIGEST_AT"},
		{"negative horizon", map[string]string{"DB_DSN": "x", "JWT_ACCESS_SECRET": "s", "DIGEST_HORIZON_DAYS": "-1"}, "DIGEST_HORIZON_DAYS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DB_DSN", "")
			t.Setenv("JWT_ACCESS_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load err = %v, want mention of %s", err, tt.want)
			}
		})
	}
}
