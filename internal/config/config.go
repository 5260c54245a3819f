package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
		// AdminRedirect is where a successful Google sign-in lands.
		AdminRedirect string `yaml:"admin_redirect"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Channel  string `yaml:"channel"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Catalog struct {
		TTL string `yaml:"ttl"`
	} `yaml:"catalog"`
	OSS struct {
		Endpoint        string `yaml:"endpoint"`
		AccessKeyID     string `yaml:"access_key_id"`
		AccessKeySecret string `yaml:"access_key_secret"`
		Bucket          string `yaml:"bucket"`
		PublicBaseURL   string `yaml:"public_base_url"`
	} `yaml:"oss"`
	Photo struct {
		MaxBytes     int64 `yaml:"max_bytes"`
		MaxDimension int   `yaml:"max_dimension"`
	} `yaml:"photo"`
	Intake struct {
		MaxAttempts int `yaml:"max_attempts"`
	} `yaml:"intake"`
	Auth struct {
		GoogleClientID     string `yaml:"google_client_id"`
		GoogleClientSecret string `yaml:"google_client_secret"`
		GoogleRedirectURL  string `yaml:"google_redirect_url"`
		SessionSecret      string `yaml:"session_secret"`
		// AdminEmails is a comma separated allow-list.
		AdminEmails string `yaml:"admin_emails"`
	} `yaml:"auth"`
}

const (
	DefaultPhotoMaxBytes = 5 << 20
	DefaultMaxAttempts   = 3
)

// Load reads YAML config from path, expanding ${VAR} references, then applies
// environment overrides. A missing file yields a config built from the
// environment alone.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	override(&cfg.Postgres.URL, "DATABASE_URL")
	override(&cfg.Redis.Addr, "REDIS_ADDR")
	override(&cfg.OSS.Endpoint, "OSS_ENDPOINT")
	override(&cfg.OSS.AccessKeyID, "OSS_ACCESS_KEY_ID")
	override(&cfg.OSS.AccessKeySecret, "OSS_ACCESS_KEY_SECRET")
	override(&cfg.OSS.Bucket, "OSS_BUCKET")
	override(&cfg.OSS.PublicBaseURL, "OSS_PUBLIC_BASE_URL")
	override(&cfg.Auth.GoogleClientID, "GOOGLE_CLIENT_ID")
	override(&cfg.Auth.GoogleClientSecret, "GOOGLE_CLIENT_SECRET")
	override(&cfg.Auth.GoogleRedirectURL, "GOOGLE_REDIRECT_URL")
	override(&cfg.Auth.SessionSecret, "SESSION_SECRET")
	override(&cfg.Auth.AdminEmails, "ADMIN_EMAILS")
	if raw := os.Getenv("INTAKE_MAX_ATTEMPTS"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			cfg.Intake.MaxAttempts = n
		}
	}
}

func override(field *string, env string) {
	if v := os.Getenv(env); v != "" {
		*field = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Photo.MaxBytes <= 0 {
		cfg.Photo.MaxBytes = DefaultPhotoMaxBytes
	}
	if cfg.Intake.MaxAttempts <= 0 {
		cfg.Intake.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Redis.Channel == "" {
		cfg.Redis.Channel = "submissions:events"
	}
	if cfg.Server.AdminRedirect == "" {
		cfg.Server.AdminRedirect = "/admin"
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
