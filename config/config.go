// config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the typed process configuration. Values are resolved in order:
// built-in defaults, optional YAML file (BATTLE_CONFIG_FILE), environment.
type Config struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	DatabaseURL    string   `yaml:"database_url"`

	AuthURL     string `yaml:"auth_url"`
	AuthAnonKey string `yaml:"auth_anon_key"`

	Storage     StorageConfig `yaml:"storage"`
	MediaBucket string        `yaml:"media_bucket"`

	AutomationWebhookURL string `yaml:"automation_webhook_url"`
	AutomationSource     string `yaml:"automation_source"`

	SessionCachePath    string        `yaml:"session_cache_path"`
	SessionIdleTTL      time.Duration `yaml:"session_idle_ttl"`
	ProfileFetchTimeout time.Duration `yaml:"profile_fetch_timeout"`
	ListQueryTimeout    time.Duration `yaml:"list_query_timeout"`
	DemoLatency         bool          `yaml:"demo_latency"`
	MaxUploadBytes      int64         `yaml:"max_upload_bytes"`
}

// StorageConfig points at an S3-compatible object store.
type StorageConfig struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PublicBaseURL   string `yaml:"public_base_url"`
}

// Enabled reports whether enough is configured to attempt remote uploads.
func (s StorageConfig) Enabled() bool {
	return s.Endpoint != "" && s.AccessKeyID != "" && s.SecretAccessKey != ""
}

func Defaults() Config {
	return Config{
		Port:                "5200",
		AllowedOrigins:      []string{"http://localhost:3000"},
		MediaBucket:         "avatars",
		AutomationSource:    "influencer_battle",
		SessionCachePath:    "session_cache.db",
		SessionIdleTTL:      24 * time.Hour,
		ProfileFetchTimeout: 6 * time.Second,
		ListQueryTimeout:    10 * time.Second,
		DemoLatency:         true,
		MaxUploadBytes:      50 * 1024 * 1024,
		Storage:             StorageConfig{Region: "auto"},
	}
}

func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	cfg := Defaults()
	if path := strings.TrimSpace(os.Getenv("BATTLE_CONFIG_FILE")); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str("PORT", &cfg.Port)
	str("DATABASE_URL", &cfg.DatabaseURL)
	str("AUTH_URL", &cfg.AuthURL)
	str("AUTH_ANON_KEY", &cfg.AuthAnonKey)
	str("S3_ENDPOINT", &cfg.Storage.Endpoint)
	str("S3_REGION", &cfg.Storage.Region)
	str("S3_ACCESS_KEY_ID", &cfg.Storage.AccessKeyID)
	str("S3_SECRET_ACCESS_KEY", &cfg.Storage.SecretAccessKey)
	str("S3_PUBLIC_BASE_URL", &cfg.Storage.PublicBaseURL)
	str("MEDIA_BUCKET", &cfg.MediaBucket)
	str("AUTOMATION_WEBHOOK_URL", &cfg.AutomationWebhookURL)
	str("AUTOMATION_SOURCE", &cfg.AutomationSource)
	str("SESSION_CACHE_PATH", &cfg.SessionCachePath)

	if v, ok := lookup("ALLOWED_ORIGINS"); ok && strings.TrimSpace(v) != "" {
		var origins []string
		for _, origin := range strings.Split(v, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				origins = append(origins, origin)
			}
		}
		cfg.AllowedOrigins = origins
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"SESSION_IDLE_TTL", &cfg.SessionIdleTTL},
		{"PROFILE_FETCH_TIMEOUT", &cfg.ProfileFetchTimeout},
		{"LIST_QUERY_TIMEOUT", &cfg.ListQueryTimeout},
	}
	for _, d := range durations {
		v, ok := lookup(d.key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = parsed
	}

	if v, ok := lookup("DEMO_LATENCY"); ok {
		cfg.DemoLatency = envBool(v, cfg.DemoLatency)
	}
	if v, ok := lookup("MAX_UPLOAD_BYTES"); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid MAX_UPLOAD_BYTES %q", v)
		}
		cfg.MaxUploadBytes = n
	}
	return nil
}

func envBool(raw string, fallback bool) bool {
	switch strings.TrimSpace(strings.ToLower(raw)) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
