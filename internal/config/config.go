package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port           string        `yaml:"port"`
	HTTPTimeout    time.Duration `yaml:"http_timeout"`
	LogLevel       slog.Level    `yaml:"-"`
	MaxUploadBytes int64         `yaml:"-"`
	Sheet          string        `yaml:"sheet"`
	Lemmatizer     string        `yaml:"lemmatizer"`
	ExtraStopWords []string      `yaml:"extra_stop_words"`
	SinkURL        string        `yaml:"sink_url"`
	SinkSecret     string        `yaml:"-"`
}

// file is the optional YAML overlay read from CONFIG_FILE.
type file struct {
	Config      `yaml:",inline"`
	LogLevel    string `yaml:"log_level"`
	MaxUploadMB int64  `yaml:"max_upload_mb"`
}

func defaults() Config {
	return Config{
		Port:           "8080",
		HTTPTimeout:    15 * time.Second,
		LogLevel:       slog.LevelInfo,
		MaxUploadBytes: 32 << 20,
		Sheet:          "SP Search Term Report",
		Lemmatizer:     "dict",
	}
}

// FromEnv builds the configuration from defaults, then CONFIG_FILE, then
// environment variables, later sources winning.
func FromEnv() (Config, error) {
	cfg := defaults()
	if p := os.Getenv("CONFIG_FILE"); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := cfg.overlay(b); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", p, err)
		}
	}

	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			cfg.HTTPTimeout = d
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = parseLevel(v)
	}
	if v := os.Getenv("MAX_UPLOAD_MB"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxUploadBytes = n << 20
		}
	}
	if v := os.Getenv("EXTRA_STOP_WORDS"); v != "" {
		cfg.ExtraStopWords = append(cfg.ExtraStopWords, splitList(v)...)
	}
	cfg.Port = envOr("PORT", cfg.Port)
	cfg.Sheet = envOr("REPORT_SHEET", cfg.Sheet)
	cfg.Lemmatizer = envOr("LEMMATIZER", cfg.Lemmatizer)
	cfg.SinkURL = envOr("SINK_URL", cfg.SinkURL)
	cfg.SinkSecret = envOr("SINK_SECRET", cfg.SinkSecret)
	return cfg, nil
}

func (c *Config) overlay(b []byte) error {
	f := file{Config: *c}
	if err := yaml.Unmarshal(b, &f); err != nil {
		return err
	}
	if f.LogLevel != "" {
		f.Config.LogLevel = parseLevel(f.LogLevel)
	}
	if f.MaxUploadMB > 0 {
		f.Config.MaxUploadBytes = f.MaxUploadMB << 20
	}
	*c = f.Config
	return nil
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
