// Package daemon manages the roadmap runtime: configuration, logging and the
// wiring of storage, tracker, jobs and the HTTP API.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/roadmap-labs/roadmap/internal/domain"
)

// EnvPrefix prefixes every environment override, e.g. ROADMAP_API_PORT.
const EnvPrefix = "roadmap"

// ConfigFile is the config file name inside the roadmap home.
const ConfigFile = "config.toml"

// Config holds all daemon configuration.
type Config struct {
	API           APIConfig           `toml:"api" envconfig:"API"`
	Streak        StreakConfig        `toml:"streak" envconfig:"STREAK"`
	Notifications NotificationsConfig `toml:"notifications" envconfig:"NOTIFICATIONS"`
	Curriculum    CurriculumConfig    `toml:"curriculum" envconfig:"CURRICULUM"`
	Logging       LoggingConfig       `toml:"logging" envconfig:"LOGGING"`
	Telemetry     TelemetryConfig     `toml:"telemetry" envconfig:"TELEMETRY"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host" envconfig:"HOST"`
	Port        int      `toml:"port" envconfig:"PORT"`
	CORSOrigins []string `toml:"cors_origins" envconfig:"CORS_ORIGINS"`
}

// StreakConfig controls how calendar days are counted.
type StreakConfig struct {
	// Timezone is an IANA zone name, or "Local" for the system zone.
	Timezone      string `toml:"timezone" envconfig:"TIMEZONE"`
	CheckSchedule string `toml:"check_schedule" envconfig:"CHECK_SCHEDULE"`
}

// NotificationsConfig controls the achievement toast.
type NotificationsConfig struct {
	DismissAfter string `toml:"dismiss_after" envconfig:"DISMISS_AFTER"`
}

// CurriculumConfig points at a curriculum override. Empty uses the built-in one.
type CurriculumConfig struct {
	File string `toml:"file" envconfig:"FILE"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `toml:"level" envconfig:"LEVEL"`
	Format string `toml:"format" envconfig:"FORMAT"` // text or json
	File   string `toml:"file" envconfig:"FILE"`     // empty logs to stderr
}

// TelemetryConfig controls metrics exposure.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus" envconfig:"PROMETHEUS"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        4747,
			CORSOrigins: []string{"*"},
		},
		Streak: StreakConfig{
			Timezone:      "Local",
			CheckSchedule: "5 0 * * *",
		},
		Notifications: NotificationsConfig{
			DismissAfter: "5s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
	}
}

// LoadConfig reads $ROADMAP_HOME/config.toml over the defaults, applies
// environment overrides and validates the result.
func LoadConfig() (Config, error) {
	return LoadConfigFrom(filepath.Join(roadmapHome(), ConfigFile))
}

// LoadConfigFrom is LoadConfig with an explicit file path.
func LoadConfigFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("stat config: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("env overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks every field that would otherwise fail later at startup.
func (c Config) Validate() error {
	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("%w: api.port %d out of range", domain.ErrInvalidConfig, c.API.Port)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: streak.timezone %q: %v", domain.ErrInvalidConfig, c.Streak.Timezone, err)
	}
	if _, err := cron.ParseStandard(c.Streak.CheckSchedule); err != nil {
		return fmt.Errorf("%w: streak.check_schedule %q: %v", domain.ErrInvalidConfig, c.Streak.CheckSchedule, err)
	}
	if d, err := time.ParseDuration(c.Notifications.DismissAfter); err != nil || d <= 0 {
		return fmt.Errorf("%w: notifications.dismiss_after %q must be a positive duration", domain.ErrInvalidConfig, c.Notifications.DismissAfter)
	}
	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %v", domain.ErrInvalidConfig, err)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: logging.format %q (want text or json)", domain.ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

// Location resolves the streak timezone.
func (c Config) Location() (*time.Location, error) {
	switch c.Streak.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	return time.LoadLocation(c.Streak.Timezone)
}

// DismissAfter is the toast delay, falling back to 5s on a bad value.
func (c Config) DismissAfter() time.Duration {
	return parseDuration(c.Notifications.DismissAfter, 5*time.Second)
}

// Addr is the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// SaveConfig writes the config to $ROADMAP_HOME/config.toml.
func SaveConfig(cfg Config) error {
	return SaveConfigTo(filepath.Join(roadmapHome(), ConfigFile), cfg)
}

// SaveConfigTo writes cfg as TOML to path.
func SaveConfigTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// roadmapHome returns the roadmap data directory.
func roadmapHome() string {
	if env := os.Getenv("ROADMAP_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".roadmap")
}

// RoadmapHome is exported for use by other packages.
func RoadmapHome() string {
	return roadmapHome()
}

// parseDuration parses a duration string, returning a fallback on error.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
