package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultPostgresSchema qualifies table names for the pgx driver when
// source.schema is unset.
const DefaultPostgresSchema = "evpm"

// Config holds application configuration.
type Config struct {
	Source  SourceConfig
	Refresh RefreshConfig
	Report  ReportConfig
	Log     LogConfig
}

// SourceConfig says where snapshots come from. An empty driver reads Path as
// a workbook or JSON file.
type SourceConfig struct {
	Path    string
	Driver  string
	DSN     string
	Schema  string
	Timeout time.Duration
}

// RefreshConfig holds the optional cron schedule for reloading snapshots.
type RefreshConfig struct {
	Schedule string
}

// ReportConfig holds dashboard settings.
type ReportConfig struct {
	TopN     int    `mapstructure:"top_n"`
	Timezone string
}

// LogConfig mirrors logger.Config.
type LogConfig struct {
	Level  string
	Format string
	Output string
}

// Load reads configuration from file and env. Env var overrides use prefix PACING_.
// A .env file in the working directory is applied first. DATABASE_URL is
// used as the DSN when source.dsn is unset.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("source.path", filepath.Join("data", "evpm.xlsx"))
	v.SetDefault("source.driver", "")
	v.SetDefault("source.dsn", os.Getenv("DATABASE_URL"))
	v.SetDefault("source.schema", "")
	v.SetDefault("source.timeout", "10s")
	v.SetDefault("refresh.schedule", "")
	v.SetDefault("report.top_n", 5)
	v.SetDefault("report.timezone", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "pacing-console.log")

	v.SetConfigType("toml")

	if path == "" {
		path = os.Getenv("PACING_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "pacing-console"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("PACING")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, missing := err.(viper.ConfigFileNotFoundError); !missing {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	// SQLite has no named schema unless one is attached.
	if c.Source.Driver == "pgx" && strings.TrimSpace(c.Source.Schema) == "" {
		c.Source.Schema = DefaultPostgresSchema
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the dashboard cannot run with.
func (c Config) Validate() error {
	switch c.Source.Driver {
	case "", "pgx", "sqlite3":
	default:
		return fmt.Errorf("source.driver must be empty, pgx or sqlite3, got %q", c.Source.Driver)
	}
	if c.Source.Driver != "" && strings.TrimSpace(c.Source.DSN) == "" {
		return fmt.Errorf("source.dsn is required when source.driver is %q", c.Source.Driver)
	}
	if c.Source.Driver == "" && strings.TrimSpace(c.Source.Path) == "" {
		return fmt.Errorf("source.path is required for file sources")
	}
	if c.Report.TopN < 1 {
		return fmt.Errorf("report.top_n must be at least 1, got %d", c.Report.TopN)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves report.timezone. Empty means the local zone.
func (c Config) Location() (*time.Location, error) {
	if c.Report.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Report.Timezone)
	if err != nil {
		return nil, fmt.Errorf("report.timezone: %w", err)
	}
	return loc, nil
}
