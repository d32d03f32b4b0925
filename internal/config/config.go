package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap/zapcore"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SITECMS_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (SITECMS_*). A double underscore separates
// nested keys: SITECMS_DRIVE__CLIENT_ID -> drive.client_id.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}

	if c.Site.TemplatesDir == "" {
		return fmt.Errorf("site.templates_dir is required")
	}

	if c.Drive.ContentFileName == "" {
		return fmt.Errorf("drive.content_file_name is required")
	}

	if (c.Drive.ClientID == "") != (c.Drive.ClientSecret == "") {
		return fmt.Errorf("drive.client_id and drive.client_secret must be set together")
	}

	if c.Drive.BackupSchedule != "" {
		if _, err := cron.ParseStandard(c.Drive.BackupSchedule); err != nil {
			return fmt.Errorf("invalid drive.backup_schedule %q: %w", c.Drive.BackupSchedule, err)
		}
	}

	if _, err := c.Auth.TTL(); err != nil {
		return fmt.Errorf("invalid auth.jwt_ttl %q: %w", c.Auth.JWTTTL, err)
	}

	if c.Log.Level != "" {
		if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("invalid log.level %q: %w", c.Log.Level, err)
		}
	}

	return nil
}

// TTL parses JWTTTL, defaulting to 24 hours when empty.
func (a AuthConfig) TTL() (time.Duration, error) {
	if a.JWTTTL == "" {
		return 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(a.JWTTTL)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return d, nil
}

// DriveConfigured reports whether OAuth client credentials are present.
func (c *Config) DriveConfigured() bool {
	return c.Drive.ClientID != "" && c.Drive.ClientSecret != ""
}
