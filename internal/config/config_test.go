package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Server.Port != 8787 {
		t.Errorf("expected default port 8787, got %d", cfg.Server.Port)
	}
	if cfg.Drive.Scope != DefaultDriveScope {
		t.Errorf("expected default scope %q, got %q", DefaultDriveScope, cfg.Drive.Scope)
	}
	if cfg.Drive.ContentFileName != "udev-site-content.json" {
		t.Errorf("expected default content file name, got %q", cfg.Drive.ContentFileName)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestDefaultLinksAreCopied(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Site.Links["instagram"] = "changed"
	if DefaultLinks["instagram"] == "changed" {
		t.Error("DefaultConfig shares the DefaultLinks map")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sitecms.yml")

	original := DefaultConfig()
	original.Server.Port = 9090
	original.Site.TemplatesDir = "web"
	original.Drive.ClientID = "client"
	original.Drive.ClientSecret = "secret"
	original.Drive.BackupSchedule = "0 3 * * *"
	original.Auth.JWTSecret = "s3cret"

	// Save.
	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load back.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Server.Port != 9090 {
		t.Errorf("server.port: got %d, want 9090", loaded.Server.Port)
	}
	if loaded.Site.TemplatesDir != "web" {
		t.Errorf("site.templates_dir: got %q, want %q", loaded.Site.TemplatesDir, "web")
	}
	if loaded.Drive.ClientSecret != "secret" {
		t.Errorf("drive.client_secret: got %q, want %q", loaded.Drive.ClientSecret, "secret")
	}
	if loaded.Drive.BackupSchedule != "0 3 * * *" {
		t.Errorf("drive.backup_schedule: got %q", loaded.Drive.BackupSchedule)
	}
	if loaded.Auth.JWTSecret != "s3cret" {
		t.Errorf("auth.jwt_secret: got %q", loaded.Auth.JWTSecret)
	}
	if !loaded.DriveConfigured() {
		t.Error("DriveConfigured() = false, want true")
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Server.Port != 8787 {
		t.Errorf("expected default port, got %d", cfg.Server.Port)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sitecms.yml")

	if err := DefaultConfig().Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("SITECMS_DATA_DIR", "/var/lib/sitecms")
	t.Setenv("SITECMS_DRIVE__OWNER_EMAIL", "owner@example.com")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.DataDir != "/var/lib/sitecms" {
		t.Errorf("data_dir override failed: got %q", loaded.DataDir)
	}
	if loaded.Drive.OwnerEmail != "owner@example.com" {
		t.Errorf("drive.owner_email override failed: got %q", loaded.Drive.OwnerEmail)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, true},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
		{"empty templates dir", func(c *Config) { c.Site.TemplatesDir = "" }, true},
		{"half drive credentials", func(c *Config) { c.Drive.ClientID = "id" }, true},
		{"bad cron", func(c *Config) { c.Drive.BackupSchedule = "every day" }, true},
		{"good cron", func(c *Config) { c.Drive.BackupSchedule = "@daily" }, false},
		{"bad ttl", func(c *Config) { c.Auth.JWTTTL = "soon" }, true},
		{"negative ttl", func(c *Config) { c.Auth.JWTTTL = "-1h" }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SITECMS_DATA_DIR", "data_dir"},
		{"SITECMS_SERVER__PORT", "server.port"},
		{"SITECMS_AUTH__JWT_SECRET", "auth.jwt_secret"},
	}
	for _, tt := range tests {
		if got := envKey(tt.in); got != tt.want {
			t.Errorf("envKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
