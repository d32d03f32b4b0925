package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to sitecms! Let's configure your site.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Templates directory.
	templatesPrompt := promptui.Prompt{
		Label:   "Directory holding the public page templates",
		Default: cfg.Site.TemplatesDir,
	}
	templatesDir, err := templatesPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("templates dir: %w", err)
	}
	cfg.Site.TemplatesDir = strings.TrimSpace(templatesDir)

	// 2. Port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	// 3. Google Drive sync.
	drivePrompt := promptui.Select{
		Label: "Synchronize content with Google Drive?",
		Items: []string{"no", "yes"},
	}
	_, useDrive, err := drivePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("drive selection: %w", err)
	}
	if useDrive == "yes" {
		if err := driveWizard(cfg); err != nil {
			return nil, err
		}
	}

	// 4. Write protection.
	secretPrompt := promptui.Prompt{
		Label: "JWT secret protecting PUT /api/content (blank leaves it open)",
		Mask:  '*',
	}
	secret, err := secretPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("jwt secret: %w", err)
	}
	cfg.Auth.JWTSecret = strings.TrimSpace(secret)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func driveWizard(cfg *Config) error {
	prompts := []struct {
		label string
		dest  *string
		mask  rune
	}{
		{"OAuth client ID", &cfg.Drive.ClientID, 0},
		{"OAuth client secret", &cfg.Drive.ClientSecret, '*'},
		{"Owner e-mail required for product files (blank disables the check)", &cfg.Drive.OwnerEmail, 0},
		{"Backup schedule, cron syntax (blank disables)", &cfg.Drive.BackupSchedule, 0},
	}
	for _, p := range prompts {
		prompt := promptui.Prompt{Label: p.label, Default: *p.dest, Mask: p.mask}
		v, err := prompt.Run()
		if err != nil {
			return fmt.Errorf("%s: %w", strings.ToLower(p.label), err)
		}
		*p.dest = strings.TrimSpace(v)
	}
	return nil
}
