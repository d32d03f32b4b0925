package config

// Config is the top-level sitecms configuration, corresponding to sitecms.yml.
type Config struct {
	DataDir string       `yaml:"data_dir" koanf:"data_dir"`
	Server  ServerConfig `yaml:"server" koanf:"server"`
	Site    SiteConfig   `yaml:"site" koanf:"site"`
	API     APIConfig    `yaml:"api" koanf:"api"`
	Drive   DriveConfig  `yaml:"drive" koanf:"drive"`
	Auth    AuthConfig   `yaml:"auth" koanf:"auth"`
	Log     LogConfig    `yaml:"log" koanf:"log"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all" koanf:"allow_all"`
}

// SiteConfig locates the public page templates and the bundled content file.
type SiteConfig struct {
	TemplatesDir  string            `yaml:"templates_dir" koanf:"templates_dir"`
	StaticContent string            `yaml:"static_content" koanf:"static_content"`
	OutputDir     string            `yaml:"output_dir" koanf:"output_dir"`
	Links         map[string]string `yaml:"links" koanf:"links"`
}

// APIConfig points the content loader at a remote content API.
type APIConfig struct {
	BaseURL string `yaml:"base_url" koanf:"base_url"`
}

// DriveConfig holds Google Drive OAuth and sync settings.
type DriveConfig struct {
	ClientID        string `yaml:"client_id" koanf:"client_id"`
	ClientSecret    string `yaml:"client_secret" koanf:"client_secret"`
	Scope           string `yaml:"scope" koanf:"scope"`
	ContentFileName string `yaml:"content_file_name" koanf:"content_file_name"`
	OwnerEmail      string `yaml:"owner_email" koanf:"owner_email"`
	PublicFileID    string `yaml:"public_file_id" koanf:"public_file_id"`
	BackupSchedule  string `yaml:"backup_schedule" koanf:"backup_schedule"`
}

// AuthConfig controls bearer-token protection of write endpoints.
// An empty JWTSecret leaves them open.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" koanf:"jwt_secret"`
	JWTIssuer string `yaml:"jwt_issuer" koanf:"jwt_issuer"`
	JWTTTL    string `yaml:"jwt_ttl" koanf:"jwt_ttl"`
}

// LogConfig selects the logger level and encoding.
type LogConfig struct {
	Level       string `yaml:"level" koanf:"level"`
	Development bool   `yaml:"development" koanf:"development"`
}
