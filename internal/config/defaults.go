package config

import "path/filepath"

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = "sitecms.yml"

// Drive defaults.
const (
	DefaultDriveScope       = "https://www.googleapis.com/auth/drive"
	DefaultContentFileName  = "udev-site-content.json"
	DefaultStaticContentURL = "/assets/data/site-content.json"
)

// DefaultLinks are the external links substituted into [data-link-key] anchors.
var DefaultLinks = map[string]string{
	"vendaproDownload":            "https://drive.google.com/",
	"vendaproOnline":              "https://app.vendapro.com.br/",
	"downloadVendaproDesktop":     "https://drive.google.com/",
	"downloadVendaproAndroid":     "https://play.google.com/store",
	"downloadImplementationGuide": "https://drive.google.com/",
	"whatsapp":                    "https://wa.me/5563984412348?text=Ol%C3%A1%2C%20quero%20conhecer%20as%20solu%C3%A7%C3%B5es%20da%20UDEV%20StartUP.",
	"email":                       "mailto:udev.oficial@gmail.com",
	"instagram":                   "https://www.instagram.com/udev.oficial/",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	links := make(map[string]string, len(DefaultLinks))
	for k, v := range DefaultLinks {
		links[k] = v
	}
	return &Config{
		DataDir: ".sitecms",
		Server: ServerConfig{
			Port:     8787,
			AllowAll: true,
		},
		Site: SiteConfig{
			TemplatesDir:  "site",
			StaticContent: filepath.Join("site", "assets", "data", "site-content.json"),
			OutputDir:     "dist",
			Links:         links,
		},
		Drive: DriveConfig{
			Scope:           DefaultDriveScope,
			ContentFileName: DefaultContentFileName,
			OwnerEmail:      "udev.oficial@gmail.com",
		},
		Auth: AuthConfig{
			JWTIssuer: "sitecms",
			JWTTTL:    "24h",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DatabasePath returns the SQLite file holding content, local state and revisions.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "sitecms.db")
}
