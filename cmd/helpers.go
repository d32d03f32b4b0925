package cmd

import (
	"fmt"

	"github.com/udevstartup/sitecms/internal/auth"
	"github.com/udevstartup/sitecms/internal/config"
	"github.com/udevstartup/sitecms/internal/contentapi"
	"github.com/udevstartup/sitecms/internal/db"
	"github.com/udevstartup/sitecms/internal/drive"
	"github.com/udevstartup/sitecms/internal/localstate"
	"github.com/udevstartup/sitecms/internal/logging"
	"github.com/udevstartup/sitecms/internal/revisions"
	"github.com/udevstartup/sitecms/internal/source"
	"go.uber.org/zap"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `sitecms init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newLogger builds the logger, forcing debug level under --verbose.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logCfg := cfg.Log
	if verbose {
		logCfg.Level = "debug"
	}
	return logging.New(logCfg)
}

// app holds the stores shared by most commands.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        *db.DB
	state     *localstate.Store
	revisions *revisions.Store
	content   *contentapi.Store
	loader    *source.Loader
}

// openApp loads the config and opens the database.
func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	database, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	state := localstate.NewStore(database)
	return &app{
		cfg:       cfg,
		logger:    logger,
		db:        database,
		state:     state,
		revisions: revisions.NewStore(database),
		content:   contentapi.NewStore(database),
		loader: source.NewLoader(state, source.Options{
			APIBaseURL:    cfg.API.BaseURL,
			DriveFileID:   cfg.Drive.PublicFileID,
			StaticContent: cfg.Site.StaticContent,
			Logger:        logger,
		}),
	}, nil
}

func (a *app) Close() {
	a.logger.Sync()
	a.db.Close()
}

// googleClient returns the configured OAuth client.
func (a *app) googleClient() auth.GoogleClient {
	return auth.GoogleClient{
		ClientID:     a.cfg.Drive.ClientID,
		ClientSecret: a.cfg.Drive.ClientSecret,
		Scopes:       []string{a.cfg.Drive.Scope},
	}
}

// driveSyncer builds a Syncer. Interactive syncers open the browser for
// consent when no token is held.
func (a *app) driveSyncer(tokens *drive.TokenHolder, interactive bool) *drive.Syncer {
	return drive.NewSyncer(drive.NewClient("", nil), tokens, a.state, drive.Options{
		FileName:    a.cfg.Drive.ContentFileName,
		OwnerEmail:  a.cfg.Drive.OwnerEmail,
		Interactive: interactive,
		Logger:      a.logger,
	})
}

// tokenService returns the JWT service, or nil when no secret is configured.
func tokenService(cfg *config.Config) (*auth.TokenService, error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, nil
	}
	ttl, err := cfg.Auth.TTL()
	if err != nil {
		return nil, err
	}
	return &auth.TokenService{Secret: []byte(cfg.Auth.JWTSecret), Issuer: cfg.Auth.JWTIssuer, Duration: ttl}, nil
}
