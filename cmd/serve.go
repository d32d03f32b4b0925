package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/udevstartup/sitecms/internal/admin"
	"github.com/udevstartup/sitecms/internal/contentapi"
	"github.com/udevstartup/sitecms/internal/drive"
	"github.com/udevstartup/sitecms/internal/preview"
	"github.com/udevstartup/sitecms/internal/publicsite"
	"github.com/udevstartup/sitecms/internal/revisions"
	"github.com/udevstartup/sitecms/internal/server"
	"github.com/udevstartup/sitecms/internal/watch"
	"go.uber.org/zap"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the public site, the admin panel and the content API",
	Long: `Starts the sitecms HTTP server: the public pages filled with the current
content, the admin panel under /admin, the content API under /api/content,
the revision trail under /api/revisions and the live preview socket.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.cfg
	port := cfg.Server.Port
	if servePort > 0 {
		port = servePort
	}

	tokens, err := tokenService(cfg)
	if err != nil {
		return err
	}

	// The server syncer is non-interactive: the admin panel obtains tokens
	// through the web OAuth callback.
	var syncer *drive.Syncer
	if cfg.DriveConfigured() {
		syncer = a.driveSyncer(drive.NewTokenHolder(a.googleClient(), nil), false)
	}

	hub := preview.NewHub(a.logger)

	adm := admin.New(admin.Options{
		State:     a.state,
		Loader:    a.loader,
		Drive:     syncer,
		Revisions: a.revisions,
		Notifier:  hub,
		Tokens:    tokens,
		Logger:    a.logger.Named("admin"),
	})
	adm.Init(cmd.Context())

	api := contentapi.New(a.content, contentapi.Options{
		Revisions: a.revisions,
		Tokens:    tokens,
		Logger:    a.logger.Named("api"),
	})

	site := publicsite.NewSite(cfg.Site.TemplatesDir, a.loader, cfg.Site.Links, a.logger.Named("site"))

	srv := server.New(server.Config{Port: port, AllowAll: cfg.Server.AllowAll}, a.logger, api, adm, hub, site)
	revisions.RegisterRoutes(srv.Router(), a.revisions)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Drive.BackupSchedule != "" && syncer != nil {
		sched := watch.NewScheduler(a.logger.Named("cron"))
		backup := &watch.Backup{Source: a.content, Saver: syncer, Logger: a.logger.Named("backup")}
		if err := sched.Add(ctx, "drive-backup", cfg.Drive.BackupSchedule, backup.Run); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
		a.logger.Info("drive backup scheduled", zap.String("schedule", cfg.Drive.BackupSchedule))
	}

	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nShutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	fmt.Fprintf(os.Stderr, "sitecms %s starting on port %d\n", Version, port)
	fmt.Fprintf(os.Stderr, "  Database:  %s\n", cfg.DatabasePath())
	fmt.Fprintf(os.Stderr, "  Templates: %s\n", cfg.Site.TemplatesDir)
	fmt.Fprintf(os.Stderr, "  Admin:     http://localhost:%d/admin/\n", port)
	if syncer == nil {
		fmt.Fprintln(os.Stderr, "  Drive:     disabled (drive.client_id not set)")
	}

	return srv.Start()
}
