package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/udevstartup/sitecms/internal/drive"
	"github.com/udevstartup/sitecms/internal/revisions"
)

var driveCmd = &cobra.Command{
	Use:   "drive",
	Short: "Sync the content document with Google Drive",
	Long: `Reads and writes the content document as a single JSON file on Google Drive.

Every command opens your browser for Google consent; tokens are kept in
memory only. You need an OAuth2 Client ID and Secret in drive.client_id and
drive.client_secret, created at https://console.cloud.google.com/apis/credentials`,
}

var driveConnectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Check that Google consent works for the configured client",
	RunE:  runDriveConnect,
}

var drivePushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload the published document to Drive",
	RunE:  runDrivePush,
}

var drivePullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Download the Drive content file and store it as the published document",
	RunE:  runDrivePull,
}

var driveUploadImageCmd = &cobra.Command{
	Use:   "upload-image <file>",
	Short: "Upload an image as a public Drive file and print its URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runDriveUploadImage,
}

func init() {
	drivePushCmd.Flags().String("file-id", "", "Drive file to overwrite (defaults to the remembered one)")
	drivePullCmd.Flags().String("file-id", "", "Drive file to read (defaults to the remembered one)")
	rootCmd.AddCommand(driveCmd)
	driveCmd.AddCommand(driveConnectCmd)
	driveCmd.AddCommand(drivePushCmd)
	driveCmd.AddCommand(drivePullCmd)
	driveCmd.AddCommand(driveUploadImageCmd)
}

// openDrive opens the app and an interactive syncer.
func openDrive() (*app, *drive.Syncer, error) {
	a, err := openApp()
	if err != nil {
		return nil, nil, err
	}
	if !a.cfg.DriveConfigured() {
		a.Close()
		return nil, nil, fmt.Errorf("%w: set drive.client_id and drive.client_secret in %s", drive.ErrNotConfigured, cfgFile)
	}
	return a, a.driveSyncer(drive.NewTokenHolder(a.googleClient(), nil), true), nil
}

func runDriveConnect(cmd *cobra.Command, args []string) error {
	a, syncer, err := openDrive()
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Fprintln(os.Stderr, "Opening browser for Google authorization...")
	if _, err := syncer.Tokens().EnsureToken(cmd.Context(), true); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "Google account connected.")
	return nil
}

func runDrivePush(cmd *cobra.Command, args []string) error {
	a, syncer, err := openDrive()
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	doc, err := a.content.Document(ctx)
	if err != nil {
		return err
	}
	fileID, _ := cmd.Flags().GetString("file-id")
	id, err := syncer.SaveContent(ctx, doc, fileID)
	if err != nil {
		return err
	}
	if _, err := a.revisions.Record(ctx, revisions.SourceDrive, "cli", "pushed to drive file "+id, doc); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not record revision: %v\n", err)
	}
	fmt.Fprintf(os.Stderr, "Content saved to Drive. ID: %s\n", id)
	return nil
}

func runDrivePull(cmd *cobra.Command, args []string) error {
	a, syncer, err := openDrive()
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	fileID, _ := cmd.Flags().GetString("file-id")
	doc, id, err := syncer.LoadContent(ctx, fileID)
	if err != nil {
		return err
	}
	data, err := doc.MarshalIndent()
	if err != nil {
		return err
	}
	if _, err := a.content.Put(ctx, data); err != nil {
		return err
	}
	if _, err := a.revisions.Record(ctx, revisions.SourceDrive, "cli", "pulled from drive file "+id, doc); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not record revision: %v\n", err)
	}
	fmt.Fprintf(os.Stderr, "Content loaded from Drive file %s.\n", id)
	return nil
}

func runDriveUploadImage(cmd *cobra.Command, args []string) error {
	a, syncer, err := openDrive()
	if err != nil {
		return err
	}
	defer a.Close()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	url, err := syncer.UploadImage(cmd.Context(), filepath.Base(args[0]), data)
	if err != nil {
		return err
	}
	fmt.Println(url)
	return nil
}
