package cmd

import (
	"github.com/spf13/cobra"
	"github.com/udevstartup/sitecms/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "sitecms",
	Short: "Content manager for the UDEV marketing site",
	Long: `sitecms keeps the marketing site's content in a single JSON document.
It serves the public pages filled from that document, an admin panel to
edit it, a small content API, and syncs the document with Google Drive.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
