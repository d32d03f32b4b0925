package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/udevstartup/sitecms/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize sitecms configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure sitecms for your site and generates a sitecms.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfgFile); err == nil {
			return fmt.Errorf("%s already exists; edit it or remove it first", cfgFile)
		}
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
