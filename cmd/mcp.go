package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	mcpserver "github.com/udevstartup/sitecms/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing read-only tools over the published content document.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "sitecms MCP server started on stdio (db=%s)\n", a.cfg.DatabasePath())

		srv := mcpserver.NewServer(a.content)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
