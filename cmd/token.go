package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token [subject]",
	Short: "Issue a bearer token for PUT /api/content",
	Long: `Signs a JWT with auth.jwt_secret. Send it as "Authorization: Bearer <token>"
when auth is enabled. The subject is recorded as the actor of each write.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		tokens, err := tokenService(cfg)
		if err != nil {
			return err
		}
		if tokens == nil {
			return fmt.Errorf("auth.jwt_secret is not set; the content API accepts writes without a token")
		}

		subject := "admin"
		if len(args) == 1 {
			subject = args[0]
		}
		token, exp, err := tokens.Sign(subject)
		if err != nil {
			return err
		}
		fmt.Println(token)
		fmt.Fprintf(os.Stderr, "Expires %s\n", exp.Format(time.RFC3339))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
