package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcosta/helpchat/internal/config"
)

var baseURLFlag string

var loginCmd = &cobra.Command{
	Use:   "login <api-key>",
	Short: "Save API credentials",
	Long: `Save the API key used to talk to the assistant service.

The key is stored in ~/.helpchat/credentials.json with owner-only
permissions. The HELPCHAT_API_KEY environment variable, when set,
always takes precedence over the stored key.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		creds := &config.Credentials{
			APIKey:  args[0],
			BaseURL: baseURLFlag,
		}
		if err := config.SaveCredentials(creds); err != nil {
			return fmt.Errorf("failed to save credentials: %w", err)
		}

		path, _ := config.GetCredentialsPath()
		fmt.Printf("Credentials saved to %s\n", path)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&baseURLFlag, "base-url", "",
		"API base URL (defaults to "+config.DefaultBaseURL+")")
}
