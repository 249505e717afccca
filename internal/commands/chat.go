package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcosta/helpchat/internal/api"
	"github.com/mcosta/helpchat/internal/config"
	"github.com/mcosta/helpchat/internal/history"
	"github.com/mcosta/helpchat/internal/render"
	"github.com/mcosta/helpchat/internal/tui"
)

var noSaveFlag bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session with the support assistant.

The chat keeps conversation context across questions, streams each
answer as it is generated, and numbers the suggested follow-up
questions so you can ask them with a single key.

Type 'exit', 'quit', or press Ctrl+C to end the session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

func init() {
	chatCmd.Flags().BoolVar(&noSaveFlag, "no-save", false, "Do not persist this session to local history")
}

func runChat() error {
	cfg, _ := config.LoadConfig()
	if cfg.TUITheme != "" {
		if render.SetTheme(cfg.TUITheme) {
			tui.UpdateTheme()
		}
	}

	creds, err := config.LoadCredentials()
	if err != nil {
		return err
	}

	modelName := getModel()
	client, err := api.NewClient(creds, api.WithModel(modelName))
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	// Sessions persist by default; --no-save opts out.
	var store *history.Store
	var convID string
	if !noSaveFlag {
		store, err = history.DefaultStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: history unavailable: %v\n", err)
			store = nil
		} else {
			conv, err := store.CreateConversation(modelName)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: history unavailable: %v\n", err)
				store = nil
			} else {
				convID = conv.ID
			}
		}
	}

	targets := render.CardTargetsFromConfig(cfg)
	return tui.RunChat(client, modelName, targets, store, convID)
}
