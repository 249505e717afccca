// Package commands provides CLI commands for helpchat.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcosta/helpchat/internal/config"
)

var (
	// Global flags
	modelFlag  string
	outputFlag string
	fileFlag   string
	rawFlag    bool
	saveFlag   bool

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "helpchat [question]",
	Short: "Terminal client for the HelpChat support assistant",
	Long: `helpchat is a command-line client for the HelpChat support assistant.
Answers stream in live and arrive with source links, follow-up
suggestions, and support or demo pointers when they apply.

Examples:
  helpchat chat                         Start an interactive chat
  helpchat login hc-xxxx                Save your API key
  helpchat "How do I reset my key?"     Ask a single question
  helpchat -f question.md               Read the question from a file
  cat question.md | helpchat            Read the question from stdin
  helpchat "Hello" -o answer.md         Save the answer to a file`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("helpchat %s (built %s)\n", Version, BuildTime)
			return nil
		}

		// Check for stdin input
		stat, _ := os.Stdin.Stat()
		hasStdin := (stat.Mode() & os.ModeCharDevice) == 0

		if fileFlag != "" {
			data, err := os.ReadFile(fileFlag)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			return runQuery(string(data), rawFlag || !isStdoutTTY())
		}

		if hasStdin {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			return runQuery(string(data), rawFlag || !isStdoutTTY())
		}

		if len(args) > 0 {
			return runQuery(args[0], rawFlag || !isStdoutTTY())
		}

		// No input - show help
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Model to use (e.g., qa-gpt-4o)")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save answer to file")
	rootCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read question from file")
	rootCmd.Flags().BoolVar(&rawFlag, "raw", false, "Print only the answer text")
	rootCmd.Flags().BoolVar(&saveFlag, "save", false, "Save the exchange to local history")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(modelsCmd)
}

// getModel returns the model to use (from flag or config)
func getModel() string {
	if modelFlag != "" {
		return modelFlag
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return config.DefaultConfig().DefaultModel
	}

	return cfg.DefaultModel
}
