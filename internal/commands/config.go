package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mcosta/helpchat/internal/config"
	"github.com/mcosta/helpchat/internal/render"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change settings",
	Long:  `Show and change helpchat settings stored in ~/.helpchat/config.json.`,
	RunE:  runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a setting. Available keys:

  model               Default model for new sessions
  support-url         Target of the "get support" card
  demo-url            Target of the "schedule a demo" card
  theme               Chat color theme (` + strings.Join(render.ThemeNames(), ", ") + `)
  markdown-style      Markdown style (dark, light, or a JSON theme path)
  verbose             Verbose diagnostics (true/false)
  copy-to-clipboard   Copy one-shot answers to the clipboard (true/false)`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "model\t%s\n", cfg.DefaultModel)
	fmt.Fprintf(w, "support-url\t%s\n", cfg.SupportURL)
	fmt.Fprintf(w, "demo-url\t%s\n", cfg.DemoURL)
	fmt.Fprintf(w, "theme\t%s\n", cfg.TUITheme)
	fmt.Fprintf(w, "markdown-style\t%s\n", cfg.Markdown.Style)
	fmt.Fprintf(w, "verbose\t%t\n", cfg.Verbose)
	fmt.Fprintf(w, "copy-to-clipboard\t%t\n", cfg.CopyToClipboard)
	return w.Flush()
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch key {
	case "model":
		cfg.DefaultModel = value
	case "support-url":
		cfg.SupportURL = value
	case "demo-url":
		cfg.DemoURL = value
	case "theme":
		if _, ok := render.ThemeByName(value); !ok {
			return fmt.Errorf("unknown theme %q (available: %s)",
				value, strings.Join(render.ThemeNames(), ", "))
		}
		cfg.TUITheme = value
	case "markdown-style":
		cfg.Markdown.Style = value
	case "verbose":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("verbose needs true or false, got %q", value)
		}
		cfg.Verbose = b
	case "copy-to-clipboard":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("copy-to-clipboard needs true or false, got %q", value)
		}
		cfg.CopyToClipboard = b
	default:
		return fmt.Errorf("unknown setting %q", key)
	}

	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("%s = %s\n", key, value)
	return nil
}
