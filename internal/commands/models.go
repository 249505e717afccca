package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mcosta/helpchat/internal/api"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List known assistant models",
	RunE: func(cmd *cobra.Command, args []string) error {
		current := getModel()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, m := range api.AllModels() {
			marker := " "
			if m.Name == current {
				marker = "*"
			}
			_, _ = fmt.Fprintf(w, "%s %s\t%s\n", marker, m.Name, m.Description)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if !api.IsKnownModel(current) {
			fmt.Printf("\nCurrent model %q is not in the catalog and will be passed through as-is.\n", current)
		}
		return nil
	},
}
