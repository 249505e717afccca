package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mcosta/helpchat/internal/history"
)

var (
	exportFormatFlag    string
	exportOutFlag       string
	exportFollowUpsFlag bool
	searchContentFlag   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage saved conversations",
	Long: `View and manage your locally saved conversations.

Conversations can be referenced by ID, by list index, by a title
substring, or with the aliases ` + history.ListAliases() + `.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved conversations",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <ref>",
	Short: "Show a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <ref>",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all conversations",
	RunE:  runHistoryClear,
}

var historyExportCmd = &cobra.Command{
	Use:   "export <ref>",
	Short: "Export a conversation as markdown or JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryExport,
}

var historySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search saved conversations",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistorySearch,
}

func init() {
	historyExportCmd.Flags().StringVarP(&exportFormatFlag, "format", "f", "markdown", "export format (markdown, json)")
	historyExportCmd.Flags().StringVarP(&exportOutFlag, "output", "o", "", "write export to file instead of stdout")
	historyExportCmd.Flags().BoolVar(&exportFollowUpsFlag, "follow-ups", false, "include suggested follow-up questions")
	historySearchCmd.Flags().BoolVar(&searchContentFlag, "content", false, "search message content, not just titles")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historySearchCmd)
}

func openResolver() (*history.Store, *history.Resolver, error) {
	store, err := history.DefaultStore()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history: %w", err)
	}
	return store, history.NewResolver(store), nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := history.DefaultStore()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}

	conversations, err := store.ListConversations()
	if err != nil {
		return fmt.Errorf("failed to list conversations: %w", err)
	}

	if len(conversations) == 0 {
		fmt.Println("No conversations saved yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tID\tTITLE\tMESSAGES\tUPDATED")

	for i, conv := range conversations {
		title := conv.Title
		if len(title) > 40 {
			title = title[:40] + "..."
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
			i+1, conv.ID, title, len(conv.Messages), history.FormatRelativeTime(conv.UpdatedAt))
	}

	return w.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	_, resolver, err := openResolver()
	if err != nil {
		return err
	}

	conv, err := resolver.ResolveWithInfo(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("ID: %s\n", conv.ID)
	fmt.Printf("Title: %s\n", conv.Title)
	fmt.Printf("Model: %s\n", conv.Model)
	fmt.Printf("Created: %s\n", conv.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Updated: %s\n", conv.UpdatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Messages: %d\n", len(conv.Messages))
	fmt.Println()

	for i, msg := range conv.Messages {
		role := "You"
		if msg.Role == "assistant" {
			role = "Assistant"
		}
		fmt.Printf("[%d] %s (%s):\n", i+1, role, msg.Timestamp.Format("15:04"))

		content := msg.Content
		if len(content) > 500 {
			content = content[:500] + "..."
		}
		fmt.Printf("  %s\n", content)

		switch msg.Card {
		case "support":
			fmt.Println("  [suggested contacting support]")
		case "demo":
			fmt.Println("  [suggested scheduling a demo]")
		}
		for _, link := range msg.Links {
			label := link.Label
			if label == "" {
				label = link.URL
			}
			fmt.Printf("  - %s (%s)\n", label, link.URL)
		}
		fmt.Println()
	}

	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	store, resolver, err := openResolver()
	if err != nil {
		return err
	}

	id, err := resolver.Resolve(args[0])
	if err != nil {
		return err
	}

	if err := store.DeleteConversation(id); err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}

	fmt.Printf("Deleted conversation: %s\n", id)
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	store, err := history.DefaultStore()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}

	if err := store.ClearAll(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	fmt.Println("All conversations deleted.")
	return nil
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	store, resolver, err := openResolver()
	if err != nil {
		return err
	}

	id, err := resolver.Resolve(args[0])
	if err != nil {
		return err
	}

	var data []byte
	switch strings.ToLower(exportFormatFlag) {
	case "markdown", "md":
		opts := history.DefaultExportOptions()
		opts.IncludeFollowUps = exportFollowUpsFlag
		md, err := store.ExportToMarkdownWithOptions(id, opts)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		data = []byte(md)
	case "json":
		data, err = store.ExportToJSON(id)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q (use markdown or json)", exportFormatFlag)
	}

	if exportOutFlag != "" {
		if err := os.WriteFile(exportOutFlag, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", exportOutFlag, err)
		}
		fmt.Printf("Exported to %s\n", exportOutFlag)
		return nil
	}

	fmt.Println(string(data))
	return nil
}

func runHistorySearch(cmd *cobra.Command, args []string) error {
	store, err := history.DefaultStore()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}

	results, err := store.SearchConversations(args[0], searchContentFlag)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tMATCH")
	for _, res := range results {
		snippet := res.MatchSnippet
		if res.MatchField == "title" {
			snippet = "(title)"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", res.Conversation.ID, res.Conversation.Title, snippet)
	}
	return w.Flush()
}
