// Package history provides local conversation history storage.
package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ExportFormat represents the format for exporting conversations
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
)

// ExportOptions configures how conversations are exported
type ExportOptions struct {
	Format           ExportFormat
	IncludeLinks     bool // Include source links under assistant answers
	IncludeFollowUps bool // Include suggested follow-up questions
}

// DefaultExportOptions returns sensible defaults for export
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		Format:           ExportFormatMarkdown,
		IncludeLinks:     true,
		IncludeFollowUps: false,
	}
}

// ExportToMarkdown exports a conversation to Markdown format
func (s *Store) ExportToMarkdown(id string) (string, error) {
	return s.ExportToMarkdownWithOptions(id, DefaultExportOptions())
}

// ExportToMarkdownWithOptions exports a conversation to Markdown with options
func (s *Store) ExportToMarkdownWithOptions(id string, opts ExportOptions) (string, error) {
	conv, err := s.GetConversation(id)
	if err != nil {
		return "", err
	}

	var sb strings.Builder

	// Header
	sb.WriteString("# ")
	sb.WriteString(conv.Title)
	sb.WriteString("\n\n")

	// Metadata
	sb.WriteString("**Model:** ")
	sb.WriteString(conv.Model)
	sb.WriteString("\n")
	sb.WriteString("**Created:** ")
	sb.WriteString(conv.CreatedAt.Format("2006-01-02 15:04:05"))
	sb.WriteString("\n")
	sb.WriteString("**Updated:** ")
	sb.WriteString(conv.UpdatedAt.Format("2006-01-02 15:04:05"))
	sb.WriteString("\n")
	sb.WriteString("**Messages:** ")
	sb.WriteString(fmt.Sprintf("%d", len(conv.Messages)))
	sb.WriteString("\n\n---\n\n")

	// Messages
	for i, msg := range conv.Messages {
		role := "User"
		if msg.Role == "assistant" {
			role = "Assistant"
		}

		sb.WriteString("## ")
		sb.WriteString(role)
		if !msg.Timestamp.IsZero() {
			sb.WriteString(" (")
			sb.WriteString(msg.Timestamp.Format("15:04:05"))
			sb.WriteString(")")
		}
		sb.WriteString("\n\n")

		sb.WriteString(msg.Content)
		sb.WriteString("\n")

		if msg.Card != "" {
			sb.WriteString("\n> ")
			sb.WriteString(cardExportLabel(msg.Card))
			sb.WriteString("\n")
		}

		if opts.IncludeLinks && len(msg.Links) > 0 {
			sb.WriteString("\n**Sources:**\n")
			for _, link := range msg.Links {
				sb.WriteString(fmt.Sprintf("- [%s](%s)\n", link.Label, link.URL))
			}
		}

		if opts.IncludeFollowUps && len(msg.FollowUpQuestions) > 0 {
			sb.WriteString("\n**Suggested follow-ups:**\n")
			for _, q := range msg.FollowUpQuestions {
				sb.WriteString("- ")
				sb.WriteString(q)
				sb.WriteString("\n")
			}
		}

		// Separator between messages (except last)
		if i < len(conv.Messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String(), nil
}

func cardExportLabel(card string) string {
	switch card {
	case "support":
		return "The assistant suggested contacting support."
	case "demo":
		return "The assistant suggested scheduling a demo."
	default:
		return ""
	}
}

// ExportToJSON exports a conversation to JSON format
func (s *Store) ExportToJSON(id string) ([]byte, error) {
	conv, err := s.GetConversation(id)
	if err != nil {
		return nil, err
	}

	return json.MarshalIndent(conv, "", "  ")
}

// SearchResult represents a search match in conversations
type SearchResult struct {
	Conversation *Conversation
	MatchSnippet string // Snippet where the term was found
	MatchField   string // "title" or "content"
	MatchIndex   int    // Message index if MatchField is "content", -1 for title
}

// SearchConversations searches for a query in conversation titles and optionally content
func (s *Store) SearchConversations(query string, searchContent bool) ([]*SearchResult, error) {
	conversations, err := s.ListConversations()
	if err != nil {
		return nil, err
	}

	queryLower := strings.ToLower(query)
	var results []*SearchResult

	for _, conv := range conversations {
		// Search in title
		if strings.Contains(strings.ToLower(conv.Title), queryLower) {
			results = append(results, &SearchResult{
				Conversation: conv,
				MatchSnippet: conv.Title,
				MatchField:   "title",
				MatchIndex:   -1,
			})
			continue // Don't search content if title matched
		}

		// Search in content if enabled
		if searchContent {
			for i, msg := range conv.Messages {
				contentLower := strings.ToLower(msg.Content)
				if strings.Contains(contentLower, queryLower) {
					// Extract snippet around match
					snippet := extractSnippet(msg.Content, query, 100)
					results = append(results, &SearchResult{
						Conversation: conv,
						MatchSnippet: snippet,
						MatchField:   "content",
						MatchIndex:   i,
					})
					break // Only one match per conversation
				}
			}
		}
	}

	return results, nil
}

// extractSnippet extracts a snippet around the first occurrence of query
func extractSnippet(content, query string, maxLen int) string {
	contentLower := strings.ToLower(content)
	queryLower := strings.ToLower(query)

	idx := strings.Index(contentLower, queryLower)
	if idx == -1 {
		// Shouldn't happen, but fallback to start
		if len(content) > maxLen {
			return content[:maxLen] + "..."
		}
		return content
	}

	// Calculate start and end positions
	half := maxLen / 2
	start := idx - half
	end := idx + len(query) + half

	if start < 0 {
		start = 0
		end = maxLen
	}
	if end > len(content) {
		end = len(content)
		start = end - maxLen
		if start < 0 {
			start = 0
		}
	}

	snippet := content[start:end]

	// Add ellipsis if truncated
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(content) {
		snippet = snippet + "..."
	}

	return snippet
}

// FormatRelativeTime formats a time as a short relative string
func FormatRelativeTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 min ago"
		}
		return fmt.Sprintf("%d min ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hours)
	case diff < 48*time.Hour:
		return "yesterday"
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		return fmt.Sprintf("%d days ago", days)
	case diff < 30*24*time.Hour:
		weeks := int(diff.Hours() / 24 / 7)
		if weeks == 1 {
			return "1 week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	default:
		months := int(diff.Hours() / 24 / 30)
		if months == 1 {
			return "1 month ago"
		}
		if months < 12 {
			return fmt.Sprintf("%d months ago", months)
		}
		return t.Format("2006-01-02")
	}
}
