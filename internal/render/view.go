package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mcosta/helpchat/internal/config"
	"github.com/mcosta/helpchat/internal/engine"
)

// CardTargets holds the URLs advertised on answer cards.
type CardTargets struct {
	SupportURL string
	DemoURL    string
}

// CardTargetsFromConfig extracts the card URLs from user configuration.
func CardTargetsFromConfig(cfg config.Config) CardTargets {
	return CardTargets{
		SupportURL: cfg.SupportURL,
		DemoURL:    cfg.DemoURL,
	}
}

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	cardTitleStyle = lipgloss.NewStyle().Bold(true)

	sectionStyle = lipgloss.NewStyle().Bold(true)

	linkURLStyle = lipgloss.NewStyle().Faint(true)
)

// Answer renders a finalized answer for terminal display: the markdown
// body followed by the card, source links, and follow-up suggestions
// that apply to it.
func Answer(view engine.View, targets CardTargets, opts Options) (string, error) {
	var sb strings.Builder

	body, err := Markdown(view.Content, opts)
	if err != nil {
		return "", err
	}
	sb.WriteString(strings.TrimRight(body, "\n"))
	sb.WriteString("\n")

	if card := Card(view.Card, targets); card != "" {
		sb.WriteString("\n")
		sb.WriteString(card)
		sb.WriteString("\n")
	}

	if links := Links(view); links != "" {
		sb.WriteString("\n")
		sb.WriteString(links)
	}

	if followUps := FollowUps(view.FollowUpQuestions); followUps != "" {
		sb.WriteString("\n")
		sb.WriteString(followUps)
	}

	return sb.String(), nil
}

// Card renders the action card for a finalized answer. Returns an
// empty string when the answer carries no card.
func Card(kind engine.CardKind, targets CardTargets) string {
	var title, line string
	switch kind {
	case engine.CardSupport:
		title = "Get support"
		line = "Talk to a person: " + targets.SupportURL
	case engine.CardDemo:
		title = "Schedule a demo"
		line = "See the platform in action: " + targets.DemoURL
	default:
		return ""
	}

	content := cardTitleStyle.Render(title) + "\n" + line
	return cardStyle.Render(content)
}

// Links renders the source link list of a finalized answer.
func Links(view engine.View) string {
	if len(view.Links) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(sectionStyle.Render("Sources"))
	sb.WriteString("\n")
	for _, link := range view.Links {
		label := link.Label
		if label == "" {
			label = link.URL
		}
		sb.WriteString("  • ")
		sb.WriteString(label)
		sb.WriteString(" ")
		sb.WriteString(linkURLStyle.Render("(" + link.URL + ")"))
		sb.WriteString("\n")
	}
	return sb.String()
}

// FollowUps renders the numbered follow-up suggestions. The numbers
// match the keys that dispatch them in the chat interface.
func FollowUps(questions []string) string {
	if len(questions) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(sectionStyle.Render("You could ask"))
	sb.WriteString("\n")
	for i, q := range questions {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, q))
	}
	return sb.String()
}
