package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mcosta/helpchat/internal/conversation"
	"github.com/mcosta/helpchat/internal/engine"
	"github.com/mcosta/helpchat/internal/history"
	"github.com/mcosta/helpchat/internal/render"
)

// Turn lifecycle messages, forwarded from the synchronizer goroutine.
type (
	turnStartedMsg struct {
		entryID string
	}
	snapshotMsg struct {
		entryID  string
		snapshot engine.Snapshot
	}
	turnCompletedMsg struct {
		entryID string
		view    engine.View
	}
	turnFailedMsg struct {
		entryID string
		err     error
	}
)

// programListener bridges synchronizer callbacks into the bubbletea
// event loop. The channel is buffered so the consumer goroutine never
// blocks on a busy UI.
type programListener struct {
	ch chan tea.Msg
}

func newProgramListener() *programListener {
	return &programListener{ch: make(chan tea.Msg, 128)}
}

func (l *programListener) TurnStarted(entryID string) {
	l.ch <- turnStartedMsg{entryID: entryID}
}

func (l *programListener) SnapshotUpdated(entryID string, snap engine.Snapshot) {
	l.ch <- snapshotMsg{entryID: entryID, snapshot: snap}
}

func (l *programListener) TurnCompleted(entryID string, view engine.View) {
	l.ch <- turnCompletedMsg{entryID: entryID, view: view}
}

func (l *programListener) TurnFailed(entryID string, err error) {
	l.ch <- turnFailedMsg{entryID: entryID, err: err}
}

// Model represents the chat TUI state
type Model struct {
	syn       *conversation.Synchronizer
	modelName string
	targets   render.CardTargets
	events    chan tea.Msg

	// Optional persistence
	store  *history.Store
	convID string

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	loading   bool
	ready     bool
	err       error
	followUps []string

	// Dimensions
	width  int
	height int
}

// NewChatModel creates a new chat TUI model over a fragment producer.
func NewChatModel(producer conversation.Producer, modelName string, targets render.CardTargets) Model {
	listener := newProgramListener()

	ta := textarea.New()
	ta.Placeholder = "Ask a question..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		syn:       conversation.NewSynchronizer(producer, listener),
		modelName: modelName,
		targets:   targets,
		events:    listener.ch,
		textarea:  ta,
		spinner:   s,
	}
}

// WithHistory attaches a history store so each turn persists as it
// completes.
func (m Model) WithHistory(store *history.Store, convID string) Model {
	m.store = store
	m.convID = convID
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.waitForEvent(),
	)
}

// waitForEvent blocks on the next synchronizer lifecycle event.
func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4
		inputHeight := 6
		statusHeight := 1
		padding := 2

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}

		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.textarea.SetWidth(contentWidth - 4)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
			m.textarea.SetWidth(contentWidth - 4)
		}
		m.updateViewport()

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			if !m.loading {
				return m, tea.Quit
			}

		case "enter":
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				break
			}
			if input == "exit" || input == "quit" || input == "/exit" || input == "/quit" {
				return m, tea.Quit
			}
			m.textarea.Reset()
			return m.submit(input)

		default:
			// Bare digits pick a suggested follow-up question.
			if !m.loading && m.textarea.Value() == "" && len(key) == 1 && key >= "1" && key <= "9" {
				if n, err := strconv.Atoi(key); err == nil && n <= len(m.followUps) {
					return m.submit(m.followUps[n-1])
				}
			}
		}

	case turnStartedMsg:
		m.loading = true
		m.updateViewport()
		m.viewport.GotoBottom()
		cmds = append(cmds, m.waitForEvent())

	case snapshotMsg:
		m.updateViewport()
		m.viewport.GotoBottom()
		cmds = append(cmds, m.waitForEvent())

	case turnCompletedMsg:
		m.loading = false
		m.followUps = msg.view.FollowUpQuestions
		if m.store != nil && m.convID != "" {
			_ = m.store.AddAnswer(m.convID, msg.view)
		}
		m.updateViewport()
		m.viewport.GotoBottom()
		cmds = append(cmds, m.waitForEvent())

	case turnFailedMsg:
		m.loading = false
		m.err = msg.err
		m.updateViewport()
		m.viewport.GotoBottom()
		cmds = append(cmds, m.waitForEvent())

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	// Only pass KeyMsg to the textarea to prevent escape sequence leaks
	if !m.loading {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit starts a new turn from user input or a follow-up pick.
func (m Model) submit(input string) (tea.Model, tea.Cmd) {
	_, err := m.syn.SubmitTurn(input)
	if err != nil {
		m.err = err
		return m, nil
	}

	m.err = nil
	m.followUps = nil
	m.loading = true
	if m.store != nil && m.convID != "" {
		_ = m.store.AddUserMessage(m.convID, input)
	}
	m.updateViewport()
	m.viewport.GotoBottom()

	return m, m.spinner.Tick
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	header := headerStyle.Width(contentWidth).Render(
		lipgloss.JoinHorizontal(
			lipgloss.Center,
			titleStyle.Render("✳ HelpChat"),
			hintStyle.Render("  •  "),
			subtitleStyle.Render(m.modelName),
		),
	)
	sections = append(sections, header)

	var messagesContent string
	if len(m.syn.Entries()) == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent))

	var inputContent string
	if m.loading {
		inputContent = m.spinner.View() + loadingStyle.Render(" Assistant is answering...")
	} else {
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.err != nil {
		sections = append(sections, FormatError(m.err))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderWelcome renders the welcome screen when no messages exist
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	icon := welcomeIconStyle.Width(width).Render("✳")
	title := welcomeTitleStyle.Width(width).Render("Welcome to HelpChat")
	subtitle := welcomeStyle.Width(width).Render("Ask anything about the product to get started")

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		icon,
		"",
		title,
		"",
		subtitle,
		"",
	)

	contentHeight := lipgloss.Height(content)
	topPadding := (height - contentHeight) / 2
	if topPadding < 0 {
		topPadding = 0
	}

	return strings.Repeat("\n", topPadding) + content
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Esc", "Quit"},
		{"↑↓", "Scroll"},
	}
	if len(m.followUps) > 0 {
		shortcuts = append(shortcuts, struct {
			key  string
			desc string
		}{"1-" + strconv.Itoa(len(m.followUps)), "Ask follow-up"})
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	bar := strings.Join(items, "  │  ")
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// updateViewport refreshes the viewport content with styled entries
func (m *Model) updateViewport() {
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6

	entries := m.syn.Entries()
	for i, entry := range entries {
		if i > 0 {
			content.WriteString("\n")
		}

		switch {
		case entry.Role == conversation.RoleUser:
			label := userLabelStyle.Render("⬤ You")
			bubble := userBubbleStyle.Width(bubbleWidth).Render(entry.View.Content)
			content.WriteString(label + "\n" + bubble)

		case entry.Failed:
			label := assistantLabelStyle.Render("✳ Assistant")
			bubble := failedBubbleStyle.Width(bubbleWidth).Render(
				"No answer arrived for this question. Ask again to retry.")
			content.WriteString(label + "\n" + bubble)

		case entry.InProgress:
			label := assistantLabelStyle.Render("✳ Assistant")
			body := entry.View.Content
			if body == "" {
				body = "…"
			} else {
				body += " ▌"
			}
			rendered := m.renderMarkdown(body, bubbleWidth-4)
			bubble := assistantBubbleStyle.Width(bubbleWidth).Render(rendered)
			content.WriteString(label + "\n" + bubble)

		default:
			content.WriteString(m.renderAnswer(entry.View, bubbleWidth))
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// renderAnswer renders a completed assistant entry: the answer bubble
// plus whichever card, links, and follow-ups the turn finalized with.
func (m *Model) renderAnswer(view engine.View, bubbleWidth int) string {
	var sb strings.Builder

	sb.WriteString(assistantLabelStyle.Render("✳ Assistant"))
	sb.WriteString("\n")

	rendered := m.renderMarkdown(view.Content, bubbleWidth-4)
	sb.WriteString(assistantBubbleStyle.Width(bubbleWidth).Render(rendered))

	if card := render.Card(view.Card, m.targets); card != "" {
		sb.WriteString("\n")
		sb.WriteString(card)
	}
	if links := render.Links(view); links != "" {
		sb.WriteString("\n")
		sb.WriteString(strings.TrimRight(links, "\n"))
	}
	if followUps := render.FollowUps(view.FollowUpQuestions); followUps != "" {
		sb.WriteString("\n")
		sb.WriteString(strings.TrimRight(followUps, "\n"))
	}

	return sb.String()
}

func (m *Model) renderMarkdown(content string, width int) string {
	rendered, err := render.MarkdownWithWidth(content, width)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

// RunChat starts the chat TUI over the given producer.
func RunChat(producer conversation.Producer, modelName string, targets render.CardTargets, store *history.Store, convID string) error {
	m := NewChatModel(producer, modelName, targets)
	if store != nil && convID != "" {
		m = m.WithHistory(store, convID)
	}

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
