package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/mcosta/helpchat/internal/api"
	"github.com/mcosta/helpchat/internal/config"
	"github.com/mcosta/helpchat/internal/conversation"
	"github.com/mcosta/helpchat/internal/engine"
	apierrors "github.com/mcosta/helpchat/internal/errors"
	"github.com/mcosta/helpchat/internal/history"
	"github.com/mcosta/helpchat/internal/render"
)

// Gradient colors for animation
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#ff6b6b"), // Red
	lipgloss.Color("#feca57"), // Yellow
	lipgloss.Color("#48dbfb"), // Cyan
	lipgloss.Color("#ff9ff3"), // Pink
	lipgloss.Color("#54a0ff"), // Blue
	lipgloss.Color("#5f27cd"), // Purple
	lipgloss.Color("#00d2d3"), // Teal
	lipgloss.Color("#1dd1a1"), // Green
}

var (
	colorText     = lipgloss.Color("#c0caf5")
	colorTextDim  = lipgloss.Color("#565f89")
	colorTextMute = lipgloss.Color("#3b4261")
	colorSuccess  = lipgloss.Color("#9ece6a")
	colorFailure  = lipgloss.Color("#f7768e")
)

// spinner handles the animated loading indicator
type spinner struct {
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool // Flag to prevent double-close
}

// newSpinner creates a new animated spinner
func newSpinner(message string) *spinner {
	return &spinner{
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(os.Stderr, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(os.Stderr, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

	spinIdx := s.frame % len(chars)
	spinColor := gradientColors[s.frame%len(gradientColors)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[spinIdx])

	var dots strings.Builder
	numDots := (s.frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dotColor := gradientColors[(s.frame+i)%len(gradientColors)]
			dots.WriteString(lipgloss.NewStyle().Foreground(dotColor).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)

	fmt.Fprintf(os.Stderr, "\r\033[K%s %s %s", spinnerChar, msg, dots.String())
}

// setMessage swaps the spinner text mid-animation
func (s *spinner) setMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows success message
func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	checkmark := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	msg := lipgloss.NewStyle().Foreground(colorSuccess).Render(message)
	fmt.Fprintf(os.Stderr, "%s %s\n", checkmark, msg)
}

// stopWithError stops the spinner and shows error
func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}

// runQuery asks a single question and prints the finalized answer.
// If rawOutput is true, only the answer text is printed without decoration.
func runQuery(question string, rawOutput bool) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return fmt.Errorf("question cannot be empty")
	}

	cfg, _ := config.LoadConfig()

	creds, err := config.LoadCredentials()
	if err != nil {
		return err
	}

	modelName := getModel()
	if cfg.Verbose && !rawOutput {
		fmt.Fprintf(os.Stderr, "[verbose] Model: %s\n", modelName)
	}

	client, err := api.NewClient(creds, api.WithModel(modelName))
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	var spin *spinner
	if !rawOutput {
		spin = newSpinner("Waiting for the assistant")
		spin.start()
	}

	ctx := context.Background()
	turnHistory := []conversation.Message{
		{Role: conversation.RoleUser, Content: question},
	}
	fragments, errs := client.StreamAnswer(ctx, turnHistory)

	startTime := time.Now()
	state, err := engine.Consume(ctx, fragments, errs, func(snap engine.Snapshot) {
		if spin != nil {
			spin.setMessage(fmt.Sprintf("Receiving answer (%d chars)", len(snap.Content)))
		}
	})
	requestDuration := time.Since(startTime)

	if err != nil {
		if !rawOutput {
			spin.stopWithError()
			fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Answer failed"))
		}
		return fmt.Errorf("answer failed: %w", err)
	}

	view := engine.Finalize(state)

	if !rawOutput {
		spin.stopWithSuccess("Done")
	}
	if cfg.Verbose && !rawOutput {
		fmt.Fprintf(os.Stderr, "[verbose] Request took %s\n", requestDuration.Round(time.Millisecond))
	}

	if saveFlag {
		if err := saveExchange(modelName, question, view); err != nil && !rawOutput {
			fmt.Fprintf(os.Stderr, "Warning: failed to save history: %v\n", err)
		}
	}

	// Raw output mode: answer text only
	if rawOutput {
		if outputFlag != "" {
			return os.WriteFile(outputFlag, []byte(view.Content), 0o644)
		}
		fmt.Print(view.Content)
		return nil
	}

	fmt.Fprintln(os.Stderr)

	if cfg.CopyToClipboard {
		if err := clipboard.WriteAll(view.Content); err != nil {
			warnMsg := lipgloss.NewStyle().Foreground(colorFailure).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
			)
			fmt.Fprintln(os.Stderr, warnMsg)
		} else {
			clipMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard")
			fmt.Fprintln(os.Stderr, clipMsg)
		}
	}

	if outputFlag != "" {
		if err := os.WriteFile(outputFlag, []byte(view.Content), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		successMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render(
			fmt.Sprintf("✓ Answer saved to %s", outputFlag),
		)
		fmt.Fprintln(os.Stderr, successMsg)
		return nil
	}

	// Decorated output for a TTY
	termWidth := getTerminalWidth()
	contentWidth := termWidth - 8
	if contentWidth < 40 {
		contentWidth = 40
	}
	if contentWidth > 120 {
		contentWidth = 120
	}

	targets := render.CardTargetsFromConfig(cfg)
	renderOpts := render.LoadOptionsFromConfigWithWidth(contentWidth)
	out, err := render.Answer(view, targets, renderOpts)
	if err != nil {
		out = view.Content
	}
	fmt.Println(out)

	return nil
}

// saveExchange persists a one-shot question and its answer to history.
func saveExchange(modelName, question string, view engine.View) error {
	store, err := history.DefaultStore()
	if err != nil {
		return err
	}
	conv, err := store.CreateConversation(modelName)
	if err != nil {
		return err
	}
	if err := store.AddUserMessage(conv.ID, question); err != nil {
		return err
	}
	return store.AddAnswer(conv.ID, view)
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // default width
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	errStyle := lipgloss.NewStyle().Foreground(colorFailure)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))

	switch {
	case apierrors.IsAuthError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Run 'helpchat login <api-key>' to set your credentials"))
	case apierrors.IsStreamError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The answer stream was interrupted. Try again"))
	}

	return sb.String()
}
