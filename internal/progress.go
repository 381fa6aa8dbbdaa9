package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))
)

var spinnerChars = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// ShowProgress runs fn while a spinner is shown on stderr. Without a
// terminal it just logs the message and runs fn.
func ShowProgress(ctx context.Context, message string, fn func() error) error {
	if !isTerminal(os.Stderr) {
		LogInfo("%s", message)
		return fn()
	}

	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case err := <-done:
			if err != nil {
				fmt.Fprintf(os.Stderr, "\r%s %s\n", errorStyle.Render("✗"), message)
				return err
			}
			fmt.Fprintf(os.Stderr, "\r%s %s\n", successStyle.Render("✓"), message)
			return nil
		case <-ctx.Done():
			fmt.Fprintf(os.Stderr, "\r%s %s\n", warningStyle.Render("⚠"), message)
			return ctx.Err()
		case <-ticker.C:
			char := spinnerChars[i%len(spinnerChars)]
			fmt.Fprintf(os.Stderr, "\r%s %s", progressStyle.Render(char), message)
		}
	}
}

// ChunkPrinter writes the per-chunk estimated values and the convergence
// line as results are integrated
type ChunkPrinter struct {
	mu     sync.Mutex
	w      io.Writer
	styled bool
}

// NewChunkPrinter creates a printer; styling is applied only on terminals
func NewChunkPrinter(w io.Writer) *ChunkPrinter {
	return &ChunkPrinter{w: w, styled: isTerminal(w)}
}

// Observe implements Observer
func (p *ChunkPrinter) Observe(e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e.Kind {
	case EventStart:
		p.printf("%s %d chunk(s)\n", p.label("Run "+e.Snapshot.RunID+":"), e.Snapshot.ChunkCount)
	case EventIntegrate:
		if e.Result == nil {
			return
		}
		p.printf("%s %s\n", p.label(fmt.Sprintf("Chunk %d:", e.Snapshot.Cursor)), p.value(formatValue(e.Result.RandomValue)))
	case EventStepFailed:
		p.printf("%s chunk %d: %v\n", p.mark(errorStyle, "✗"), e.Snapshot.Cursor+1, e.Err)
	case EventCompleted:
		p.printf("%s\n", ConvergenceLine(e.Snapshot.Series))
	}
}

// ConvergenceLine renders the convergence status for display
func ConvergenceLine(series Series) string {
	if !series.Converged() {
		return "Convergence occurs at chunk: Not yet"
	}
	return fmt.Sprintf("Convergence occurs at chunk: %d", *series.ConvergenceChunk)
}

func (p *ChunkPrinter) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.w, format, args...)
}

func (p *ChunkPrinter) label(s string) string {
	if !p.styled {
		return s
	}
	return labelStyle.Render(s)
}

func (p *ChunkPrinter) value(s string) string {
	if !p.styled {
		return s
	}
	return valueStyle.Render(s)
}

func (p *ChunkPrinter) mark(style lipgloss.Style, s string) string {
	if !p.styled {
		return "error:"
	}
	return style.Render(s)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	if isTerminal(os.Stdout) {
		fmt.Printf("%s %s\n", successStyle.Render("✓"), message)
	} else {
		fmt.Println(message)
	}
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	if isTerminal(os.Stdout) {
		fmt.Printf("%s %s\n", progressStyle.Render("ℹ"), message)
	} else {
		fmt.Println(message)
	}
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	if isTerminal(os.Stderr) {
		fmt.Fprintf(os.Stderr, "%s %s\n", warningStyle.Render("⚠"), message)
	} else {
		fmt.Fprintf(os.Stderr, "WARNING: %s\n", message)
	}
}
