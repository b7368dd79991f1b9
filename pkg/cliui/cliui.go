// Package cliui provides reusable terminal UI helpers (spinners, step indicators,
// morpheme rendering, markdown rendering) for morfo CLI commands.
package cliui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/morfolab/morfo/pkg/morph"
)

var (
	SuccessMark  = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("✓")
	FailMark     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")
	StepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	NameStyle    = lipgloss.NewStyle().Bold(true)
	DimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	WarnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	KeyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
	ValueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("156"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
)

// categoryColors is the color palette for morpheme categories. Unknown
// categories fall back to the default terminal foreground.
var categoryColors = map[string]lipgloss.Color{
	"root":       "81",
	"plural":     "213",
	"possessive": "222",
	"case":       "214",
	"tense":      "156",
	"person":     "117",
	"negation":   "203",
	"question":   "147",
	"derivation": "180",
	"voice":      "111",
	"copula":     "150",
}

// spinnerFrames matches bubbletea's spinner.Dot pattern.
var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// Step prints an animated spinner while fn runs, then replaces it with
// a ✓ or ✗ checkmark and elapsed time.
func Step(w io.Writer, msg string, fn func() error) error {
	done := make(chan struct{})
	var mu sync.Mutex

	// Run spinner animation in background
	go func() {
		frame := 0
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for {
			mu.Lock()
			fmt.Fprintf(w, "\r  %s %s",
				spinnerStyle.Render(spinnerFrames[frame%len(spinnerFrames)]),
				msg,
			)
			mu.Unlock()

			select {
			case <-done:
				return
			case <-ticker.C:
				frame++
			}
		}
	}()

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	close(done)

	// Clear the spinner line and print final result
	mu.Lock()
	fmt.Fprintf(w, "\r  %s %s %s\n",
		Mark(err),
		msg,
		StepStyle.Render(fmt.Sprintf("(%s)", FormatDuration(elapsed))),
	)
	mu.Unlock()

	return err
}

// Mark returns a ✓ for nil errors or ✗ for non-nil errors.
func Mark(err error) string {
	if err != nil {
		return FailMark
	}
	return SuccessMark
}

// FormatDuration formats a duration for display (e.g. "12ms" or "3.2s").
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// CategoryStyle returns the display style for a morpheme category.
func CategoryStyle(category string) lipgloss.Style {
	if color, ok := categoryColors[category]; ok {
		return lipgloss.NewStyle().Foreground(color)
	}
	return lipgloss.NewStyle()
}

// RenderEntry renders one analysis entry: the surface form, its morpheme
// segmentation color-coded by category, glosses, and the translation.
func RenderEntry(entry *morph.Entry) string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render(entry.Surface))
	b.WriteString("\n")

	if len(entry.Morphemes) > 0 {
		segments := make([]string, 0, len(entry.Morphemes))
		for _, m := range entry.Morphemes {
			segments = append(segments, CategoryStyle(m.Category).Render(m.Text))
		}
		b.WriteString("  ")
		b.WriteString(strings.Join(segments, DimStyle.Render("-")))
		b.WriteString("\n")

		for _, m := range entry.Morphemes {
			b.WriteString("  ")
			b.WriteString(CategoryStyle(m.Category).Render(m.Text))
			b.WriteString(" ")
			b.WriteString(DimStyle.Render(m.Category))
			if m.Gloss != "" {
				b.WriteString(DimStyle.Render(" · " + m.Gloss))
			}
			b.WriteString("\n")
		}
	}

	if entry.Translation != "" {
		b.WriteString("  ")
		b.WriteString(NameStyle.Render(entry.Translation))
		b.WriteString("\n")
	}

	return b.String()
}

// RenderMarkdown renders markdown content for terminal display using glamour.
func RenderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content, err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}

	return rendered, nil
}
