// Package statusline renders the aggregate provider health line shown at the
// bottom of the terminal UI.
package statusline

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/providers"
)

var (
	styleConnected = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleError     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	styleMuted     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleSeparator = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleBar       = lipgloss.NewStyle().Padding(0, 1)
)

// StatusLine keeps the latest provider snapshot and renders it on demand.
// Update is safe to call from the notifier's fan-out goroutine.
type StatusLine struct {
	mu       sync.Mutex
	snapshot providers.Snapshot
	width    int
}

func New(width int) *StatusLine {
	return &StatusLine{width: width}
}

// Update replaces the rendered snapshot. Wire this to the status notifier.
func (s *StatusLine) Update(snapshot providers.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot
}

// SetWidth adjusts the bar width on terminal resize
func (s *StatusLine) SetWidth(width int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
}

// View renders the health line, e.g. "✓ 2/3 providers | ⚠ openai: auth error"
func (s *StatusLine) View() string {
	s.mu.Lock()
	snapshot := s.snapshot
	width := s.width
	s.mu.Unlock()

	if len(snapshot) == 0 {
		return styleBar.Render(styleMuted.Render("no providers checked"))
	}

	connected := 0
	var errored []providers.StatusRecord
	for _, record := range snapshot {
		switch {
		case record.Status == providers.StatusConnected:
			connected++
		case record.Status.IsError():
			errored = append(errored, record)
		}
	}

	var components []string

	summary := fmt.Sprintf("%s %d/%d providers", providers.StatusConnected.Icon(), connected, len(snapshot))
	if connected > 0 {
		components = append(components, styleConnected.Render(summary))
	} else {
		components = append(components, styleMuted.Render(summary))
	}

	for _, record := range errored {
		text := fmt.Sprintf("%s %s: %s", record.Status.Icon(), record.ProviderName, record.Status.Description())
		components = append(components, styleError.Render(text))
	}

	line := strings.Join(components, styleSeparator.Render(" | "))

	bar := styleBar
	if width > 0 {
		bar = bar.Width(width)
	}
	return bar.Render(line)
}
