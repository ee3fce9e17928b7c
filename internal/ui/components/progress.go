package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/zirakhr/zirak/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label   string
	Percent float64
	Suffix  string
	Width   int
	Fill    lipgloss.Style
}

// NewProgressBar creates a progress bar. An empty suffix shows the
// percentage.
func NewProgressBar(label string, percent float64, width int) ProgressBar {
	return ProgressBar{
		Label:   label,
		Percent: percent,
		Width:   width,
		Fill:    lipgloss.NewStyle().Background(theme.Secondary),
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string
	if p.Label != "" {
		result += theme.Body.Render(p.Label) + "  "
	}

	suffix := p.Suffix
	if suffix == "" {
		suffix = fmt.Sprintf("%d%%", int(clampPercent(p.Percent)*100))
	}
	suffix = "  " + suffix

	barWidth := p.Width - lipgloss.Width(result) - lipgloss.Width(suffix)
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * clampPercent(p.Percent))
	empty := barWidth - filled

	result += p.Fill.Render(strings.Repeat(" ", filled))
	result += lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", empty))
	result += theme.Subtitle.Render(suffix)
	return result
}

func clampPercent(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
