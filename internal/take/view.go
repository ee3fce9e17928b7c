package take

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/zirakhr/zirak/internal/ui/components"
	"github.com/zirakhr/zirak/internal/ui/layout"
	"github.com/zirakhr/zirak/internal/ui/theme"
)

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	title := fmt.Sprintf("%s · %s", m.a.SkillName, m.a.Level)
	header := layout.RenderHeader(title, m.status(), m.width)
	footer := layout.RenderFooter(m.hints(), m.width)
	v.SetContent(layout.RenderFrame(header, m.content(), footer, m.width, m.height))
	return v
}

func (m Model) status() string {
	if m.phase != phaseAnswering {
		return ""
	}
	if _, ok := m.a.Deadline(); !ok {
		return "untimed"
	}
	return "⏱ " + formatRemaining(m.remaining)
}

func (m Model) hints() []layout.KeyHint {
	if m.phase == phaseAnswering {
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Choose"},
			{Key: "Enter", Description: "Answer"},
			{Key: "←→", Description: "Question"},
			{Key: "S", Description: "Submit"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{{Key: "Enter", Description: "Close"}}
}

func (m Model) content() string {
	switch m.phase {
	case phaseLoading:
		return theme.Hint.Render("Starting assessment...")
	case phaseSubmitting:
		return theme.Hint.Render("Submitting answers...")
	case phaseAnswering:
		return m.questionView()
	case phaseDone:
		return m.resultView()
	case phaseExpired:
		return theme.Incorrect.Render("Time is up.") + "\n\n" +
			theme.Body.Render("This assessment has expired and was not scored.")
	case phaseFailed:
		return theme.Incorrect.Render("Something went wrong") + "\n\n" +
			theme.Body.Render(m.err.Error())
	}
	return ""
}

func (m Model) questionView() string {
	n := len(m.a.Questions)
	bar := components.NewProgressBar(
		fmt.Sprintf("Question %d/%d", m.current+1, n),
		float64(len(m.answers))/float64(n),
		min(m.width-8, 60),
	)
	bar.Suffix = fmt.Sprintf("%d answered", len(m.answers))

	q := m.a.Questions[m.current]
	meta := theme.Subtitle.Render(fmt.Sprintf("%s · %d pt", q.Difficulty, q.Points))
	return bar.View() + "\n\n" + meta + "\n\n" + m.choice.View()
}

func (m Model) resultView() string {
	var b strings.Builder

	verdict := theme.Incorrect.Render("Not passed")
	if m.result.Passed {
		verdict = theme.Correct.Render("Passed")
	}
	fmt.Fprintf(&b, "%s  %s\n\n", theme.Title.Render(fmt.Sprintf("Score %d/100", m.result.Score)), verdict)
	if m.result.Total > 0 {
		b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%d of %d correct · passing score %d", m.result.Correct, m.result.Total, m.a.PassingScore)))
		b.WriteString("\n\n")
	}
	b.WriteString(theme.Body.Render(m.result.Feedback))
	b.WriteString("\n\n")
	b.WriteString(m.review())
	return b.String()
}

// review lists every question with the chosen and correct options.
func (m Model) review() string {
	var b strings.Builder
	for i, q := range m.a.Questions {
		chosen := -1
		if c, ok := m.answers[q.ID]; ok {
			chosen = c
		}
		correct := q.OptionIndex(q.CorrectOptionID)

		mark := theme.Incorrect.Render("✗")
		if chosen >= 0 && chosen == correct {
			mark = theme.Correct.Render("✓")
		}
		answer := "-"
		if chosen >= 0 {
			answer = components.Label(chosen)
		}
		fmt.Fprintf(&b, "%s %2d. %s  %s\n", mark, i+1, truncate(q.Text, max(m.width-30, 20)),
			theme.Subtitle.Render(fmt.Sprintf("you: %s  correct: %s", answer, components.Label(correct))))
	}
	return b.String()
}

func formatRemaining(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d/time.Minute), int(d%time.Minute/time.Second))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

var _ tea.Model = Model{}
