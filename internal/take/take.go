// Package take runs a quiz assessment interactively in the terminal.
package take

import (
	"context"
	"errors"
	"fmt"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"

	"github.com/zirakhr/zirak/internal/assessment"
	"github.com/zirakhr/zirak/internal/ui/components"
)

// Service is the part of the assessment service the quiz drives.
type Service interface {
	Start(ctx context.Context, p assessment.Principal, id string) (*assessment.Assessment, error)
	Submit(ctx context.Context, p assessment.Principal, id string, sub assessment.Submission) (*assessment.Assessment, assessment.Result, error)
	Expire(ctx context.Context, p assessment.Principal, id string) (*assessment.Assessment, error)
}

type phase int

const (
	phaseLoading phase = iota
	phaseAnswering
	phaseSubmitting
	phaseDone
	phaseExpired
	phaseFailed
)

type (
	startedMsg   struct{ a *assessment.Assessment }
	tickMsg      time.Time
	submittedMsg struct {
		a   *assessment.Assessment
		res assessment.Result
	}
	expiredMsg struct{ a *assessment.Assessment }
	errMsg     struct{ err error }
)

// Outcome is how the quiz ended. Assessment is nil when the candidate quit
// before anything was recorded.
type Outcome struct {
	Assessment *assessment.Assessment
	Result     assessment.Result
	Completed  bool
	Expired    bool
	Err        error
}

// Model is the Bubble Tea model of one quiz attempt.
type Model struct {
	ctx context.Context
	svc Service
	p   assessment.Principal
	a   *assessment.Assessment
	now func() time.Time

	phase   phase
	current int
	answers map[string]int
	choice  components.MultiChoice

	remaining time.Duration
	result    assessment.Result
	err       error

	width, height int
	keys          keyMap
}

// Option configures a Model.
type Option func(*Model)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// New prepares a quiz for a. Only open quiz assessments can be taken.
func New(ctx context.Context, svc Service, p assessment.Principal, a *assessment.Assessment, opts ...Option) (Model, error) {
	if a.Type != assessment.TypeQuiz {
		return Model{}, fmt.Errorf("%w: %s assessments cannot be taken in the terminal", assessment.ErrInvalidInput, a.Type)
	}
	if !a.Status.Open() {
		return Model{}, &assessment.StateError{Op: "take", From: a.Status}
	}
	if len(a.Questions) == 0 {
		return Model{}, fmt.Errorf("%w: assessment has no questions", assessment.ErrInvalidInput)
	}
	m := Model{
		ctx:     ctx,
		svc:     svc,
		p:       p,
		a:       a,
		now:     time.Now,
		answers: make(map[string]int, len(a.Questions)),
		keys:    defaultKeys(),
	}
	for _, o := range opts {
		o(&m)
	}
	return m, nil
}

// Run takes the quiz until it is submitted, expires, or the candidate
// quits. Quitting leaves the assessment in progress.
func Run(ctx context.Context, svc Service, p assessment.Principal, a *assessment.Assessment, opts ...Option) (Outcome, error) {
	m, err := New(ctx, svc, p, a, opts...)
	if err != nil {
		return Outcome{}, err
	}
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return Outcome{}, fmt.Errorf("run quiz: %w", err)
	}
	return final.(Model).Outcome(), nil
}

// Outcome reports the state the quiz ended in.
func (m Model) Outcome() Outcome {
	o := Outcome{Err: m.err}
	switch m.phase {
	case phaseDone:
		o.Assessment, o.Result, o.Completed = m.a, m.result, true
	case phaseExpired:
		o.Assessment, o.Expired = m.a, true
	case phaseAnswering, phaseSubmitting:
		o.Assessment = m.a
	}
	return o
}

func (m Model) Init() tea.Cmd {
	if m.a.Status == assessment.StatusInProgress {
		a := m.a
		return func() tea.Msg { return startedMsg{a: a} }
	}
	return m.startCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case components.ChoiceMadeMsg:
		return m.answer(msg.Index)

	case startedMsg:
		m.a = msg.a
		m.phase = phaseAnswering
		m.remaining = m.timeLeft()
		m.loadQuestion(0)
		log.Ctx(m.ctx).Debug().Str("assessment_id", m.a.ID).Msg("quiz started")
		if _, ok := m.a.Deadline(); !ok {
			return m, nil
		}
		return m, tick()

	case tickMsg:
		if m.phase != phaseAnswering {
			return m, nil
		}
		if _, ok := m.a.Deadline(); !ok {
			return m, nil
		}
		m.remaining = m.timeLeft()
		if m.remaining <= 0 {
			m.phase = phaseSubmitting
			return m, m.expireCmd()
		}
		return m, tick()

	case submittedMsg:
		m.a, m.result = msg.a, msg.res
		m.phase = phaseDone
		return m, nil

	case expiredMsg:
		if msg.a != nil {
			m.a = msg.a
		}
		m.phase = phaseExpired
		return m, nil

	case errMsg:
		var se *assessment.StateError
		if errors.As(msg.err, &se) && se.From == assessment.StatusExpired {
			m.phase = phaseExpired
			return m, nil
		}
		m.err = msg.err
		m.phase = phaseFailed
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	switch m.phase {
	case phaseDone, phaseExpired, phaseFailed:
		if key.Matches(msg, m.keys.Close) {
			return m, tea.Quit
		}
		return m, nil
	case phaseAnswering:
	default:
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Prev):
		m.loadQuestion(m.current - 1)
		return m, nil
	case key.Matches(msg, m.keys.Next):
		m.loadQuestion(m.current + 1)
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		m.phase = phaseSubmitting
		return m, m.submitCmd()
	}

	var cmd tea.Cmd
	m.choice, cmd = m.choice.Update(msg)
	return m, cmd
}

// answer records the chosen option and moves on to the next unanswered
// question. The quiz is submitted once every question has an answer.
func (m Model) answer(idx int) (tea.Model, tea.Cmd) {
	if m.phase != phaseAnswering {
		return m, nil
	}
	m.answers[m.a.Questions[m.current].ID] = idx

	next := m.nextUnanswered()
	if next < 0 {
		m.phase = phaseSubmitting
		return m, m.submitCmd()
	}
	m.loadQuestion(next)
	return m, nil
}

func (m Model) nextUnanswered() int {
	n := len(m.a.Questions)
	for off := 1; off <= n; off++ {
		i := (m.current + off) % n
		if _, ok := m.answers[m.a.Questions[i].ID]; !ok {
			return i
		}
	}
	return -1
}

func (m *Model) loadQuestion(i int) {
	if i < 0 || i >= len(m.a.Questions) {
		return
	}
	m.current = i
	q := m.a.Questions[i]

	opts := make([]string, len(q.Options))
	for j, o := range q.Options {
		opts[j] = o.Text
	}
	chosen := -1
	if c, ok := m.answers[q.ID]; ok {
		chosen = c
	}
	m.choice = components.NewMultiChoice(q.Text, opts, chosen)
}

func (m Model) timeLeft() time.Duration {
	d, ok := m.a.Deadline()
	if !ok {
		return 0
	}
	return max(d.Sub(m.now()), 0)
}

// Submission collects the answers given so far in question order.
func (m Model) Submission() assessment.Submission {
	var sub assessment.Submission
	for _, q := range m.a.Questions {
		idx, ok := m.answers[q.ID]
		if !ok || idx < 0 || idx >= len(q.Options) {
			continue
		}
		sub.Answers = append(sub.Answers, assessment.Answer{
			QuestionID:       q.ID,
			SelectedOptionID: q.Options[idx].ID,
		})
	}
	if m.a.StartedAt != nil {
		sub.TimeSpentSecs = max(int(m.now().Sub(*m.a.StartedAt).Seconds()), 0)
	}
	return sub
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) startCmd() tea.Cmd {
	ctx, svc, p, id := m.ctx, m.svc, m.p, m.a.ID
	return func() tea.Msg {
		a, err := svc.Start(ctx, p, id)
		if err != nil {
			return errMsg{err: err}
		}
		return startedMsg{a: a}
	}
}

func (m Model) submitCmd() tea.Cmd {
	ctx, svc, p, id, sub := m.ctx, m.svc, m.p, m.a.ID, m.Submission()
	return func() tea.Msg {
		a, res, err := svc.Submit(ctx, p, id, sub)
		if err != nil {
			return errMsg{err: err}
		}
		return submittedMsg{a: a, res: res}
	}
}

func (m Model) expireCmd() tea.Cmd {
	ctx, svc, p, id := m.ctx, m.svc, m.p, m.a.ID
	return func() tea.Msg {
		a, err := svc.Expire(ctx, p, id)
		if err != nil && !errors.Is(err, assessment.ErrInvalidState) {
			return errMsg{err: err}
		}
		return expiredMsg{a: a}
	}
}
