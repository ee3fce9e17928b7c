package take

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zirakhr/zirak/internal/assessment"
	"github.com/zirakhr/zirak/internal/questionbank"
	"github.com/zirakhr/zirak/internal/skills"
	"github.com/zirakhr/zirak/internal/ui/components"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeService struct {
	a         *assessment.Assessment
	now       time.Time
	submitted *assessment.Submission
	expired   bool
	submitErr error
}

func (f *fakeService) Start(_ context.Context, _ assessment.Principal, _ string) (*assessment.Assessment, error) {
	if err := f.a.Start(f.now); err != nil {
		return nil, err
	}
	cp := *f.a
	return &cp, nil
}

func (f *fakeService) Submit(_ context.Context, _ assessment.Principal, _ string, sub assessment.Submission) (*assessment.Assessment, assessment.Result, error) {
	if f.submitErr != nil {
		return nil, assessment.Result{}, f.submitErr
	}
	f.submitted = &sub
	res, err := f.a.Complete(sub, f.now)
	if err != nil {
		return nil, assessment.Result{}, err
	}
	cp := *f.a
	return &cp, res, nil
}

func (f *fakeService) Expire(_ context.Context, _ assessment.Principal, _ string) (*assessment.Assessment, error) {
	f.expired = true
	if err := f.a.Expire(f.now); err != nil {
		return nil, err
	}
	cp := *f.a
	return &cp, nil
}

func quiz() *assessment.Assessment {
	q := func(id string) questionbank.Question {
		return questionbank.Question{
			ID:              id,
			Text:            "question " + id,
			Options:         []questionbank.Option{{ID: id + "-a", Text: "a"}, {ID: id + "-b", Text: "b"}, {ID: id + "-c", Text: "c"}},
			CorrectOptionID: id + "-b",
			Difficulty:      skills.Beginner,
			Points:          1,
		}
	}
	return &assessment.Assessment{
		ID:            "as-1",
		SkillID:       "go",
		SkillName:     "Go",
		UserID:        "alice",
		Type:          assessment.TypeQuiz,
		Level:         skills.Beginner,
		Questions:     []questionbank.Question{q("q1"), q("q2")},
		Status:        assessment.StatusPending,
		PassingScore:  70,
		TimeLimitMins: 10,
		CreatedAt:     t0,
	}
}

func press(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func text(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// step feeds msg to m and runs the returned command once, feeding its
// message back unless it is a tick.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil {
		return m
	}
	out := cmd()
	switch out.(type) {
	case nil, tickMsg, tea.QuitMsg:
		return m
	}
	return step(t, m, out)
}

func newModel(t *testing.T, svc *fakeService, clock *time.Time) Model {
	t.Helper()
	m, err := New(context.Background(), svc, assessment.Principal{UserID: "alice"}, svc.a,
		WithClock(func() time.Time { return *clock }))
	require.NoError(t, err)
	return m
}

func started(t *testing.T, m Model) Model {
	t.Helper()
	msg := m.Init()()
	next, cmd := m.Update(msg)
	require.NotNil(t, cmd, "timed quiz should schedule a tick")
	return next.(Model)
}

func TestNewRejectsNonQuiz(t *testing.T) {
	a := quiz()
	a.Type = assessment.TypeProject
	_, err := New(context.Background(), &fakeService{a: a}, assessment.Principal{}, a)
	assert.ErrorIs(t, err, assessment.ErrInvalidInput)

	a = quiz()
	a.Status = assessment.StatusCompleted
	_, err = New(context.Background(), &fakeService{a: a}, assessment.Principal{}, a)
	assert.ErrorIs(t, err, assessment.ErrInvalidState)

	a = quiz()
	a.Questions = nil
	_, err = New(context.Background(), &fakeService{a: a}, assessment.Principal{}, a)
	assert.ErrorIs(t, err, assessment.ErrInvalidInput)
}

func TestAnswerAllAndSubmit(t *testing.T) {
	clock := t0
	svc := &fakeService{a: quiz(), now: t0}
	m := started(t, newModel(t, svc, &clock))

	assert.Equal(t, phaseAnswering, m.phase)
	assert.Equal(t, 10*time.Minute, m.remaining)
	assert.Equal(t, assessment.StatusInProgress, svc.a.Status)

	clock = t0.Add(90 * time.Second)
	svc.now = clock

	// q1: pick b (correct)
	m = step(t, m, press(tea.KeyDown))
	m = step(t, m, press(tea.KeyEnter))
	assert.Equal(t, 1, m.current)
	// q2: pick a (wrong), which submits
	m = step(t, m, press(tea.KeyEnter))

	require.Equal(t, phaseDone, m.phase)
	require.NotNil(t, svc.submitted)
	assert.Equal(t, []assessment.Answer{
		{QuestionID: "q1", SelectedOptionID: "q1-b"},
		{QuestionID: "q2", SelectedOptionID: "q2-a"},
	}, svc.submitted.Answers)
	assert.Equal(t, 90, svc.submitted.TimeSpentSecs)

	out := m.Outcome()
	assert.True(t, out.Completed)
	assert.Equal(t, 50, out.Result.Score)
	assert.False(t, out.Result.Passed)
	assert.Equal(t, 1, out.Result.Correct)
	assert.Equal(t, assessment.StatusCompleted, out.Assessment.Status)

	_, cmd := m.Update(press(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestNavigateAndSubmitEarly(t *testing.T) {
	clock := t0
	svc := &fakeService{a: quiz(), now: t0}
	m := started(t, newModel(t, svc, &clock))

	m = step(t, m, press(tea.KeyRight))
	assert.Equal(t, 1, m.current)
	m = step(t, m, press(tea.KeyDown))
	m = step(t, m, press(tea.KeyEnter))
	// wraps to the unanswered first question
	assert.Equal(t, 0, m.current)
	assert.Equal(t, phaseAnswering, m.phase)

	m = step(t, m, text('S'))
	require.Equal(t, phaseDone, m.phase)
	assert.Equal(t, []assessment.Answer{{QuestionID: "q2", SelectedOptionID: "q2-b"}}, svc.submitted.Answers)
	assert.Equal(t, 50, m.Outcome().Result.Score)
}

func TestPreviousAnswerIsRestored(t *testing.T) {
	clock := t0
	svc := &fakeService{a: quiz(), now: t0}
	m := started(t, newModel(t, svc, &clock))

	m = step(t, m, press(tea.KeyDown))
	m = step(t, m, press(tea.KeyDown))
	m = step(t, m, press(tea.KeyEnter))
	m = step(t, m, press(tea.KeyLeft))

	assert.Equal(t, 0, m.current)
	assert.Equal(t, 2, m.choice.ChosenIndex)
	assert.Equal(t, 2, m.choice.Selected)
}

func TestCountdownExpires(t *testing.T) {
	clock := t0
	svc := &fakeService{a: quiz(), now: t0}
	m := started(t, newModel(t, svc, &clock))

	clock = t0.Add(4 * time.Minute)
	next, cmd := m.Update(tickMsg(clock))
	m = next.(Model)
	assert.Equal(t, 6*time.Minute, m.remaining)
	assert.NotNil(t, cmd)
	assert.False(t, svc.expired)

	clock = t0.Add(10*time.Minute + time.Second)
	m = step(t, m, tickMsg(clock))

	assert.True(t, svc.expired)
	assert.Equal(t, phaseExpired, m.phase)
	out := m.Outcome()
	assert.True(t, out.Expired)
	assert.Equal(t, assessment.StatusExpired, out.Assessment.Status)
}

func TestLateSubmitShowsExpired(t *testing.T) {
	clock := t0
	svc := &fakeService{
		a:         quiz(),
		now:       t0,
		submitErr: &assessment.StateError{Op: "complete", From: assessment.StatusExpired},
	}
	m := started(t, newModel(t, svc, &clock))

	m = step(t, m, text('S'))
	assert.Equal(t, phaseExpired, m.phase)
	assert.NoError(t, m.Outcome().Err)
}

func TestSubmitFailure(t *testing.T) {
	clock := t0
	svc := &fakeService{a: quiz(), now: t0, submitErr: errors.New("db down")}
	m := started(t, newModel(t, svc, &clock))

	m = step(t, m, text('S'))
	assert.Equal(t, phaseFailed, m.phase)
	assert.EqualError(t, m.Outcome().Err, "db down")
}

func TestResumeInProgress(t *testing.T) {
	clock := t0.Add(time.Minute)
	a := quiz()
	require.NoError(t, a.Start(t0))
	svc := &fakeService{a: a, now: clock}
	m := started(t, newModel(t, svc, &clock))

	assert.Equal(t, phaseAnswering, m.phase)
	assert.Equal(t, 9*time.Minute, m.remaining)
}

func TestUntimedQuizDoesNotTick(t *testing.T) {
	clock := t0
	a := quiz()
	a.TimeLimitMins = 0
	svc := &fakeService{a: a, now: t0}
	m := newModel(t, svc, &clock)

	next, cmd := m.Update(m.Init()())
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.Equal(t, "untimed", m.status())
}

func TestQuitLeavesAssessmentOpen(t *testing.T) {
	clock := t0
	svc := &fakeService{a: quiz(), now: t0}
	m := started(t, newModel(t, svc, &clock))

	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, assessment.StatusInProgress, svc.a.Status)
	assert.False(t, m.Outcome().Completed)
}

func TestViewRendersQuestionAndResult(t *testing.T) {
	clock := t0
	svc := &fakeService{a: quiz(), now: t0}
	m := started(t, newModel(t, svc, &clock))
	m = step(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	assert.NotPanics(t, func() { m.View() })
	assert.Contains(t, m.content(), "question q1")
	assert.Contains(t, m.status(), "10:00")

	m = step(t, m, press(tea.KeyDown))
	m = step(t, m, press(tea.KeyEnter))
	m = step(t, m, press(tea.KeyDown))
	m = step(t, m, press(tea.KeyEnter))

	assert.Contains(t, m.content(), "Score 100/100")
	assert.Contains(t, m.content(), "Passed")
	assert.Contains(t, m.content(), "you: B  correct: B")
}

func TestFormatRemaining(t *testing.T) {
	assert.Equal(t, "10:00", formatRemaining(10*time.Minute))
	assert.Equal(t, "00:59", formatRemaining(59*time.Second+400*time.Millisecond))
	assert.Equal(t, "61:05", formatRemaining(61*time.Minute+5*time.Second))
}

func TestMultiChoiceReveal(t *testing.T) {
	mc := components.NewMultiChoice("q", []string{"x", "y"}, 1).Reveal(1)
	assert.True(t, mc.IsCorrect())
	mc = components.NewMultiChoice("q", []string{"x", "y"}, -1).Reveal(1)
	assert.False(t, mc.IsCorrect())
}
