package assessment

import "time"

// Start moves a pending assessment to in_progress and starts its timer.
func (a *Assessment) Start(now time.Time) error {
	if a.Status != StatusPending {
		return &StateError{Op: "start", From: a.Status}
	}
	a.Status = StatusInProgress
	a.StartedAt = &now
	a.UpdatedAt = now
	return nil
}

// Complete grades sub, stores the score, pass flag and feedback, and moves
// the assessment to completed. It is allowed from pending or in_progress
// only, so a second call fails and leaves the first score in place.
func (a *Assessment) Complete(sub Submission, now time.Time) (Result, error) {
	if !a.Status.Open() {
		return Result{}, &StateError{Op: "complete", From: a.Status}
	}

	var res Result
	if a.Type == TypeQuiz {
		qs := ScoreQuiz(a.Questions, sub.Answers)
		res.Score = qs.Score
		res.Correct = qs.Correct
		res.Total = len(a.Questions)
	} else {
		res.Score = ScoreExternal(sub.Scores)
	}
	res.Passed = Passed(res.Score, a.PassingScore)
	res.Feedback = Feedback(a.SkillName, res.Score, res.Passed)

	spent := sub.TimeSpentSecs
	if spent <= 0 && a.StartedAt != nil {
		spent = int(now.Sub(*a.StartedAt).Seconds())
	}

	a.Status = StatusCompleted
	a.Score = &res.Score
	a.Passed = &res.Passed
	a.Feedback = res.Feedback
	a.TimeSpentSecs = max(spent, 0)
	a.CompletedAt = &now
	a.UpdatedAt = now
	return res, nil
}

// Expire marks an open assessment as expired. Whether the time limit has
// elapsed is decided by the caller.
func (a *Assessment) Expire(now time.Time) error {
	if !a.Status.Open() {
		return &StateError{Op: "expire", From: a.Status}
	}
	a.Status = StatusExpired
	a.UpdatedAt = now
	return nil
}

// Overdue reports whether an in-progress assessment is past its deadline.
func (a *Assessment) Overdue(now time.Time) bool {
	if a.Status != StatusInProgress {
		return false
	}
	d, ok := a.Deadline()
	return ok && now.After(d)
}

// Result reconstructs the outcome of a completed assessment.
func (a *Assessment) Result() (Result, bool) {
	if a.Status != StatusCompleted || a.Score == nil || a.Passed == nil {
		return Result{}, false
	}
	res := Result{Score: *a.Score, Passed: *a.Passed, Feedback: a.Feedback}
	if a.Type == TypeQuiz {
		res.Total = len(a.Questions)
	}
	return res, true
}
