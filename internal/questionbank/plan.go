package questionbank

import (
	"math"

	"github.com/zirakhr/zirak/internal/skills"
)

// QuestionCount is the fixed size of every quiz.
const QuestionCount = 10

// Counts is the number of questions per difficulty, indexed in
// skills.AllLevels order.
type Counts [4]int

// Of returns the count for a difficulty.
func (c Counts) Of(l skills.Level) int {
	if r := l.Rank(); r >= 0 {
		return c[r]
	}
	return 0
}

// Total returns the sum over all difficulties.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Plan returns the per-difficulty question counts for a target level.
// Each bucket gets round(share * QuestionCount); any rounding shortfall or
// excess goes to the highest non-empty bucket so the total is always
// QuestionCount.
func Plan(level skills.Level) Counts {
	p := skills.ProfileFor(level)

	var c Counts
	last := -1
	for i, share := range p.Distribution {
		c[i] = int(math.Round(share * QuestionCount))
		if share > 0 {
			last = i
		}
	}
	if last >= 0 {
		c[last] += QuestionCount - c.Total()
	}
	return c
}

// CountQuestions tallies a question set by difficulty.
func CountQuestions(qs []Question) Counts {
	var c Counts
	for _, q := range qs {
		if r := q.Difficulty.Rank(); r >= 0 {
			c[r]++
		}
	}
	return c
}
