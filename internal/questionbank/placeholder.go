package questionbank

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/zirakhr/zirak/internal/skills"
)

// placeholderOptions is the number of choices on a synthetic question.
const placeholderOptions = 4

// PlaceholderGenerator builds synthetic questions that follow the planned
// difficulty mix. It is the fallback when no authored or AI questions are
// available, and never fails.
type PlaceholderGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPlaceholderGenerator returns a generator drawing correct options from
// src. A nil src uses a randomly seeded source.
func NewPlaceholderGenerator(src rand.Source) *PlaceholderGenerator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &PlaceholderGenerator{rng: rand.New(src)}
}

// Generate returns input.Counts.Total() placeholder questions ordered by
// ascending difficulty. Question indexes run across the whole set.
func (g *PlaceholderGenerator) Generate(_ context.Context, input Input) ([]Question, error) {
	out := make([]Question, 0, input.Counts.Total())
	for _, level := range skills.AllLevels() {
		for range input.Counts.Of(level) {
			out = append(out, g.question(input.Skill.Name, level, len(out)))
		}
	}
	return out, nil
}

func (g *PlaceholderGenerator) question(skillName string, difficulty skills.Level, index int) Question {
	id := bucketQuestionID(difficulty, index)

	opts := make([]Option, placeholderOptions)
	for n := range opts {
		opts[n] = Option{
			ID:   optionID(id, n),
			Text: fmt.Sprintf("Option %d for %s %s question", n+1, skillName, difficulty),
		}
	}

	return Question{
		ID:              id,
		Text:            fmt.Sprintf("Sample %s level question about %s (%d)", difficulty, skillName, index+1),
		Options:         opts,
		CorrectOptionID: opts[g.intN(len(opts))].ID,
		Difficulty:      difficulty,
		Points:          difficulty.Points(),
	}
}

func (g *PlaceholderGenerator) intN(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.IntN(n)
}
