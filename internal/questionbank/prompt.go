package questionbank

import (
	"fmt"
	"strings"

	"github.com/zirakhr/zirak/internal/skills"
)

const systemPrompt = `You write skill-verification quizzes for software engineers applying to jobs.

Rules:
- Every question is multiple choice with exactly 4 options and exactly one correct option.
- Questions must be answerable without running code and must not depend on a specific library version unless the skill is about that version.
- Distractors should be plausible mistakes a practitioner could make, not obviously wrong filler.
- Produce exactly the number of questions requested for each difficulty and label each question with its difficulty.
- Beginner questions test vocabulary and basic usage; expert questions test internals, trade-offs and failure modes.
- Do not repeat a question or ask the same thing twice with different wording.`

// buildUserMessage describes the skill, level and the per-difficulty counts.
func buildUserMessage(input Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Skill: %s\n", input.Skill.Name)
	if input.Skill.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", input.Skill.Description)
	}
	if len(input.Skill.Keywords) > 0 {
		fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(input.Skill.Keywords, ", "))
	}
	fmt.Fprintf(&b, "Target level: %s\n", input.Level)
	fmt.Fprintf(&b, "Total questions: %d\n", input.Counts.Total())

	b.WriteString("\nQuestions per difficulty:\n")
	for _, l := range skills.AllLevels() {
		if n := input.Counts.Of(l); n > 0 {
			fmt.Fprintf(&b, "- %s: %d\n", l, n)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
