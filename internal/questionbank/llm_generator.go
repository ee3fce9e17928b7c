package questionbank

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/zirakhr/zirak/internal/llm"
	"github.com/zirakhr/zirak/internal/skills"
)

// LLMConfig controls the behavior of the LLMGenerator.
type LLMConfig struct {
	// Validators run on every question before the set is accepted.
	Validators []Validator

	MaxTokens   int
	Temperature float64
}

// DefaultLLMConfig returns the standard validator chain and defaults.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Validators:  DefaultValidators(),
		MaxTokens:   4096,
		Temperature: 0.7,
	}
}

// LLMGenerator implements Generator using an LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   LLMConfig
}

// NewLLMGenerator creates an LLMGenerator with the given provider and config.
func NewLLMGenerator(provider llm.Provider, cfg LLMConfig) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

// questionSetOutput is the raw LLM response before validation.
type questionSetOutput struct {
	Questions []struct {
		Question           string   `json:"question"`
		Options            []string `json:"options"`
		CorrectOptionIndex int      `json:"correctOptionIndex"`
		Difficulty         string   `json:"difficulty"`
		Explanation        string   `json:"explanation"`
	} `json:"questions"`
}

// Generate asks the provider for a full question set and validates it
// against the planned difficulty mix.
func (g *LLMGenerator) Generate(ctx context.Context, input Input) ([]Question, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestionGen)

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(input)},
		},
		Schema:      QuestionSetSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw questionSetOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	qs := make([]Question, 0, len(raw.Questions))
	for i, r := range raw.Questions {
		id := fmt.Sprintf("q-%d", i)
		difficulty := skills.Level(r.Difficulty)

		opts := make([]Option, len(r.Options))
		for j, text := range r.Options {
			opts[j] = Option{ID: optionID(id, j), Text: text}
		}

		q := Question{
			ID:          id,
			Text:        r.Question,
			Options:     opts,
			Difficulty:  difficulty,
			Points:      difficulty.Points(),
			Explanation: r.Explanation,
		}
		if r.CorrectOptionIndex >= 0 && r.CorrectOptionIndex < len(opts) {
			q.CorrectOptionID = opts[r.CorrectOptionIndex].ID
		}
		qs = append(qs, q)
	}

	sort.SliceStable(qs, func(i, j int) bool {
		return qs[i].Difficulty.Rank() < qs[j].Difficulty.Rank()
	})

	if err := ValidateSet(qs, input, g.config.Validators); err != nil {
		return nil, err
	}
	return qs, nil
}
