package questionbank

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/zirakhr/zirak/internal/skills"
)

// authored is a hand-written question as it appears in a bank file.
type authored struct {
	Skill       string       `yaml:"skill"`
	Difficulty  skills.Level `yaml:"difficulty"`
	Text        string       `yaml:"text"`
	Options     []string     `yaml:"options"`
	Answer      int          `yaml:"answer"`
	Explanation string       `yaml:"explanation"`
}

type bankFile struct {
	Questions []authored `yaml:"questions"`
}

// Bank holds authored questions keyed by skill ID and difficulty.
type Bank struct {
	questions map[string]map[skills.Level][]authored
}

// LoadBankFile reads a YAML question bank from path.
func LoadBankFile(path string) (*Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open question bank: %w", err)
	}
	defer f.Close()
	return LoadBank(f)
}

// LoadBank decodes a YAML question bank. Every entry is checked with the
// structural validator before it is accepted.
func LoadBank(r io.Reader) (*Bank, error) {
	var f bankFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}

	b := &Bank{questions: make(map[string]map[skills.Level][]authored)}
	sv := &StructuralValidator{}
	for i, a := range f.Questions {
		key := strings.ToLower(strings.TrimSpace(a.Skill))
		if key == "" {
			return nil, fmt.Errorf("question %d: skill is empty", i)
		}
		q := a.toQuestion(fmt.Sprintf("bank-%d", i))
		if verr := sv.Validate(&q, Input{}); verr != nil {
			return nil, fmt.Errorf("question %d (%s): %w", i, key, verr)
		}
		if b.questions[key] == nil {
			b.questions[key] = make(map[skills.Level][]authored)
		}
		b.questions[key][a.Difficulty] = append(b.questions[key][a.Difficulty], a)
	}
	return b, nil
}

// Size returns the number of authored questions for a skill and difficulty.
func (b *Bank) Size(skillID string, difficulty skills.Level) int {
	return len(b.questions[strings.ToLower(skillID)][difficulty])
}

func (a authored) toQuestion(id string) Question {
	opts := make([]Option, len(a.Options))
	for n, text := range a.Options {
		opts[n] = Option{ID: optionID(id, n), Text: text}
	}
	q := Question{
		ID:          id,
		Text:        a.Text,
		Options:     opts,
		Difficulty:  a.Difficulty,
		Points:      a.Difficulty.Points(),
		Explanation: a.Explanation,
	}
	if a.Answer >= 0 && a.Answer < len(opts) {
		q.CorrectOptionID = opts[a.Answer].ID
	}
	return q
}

// BankGenerator draws authored questions at random for each difficulty
// bucket and tops up any shortfall with placeholders.
type BankGenerator struct {
	bank *Bank
	fill *PlaceholderGenerator

	mu  sync.Mutex
	rng *rand.Rand
}

// NewBankGenerator returns a generator over bank. A nil src uses a randomly
// seeded source.
func NewBankGenerator(bank *Bank, src rand.Source) *BankGenerator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	rng := rand.New(src)
	return &BankGenerator{
		bank: bank,
		fill: NewPlaceholderGenerator(rand.NewPCG(rng.Uint64(), rng.Uint64())),
		rng:  rng,
	}
}

func (g *BankGenerator) Generate(_ context.Context, input Input) ([]Question, error) {
	pool := g.bank.questions[strings.ToLower(input.Skill.ID)]

	out := make([]Question, 0, input.Counts.Total())
	for _, level := range skills.AllLevels() {
		want := input.Counts.Of(level)
		picked := g.pick(pool[level], want)
		for _, a := range picked {
			out = append(out, a.toQuestion(bucketQuestionID(level, len(out))))
		}
		for range want - len(picked) {
			out = append(out, g.fill.question(input.Skill.Name, level, len(out)))
		}
	}
	return out, nil
}

// pick returns up to n distinct entries of pool in random order.
func (g *BankGenerator) pick(pool []authored, n int) []authored {
	if n <= 0 || len(pool) == 0 {
		return nil
	}
	g.mu.Lock()
	perm := g.rng.Perm(len(pool))
	g.mu.Unlock()

	if n > len(pool) {
		n = len(pool)
	}
	out := make([]authored, n)
	for i := range n {
		out[i] = pool[perm[i]]
	}
	return out
}
