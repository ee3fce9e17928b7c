package skills

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a skill is not in the catalog.
var ErrNotFound = errors.New("skill not found")

//go:embed seed.yaml
var seedYAML []byte

// Catalog is an indexed, read-only set of skills.
type Catalog struct {
	skills     []Skill
	byID       map[string]*Skill
	byName     map[string]*Skill
	byCategory map[Category][]Skill
}

type catalogFile struct {
	Skills []Skill `yaml:"skills"`
}

// DefaultCatalog returns the built-in catalog. It panics if the embedded
// seed is invalid.
func DefaultCatalog() *Catalog {
	c, err := LoadCatalog(bytes.NewReader(seedYAML))
	if err != nil {
		panic(fmt.Sprintf("built-in skill catalog: %v", err))
	}
	return c
}

// LoadCatalogFile reads a YAML catalog from path.
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return LoadCatalog(f)
}

// LoadCatalog decodes and validates a YAML catalog.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var f catalogFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := validateSkills(f.Skills); err != nil {
		return nil, err
	}
	return buildCatalog(f.Skills), nil
}

func buildCatalog(skills []Skill) *Catalog {
	c := &Catalog{
		skills:     skills,
		byID:       make(map[string]*Skill, len(skills)),
		byName:     make(map[string]*Skill, len(skills)),
		byCategory: make(map[Category][]Skill),
	}
	for i := range c.skills {
		s := &c.skills[i]
		c.byID[s.ID] = s
		c.byName[normalizeName(s.Name)] = s
		c.byCategory[s.Category] = append(c.byCategory[s.Category], *s)
	}
	return c
}

// Get returns the skill with the given ID.
func (c *Catalog) Get(id string) (Skill, error) {
	if s, ok := c.byID[id]; ok {
		return *s, nil
	}
	return Skill{}, fmt.Errorf("%w: %q", ErrNotFound, id)
}

// Find resolves a skill by ID first, then by case-insensitive name.
func (c *Catalog) Find(ref string) (Skill, error) {
	if s, ok := c.byID[ref]; ok {
		return *s, nil
	}
	if s, ok := c.byName[normalizeName(ref)]; ok {
		return *s, nil
	}
	return Skill{}, fmt.Errorf("%w: %q", ErrNotFound, ref)
}

// All returns every skill sorted by category display order, then name.
func (c *Catalog) All() []Skill {
	order := make(map[Category]int)
	for i, cat := range AllCategories() {
		order[cat] = i
	}
	out := make([]Skill, len(c.skills))
	copy(out, c.skills)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return order[out[i].Category] < order[out[j].Category]
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ByCategory returns the skills in a category, in catalog order.
func (c *Catalog) ByCategory(cat Category) []Skill {
	return c.byCategory[cat]
}

// Len returns the number of skills in the catalog.
func (c *Catalog) Len() int {
	return len(c.skills)
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
