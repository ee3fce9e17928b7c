package skills

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"beginner", Beginner},
		{"Intermediate", Intermediate},
		{" ADVANCED ", Advanced},
		{"expert", Expert},
		{"guru", Intermediate},
		{"", Intermediate},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLevelPoints_NonDecreasing(t *testing.T) {
	prev := 0
	for _, l := range AllLevels() {
		p := l.Points()
		if p < 1 || p > 3 {
			t.Errorf("%s points = %d, want 1..3", l, p)
		}
		if p < prev {
			t.Errorf("%s points = %d, lower than previous %d", l, p, prev)
		}
		prev = p
	}
}

func TestMax(t *testing.T) {
	if got := Max(Beginner, Advanced); got != Advanced {
		t.Errorf("Max(beginner, advanced) = %s", got)
	}
	if got := Max(Expert, Intermediate); got != Expert {
		t.Errorf("Max(expert, intermediate) = %s", got)
	}
}

func TestProfiles(t *testing.T) {
	tests := []struct {
		level   Level
		mins    int
		passing int
	}{
		{Beginner, 10, 65},
		{Intermediate, 15, 70},
		{Advanced, 20, 75},
		{Expert, 25, 80},
	}
	for _, tt := range tests {
		p := ProfileFor(tt.level)
		if p.TimeLimitMins != tt.mins || p.PassingScore != tt.passing {
			t.Errorf("%s: got %d min / %d, want %d / %d", tt.level, p.TimeLimitMins, p.PassingScore, tt.mins, tt.passing)
		}
		sum := 0.0
		for _, d := range p.Distribution {
			sum += d
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("%s distribution sums to %f", tt.level, sum)
		}
	}
}

func TestProfileFor_UnknownFallsBack(t *testing.T) {
	p := ProfileFor(Level("wizard"))
	if p.Level != Intermediate {
		t.Errorf("got %s, want intermediate", p.Level)
	}
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	if c.Len() == 0 {
		t.Fatal("expected built-in skills")
	}
	for _, cat := range AllCategories() {
		if len(c.ByCategory(cat)) == 0 {
			t.Errorf("category %q has no skills", cat)
		}
	}
}

func TestCatalogFind(t *testing.T) {
	c := DefaultCatalog()

	s, err := c.Find("react")
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if s.Name != "React" {
		t.Errorf("got %q", s.Name)
	}

	s, err = c.Find("  node.JS ")
	if err != nil {
		t.Fatalf("find by name: %v", err)
	}
	if s.ID != "nodejs" {
		t.Errorf("got %q", s.ID)
	}

	_, err = c.Find("cobol")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadCatalog_Invalid(t *testing.T) {
	doc := `skills:
  - id: go
    name: Go
    category: languages
  - id: go
    name: Golang
    category: wizardry
`
	_, err := LoadCatalog(strings.NewReader(doc))
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"duplicate skill ID", "unknown category"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}
