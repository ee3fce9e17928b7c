package skills

import (
	"fmt"
	"strings"
)

// validateSkills performs structural checks on a catalog.
// Returns a combined error describing all problems found, or nil if valid.
func validateSkills(skills []Skill) error {
	var errs []string

	if len(skills) == 0 {
		errs = append(errs, "catalog has no skills")
	}

	known := make(map[Category]bool)
	for _, c := range AllCategories() {
		known[c] = true
	}

	ids := make(map[string]bool, len(skills))
	names := make(map[string]bool, len(skills))
	for _, s := range skills {
		if s.ID == "" {
			errs = append(errs, fmt.Sprintf("skill %q has no ID", s.Name))
			continue
		}
		if ids[s.ID] {
			errs = append(errs, fmt.Sprintf("duplicate skill ID: %q", s.ID))
		}
		ids[s.ID] = true

		if s.Name == "" {
			errs = append(errs, fmt.Sprintf("skill %q has no name", s.ID))
		} else if n := normalizeName(s.Name); names[n] {
			errs = append(errs, fmt.Sprintf("duplicate skill name: %q", s.Name))
		} else {
			names[n] = true
		}

		if !known[s.Category] {
			errs = append(errs, fmt.Sprintf("skill %q has unknown category %q", s.ID, s.Category))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("skill catalog validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
