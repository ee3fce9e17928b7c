package skills

import "strings"

// Level is a proficiency level. It doubles as the difficulty of a single
// question and the target level of an assessment.
type Level string

const (
	Beginner     Level = "beginner"
	Intermediate Level = "intermediate"
	Advanced     Level = "advanced"
	Expert       Level = "expert"
)

// AllLevels returns the levels in ascending order.
func AllLevels() []Level {
	return []Level{Beginner, Intermediate, Advanced, Expert}
}

// ParseLevel maps a user-supplied string to a Level. Unknown values fall
// back to Intermediate.
func ParseLevel(s string) Level {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	if l.Valid() {
		return l
	}
	return Intermediate
}

// Valid reports whether l is one of the four known levels.
func (l Level) Valid() bool {
	switch l {
	case Beginner, Intermediate, Advanced, Expert:
		return true
	}
	return false
}

// Rank orders levels from 0 (beginner) to 3 (expert). Unknown levels rank -1.
func (l Level) Rank() int {
	switch l {
	case Beginner:
		return 0
	case Intermediate:
		return 1
	case Advanced:
		return 2
	case Expert:
		return 3
	default:
		return -1
	}
}

// Points is the value of a correctly answered question of this difficulty.
// Weights never decrease as difficulty rises and are capped at 3.
func (l Level) Points() int {
	switch l {
	case Beginner:
		return 1
	case Intermediate:
		return 2
	case Advanced, Expert:
		return 3
	default:
		return 1
	}
}

// DisplayName returns a human-readable name for a level.
func (l Level) DisplayName() string {
	switch l {
	case Beginner:
		return "Beginner"
	case Intermediate:
		return "Intermediate"
	case Advanced:
		return "Advanced"
	case Expert:
		return "Expert"
	default:
		return string(l)
	}
}

// Max returns the higher of two levels.
func Max(a, b Level) Level {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}
