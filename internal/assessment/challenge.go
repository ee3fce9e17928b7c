package assessment

import (
	"fmt"

	"github.com/zirakhr/zirak/internal/skills"
)

// TestCase is an input/expected-output pair for a coding challenge.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
}

// CodingChallenge describes the task of a coding_challenge assessment.
type CodingChallenge struct {
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Requirements  []string     `json:"requirements"`
	TestCases     []TestCase   `json:"testCases"`
	TimeLimitMins int          `json:"timeLimit"`
	Difficulty    skills.Level `json:"difficulty"`
}

// NewCodingChallenge builds the challenge for a skill at the given level.
func NewCodingChallenge(skillName string, level skills.Level) *CodingChallenge {
	var mins int
	var reqs []string
	switch level {
	case skills.Beginner:
		mins = 30
		reqs = []string{"Basic functionality", "Simple error handling"}
	case skills.Advanced:
		mins = 60
		reqs = []string{"Complete functionality", "Comprehensive error handling", "Optimization", "Clean code"}
	case skills.Expert:
		mins = 90
		reqs = []string{"Complete functionality", "Comprehensive error handling", "Advanced optimization", "Clean code", "Scalability considerations"}
	default:
		level = skills.Intermediate
		mins = 45
		reqs = []string{"Complete functionality", "Error handling", "Basic optimization"}
	}

	cases := make([]TestCase, 3)
	for i := range cases {
		cases[i] = TestCase{
			Input:          fmt.Sprintf("Sample input %d", i+1),
			ExpectedOutput: fmt.Sprintf("Sample output %d", i+1),
		}
	}

	return &CodingChallenge{
		Title:         fmt.Sprintf("%s Coding Challenge (%s)", skillName, level),
		Description:   fmt.Sprintf("Demonstrate your %s skills by completing this %s level coding challenge.", skillName, level),
		Requirements:  reqs,
		TestCases:     cases,
		TimeLimitMins: mins,
		Difficulty:    level,
	}
}

// Describe returns the title and description of an assessment.
func Describe(t Type, skillName string, level skills.Level) (title, description string) {
	switch t {
	case TypeCodingChallenge:
		return fmt.Sprintf("%s Coding Challenge", skillName),
			fmt.Sprintf("Demonstrate your %s skills by completing this coding challenge.", skillName)
	case TypeProject:
		return fmt.Sprintf("%s Project Review", skillName),
			fmt.Sprintf("Submit a project that demonstrates your %s skills for review.", skillName)
	case TypeInterview:
		return fmt.Sprintf("%s Technical Interview", skillName),
			fmt.Sprintf("A technical interview assessing your %s skills.", skillName)
	}

	switch level {
	case skills.Beginner:
		return fmt.Sprintf("%s Fundamentals Assessment", skillName),
			fmt.Sprintf("This assessment tests your basic knowledge of %s. It focuses on fundamental concepts and beginner-level applications.", skillName)
	case skills.Intermediate:
		return fmt.Sprintf("%s Proficiency Assessment", skillName),
			fmt.Sprintf("This assessment evaluates your intermediate knowledge of %s. It covers both fundamentals and more advanced concepts.", skillName)
	case skills.Advanced:
		return fmt.Sprintf("%s Advanced Assessment", skillName),
			fmt.Sprintf("This assessment challenges your advanced knowledge of %s. It includes complex scenarios and specialized topics.", skillName)
	case skills.Expert:
		return fmt.Sprintf("%s Expert Assessment", skillName),
			fmt.Sprintf("This expert-level assessment tests your mastery of %s. It covers advanced topics, best practices, and complex problem-solving.", skillName)
	}
	return fmt.Sprintf("%s Assessment", skillName),
		fmt.Sprintf("This assessment evaluates your knowledge of %s.", skillName)
}
