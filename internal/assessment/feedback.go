package assessment

import "fmt"

const (
	passedSuffix = " Your skill has been verified and will be displayed on your profile, increasing your visibility to potential employers."
	failedSuffix = " You can retake this assessment in 7 days. In the meantime, consider exploring learning resources to improve your knowledge."
)

// Feedback builds the message shown after completion. The first sentence
// depends on the score band; the last on whether the attempt passed.
func Feedback(skillName string, score int, passed bool) string {
	var msg string
	switch {
	case score >= 90:
		msg = fmt.Sprintf("Excellent performance! You have demonstrated expert-level knowledge in %s. Your understanding of advanced concepts is impressive.", skillName)
	case score >= 80:
		msg = fmt.Sprintf("Great job! You have strong advanced knowledge in %s. You've shown proficiency in most aspects of this skill.", skillName)
	case score >= 70:
		msg = fmt.Sprintf("Good work! You have demonstrated solid intermediate knowledge of %s. You've passed the verification threshold.", skillName)
	case score >= 60:
		msg = fmt.Sprintf("You have basic knowledge of %s, but didn't quite reach the verification threshold. Consider reviewing some intermediate concepts and trying again.", skillName)
	case score >= 40:
		msg = fmt.Sprintf("You've shown some understanding and basic knowledge of %s, but need more practice to reach proficiency. Focus on building your foundation and try again.", skillName)
	default:
		msg = fmt.Sprintf("You need more practice with %s. Consider starting with beginner tutorials and building a stronger foundation before attempting verification again.", skillName)
	}

	if passed {
		return msg + passedSuffix
	}
	return msg + failedSuffix
}
