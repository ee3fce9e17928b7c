package skills

// Profile holds the assessment settings for a target level.
type Profile struct {
	Level Level

	// Distribution is the share of questions per difficulty, indexed in
	// AllLevels order. Shares sum to 1.
	Distribution [4]float64

	TimeLimitMins int
	PassingScore  int
}

var profiles = map[Level]Profile{
	Beginner: {
		Level:         Beginner,
		Distribution:  [4]float64{0.7, 0.3, 0, 0},
		TimeLimitMins: 10,
		PassingScore:  65,
	},
	Intermediate: {
		Level:         Intermediate,
		Distribution:  [4]float64{0.3, 0.5, 0.2, 0},
		TimeLimitMins: 15,
		PassingScore:  70,
	},
	Advanced: {
		Level:         Advanced,
		Distribution:  [4]float64{0.1, 0.3, 0.5, 0.1},
		TimeLimitMins: 20,
		PassingScore:  75,
	},
	Expert: {
		Level:         Expert,
		Distribution:  [4]float64{0, 0.1, 0.4, 0.5},
		TimeLimitMins: 25,
		PassingScore:  80,
	},
}

// ProfileFor returns the profile for l. Unknown levels get the
// intermediate profile.
func ProfileFor(l Level) Profile {
	if p, ok := profiles[l]; ok {
		return p
	}
	return profiles[Intermediate]
}
