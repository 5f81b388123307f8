package questiongen

// DifficultyAt returns the difficulty of question index (0-based) in a set
// of count questions. Small sets step through easy, medium, hard; larger
// sets are 40% easy, 30% medium and the rest hard.
func DifficultyAt(index, count int) Difficulty {
	if count <= 3 {
		return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}[min(index, 2)]
	}
	i := float64(index)
	switch {
	case i < 0.4*float64(count):
		return DifficultyEasy
	case i < 0.7*float64(count):
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}

// Schedule returns the difficulty of every question in a set of count.
func Schedule(count int) []Difficulty {
	out := make([]Difficulty, 0, max(count, 0))
	for i := range count {
		out = append(out, DifficultyAt(i, count))
	}
	return out
}
