package progression

// ExpPerLevel is the EXP needed to advance one level.
const ExpPerLevel = 100

type Progress struct {
	Exp          int `json:"exp"`
	Level        int `json:"level"`
	NextLevelExp int `json:"nextLevelExp"`
	ExpRemaining int `json:"expRemaining"`
}

func Level(exp int) int {
	return exp / ExpPerLevel
}

// NextLevelThreshold is the total EXP at which the next level is reached.
func NextLevelThreshold(exp int) int {
	return (Level(exp) + 1) * ExpPerLevel
}

// ExpRemaining is always in [1, ExpPerLevel].
func ExpRemaining(exp int) int {
	return NextLevelThreshold(exp) - exp
}

func Summarize(exp int) Progress {
	return Progress{
		Exp:          exp,
		Level:        Level(exp),
		NextLevelExp: NextLevelThreshold(exp),
		ExpRemaining: ExpRemaining(exp),
	}
}
