package plan

import (
	"errors"
	"fmt"
)

// Days is the length of the generated program.
const Days = 90

var ErrInvalidDay = errors.New("invalid day")

type Day struct {
	Day      int      `json:"day"`
	Workouts []string `json:"workouts"`
}

var weeklyTemplate = [7][]string{
	{"Push-ups: 3 sets of 15", "Squats: 3 sets of 20", "Planks: 3 sets of 30 seconds"},
	{"Burpees: 3 sets of 10", "Lunges: 3 sets of 20", "Mountain Climbers: 3 sets of 30 seconds"},
	{"Bicep Curls: 3 sets of 12", "Deadlifts: 3 sets of 10", "Leg Raises: 3 sets of 15"},
	{"Bench Press: 3 sets of 10", "Pull-ups: 3 sets of 8", "Tricep Dips: 3 sets of 12"},
	{"Jump Rope: 5 minutes", "Box Jumps: 3 sets of 12", "Sit-ups: 3 sets of 20"},
	{"Cardio: 30 minutes run", "Yoga: 15 minutes stretch", "Bodyweight Rows: 3 sets of 15"},
	{"Rest Day: Focus on recovery and stretching"},
}

// Generate builds the full program; it is the same on every call.
func Generate() []Day {
	days := make([]Day, 0, Days)
	for i := 0; i < Days; i++ {
		days = append(days, dayPlan(i+1))
	}
	return days
}

func ForDay(day int) (Day, error) {
	if !ValidDay(day) {
		return Day{}, fmt.Errorf("%w: %d, must be in [1, %d]", ErrInvalidDay, day, Days)
	}
	return dayPlan(day), nil
}

func ValidDay(day int) bool {
	return day >= 1 && day <= Days
}

func dayPlan(day int) Day {
	template := weeklyTemplate[(day-1)%len(weeklyTemplate)]
	workouts := make([]string, len(template))
	copy(workouts, template)
	return Day{
		Day:      day,
		Workouts: workouts,
	}
}
