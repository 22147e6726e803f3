package intake

import "fmt"

const (
	DefaultWaterGoalLiters = 2.0
	DefaultCalorieGoal     = 2500
)

type GoalStatus string

const (
	GoalUnder GoalStatus = "under"
	GoalOver  GoalStatus = "over"
	GoalMet   GoalStatus = "met"
)

// GoalComparison tells how a logged amount relates to the goal. Difference is
// what is left (under) or the excess (over), zero when met.
type GoalComparison struct {
	Status     GoalStatus `json:"status"`
	Difference float64    `json:"difference"`
	Message    string     `json:"message"`
}

// CompareWater compares the amount just logged against the daily goal.
// There is no such thing as too much water.
func CompareWater(litersLogged, goalLiters float64) GoalComparison {
	if litersLogged >= goalLiters {
		return GoalComparison{
			Status:  GoalMet,
			Message: "You have reached your water goal for the day!",
		}
	}

	remaining := goalLiters - litersLogged
	return GoalComparison{
		Status:     GoalUnder,
		Difference: remaining,
		Message:    fmt.Sprintf("You are under your water intake. You need to drink more: %.2f liters remaining.", remaining),
	}
}

// CompareCalories compares the calories just logged against the daily goal.
func CompareCalories(caloriesLogged, goal int) GoalComparison {
	switch {
	case caloriesLogged < goal:
		remaining := goal - caloriesLogged
		return GoalComparison{
			Status:     GoalUnder,
			Difference: float64(remaining),
			Message:    fmt.Sprintf("You are under your calorie intake. You need to consume more: %d calories remaining.", remaining),
		}
	case caloriesLogged > goal:
		excess := caloriesLogged - goal
		return GoalComparison{
			Status:     GoalOver,
			Difference: float64(excess),
			Message:    fmt.Sprintf("You are over your calorie intake by %d calories. Try again tomorrow.", excess),
		}
	default:
		return GoalComparison{
			Status:  GoalMet,
			Message: "You have reached your calorie goal for the day!",
		}
	}
}
