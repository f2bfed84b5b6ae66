// Package metabolism computes BMR, TDEE and goal-adjusted calorie targets
// from a user's physical profile.
package metabolism

import (
	"fmt"
	"math"
)

// Sex selects the Mifflin-St Jeor constant.
type Sex string

const (
	Male   Sex = "male"
	Female Sex = "female"
)

// ActivityLevel is one of the five fixed TDEE activity buckets.
type ActivityLevel string

const (
	Sedentary  ActivityLevel = "sedentary"
	Light      ActivityLevel = "light"
	Moderate   ActivityLevel = "moderate"
	Active     ActivityLevel = "active"
	VeryActive ActivityLevel = "very_active"
)

// GoalType biases the calorie target toward loss, maintenance or gain.
type GoalType string

const (
	LoseWeight GoalType = "lose_weight"
	Maintain   GoalType = "maintain"
	GainWeight GoalType = "gain_weight"
)

// ActivityLevels lists the levels in increasing order of energy expenditure.
var ActivityLevels = []ActivityLevel{Sedentary, Light, Moderate, Active, VeryActive}

// GoalTypes lists every goal.
var GoalTypes = []GoalType{LoseWeight, Maintain, GainWeight}

// activityMultipliers maps each activity level to its TDEE multiplier.
// This is the single source of truth for valid activity levels; ParseActivityLevel
// validates against it.
var activityMultipliers = map[ActivityLevel]float64{
	Sedentary:  1.2,
	Light:      1.375,
	Moderate:   1.55,
	Active:     1.725,
	VeryActive: 1.9,
}

// goalAdjustments is the fraction of TDEE added (or removed) for each goal.
var goalAdjustments = map[GoalType]float64{
	LoseWeight: -0.20,
	Maintain:   0,
	GainWeight: 0.10,
}

const (
	// MinTargetCalories is the floor for any goal-adjusted target. It does not
	// depend on sex.
	MinTargetCalories = 1200

	// KcalPerKG is the energy density used to turn a calorie delta into body mass.
	KcalPerKG = 7700
)

// Profile is the input to Calculate. Ranges are validated by callers.
type Profile struct {
	WeightKG      float64       `json:"weight"`
	HeightCM      int           `json:"height"`
	Age           int           `json:"age"`
	Sex           Sex           `json:"gender"`
	ActivityLevel ActivityLevel `json:"activity_level"`
	GoalType      GoalType      `json:"goal_type"`
}

// Result holds the three derived calorie figures.
type Result struct {
	BMR            int `json:"bmr"`
	TDEE           int `json:"tdee"`
	TargetCalories int `json:"target_calories"`
}

// round rounds half up (toward +Inf), so -2.5 becomes -2 and 2.5 becomes 3.
func round(x float64) float64 {
	return math.Floor(x + 0.5)
}

// BMR computes basal metabolic rate via Mifflin-St Jeor.
func BMR(weightKG float64, heightCM, age int, sex Sex) int {
	base := 10*weightKG + 6.25*float64(heightCM) - 5*float64(age)
	if sex == Male {
		return int(round(base + 5))
	}
	return int(round(base - 161))
}

// TDEE scales bmr by the activity multiplier. An unknown level leaves bmr as is.
func TDEE(bmr int, level ActivityLevel) int {
	mult, ok := activityMultipliers[level]
	if !ok {
		mult = 1
	}
	return int(round(float64(bmr) * mult))
}

// TargetCalories applies the goal adjustment to tdee and clamps the result
// at MinTargetCalories.
func TargetCalories(tdee int, goal GoalType) int {
	raw := float64(tdee) * (1 + goalAdjustments[goal])
	return max(MinTargetCalories, int(round(raw)))
}

// Calculate runs BMR, TDEE and TargetCalories in sequence.
func Calculate(p Profile) Result {
	bmr := BMR(p.WeightKG, p.HeightCM, p.Age, p.Sex)
	tdee := TDEE(bmr, p.ActivityLevel)
	return Result{
		BMR:            bmr,
		TDEE:           tdee,
		TargetCalories: TargetCalories(tdee, p.GoalType),
	}
}

// WeeklyWeightChange converts a daily calorie surplus (positive) or deficit
// (negative) into kg per week, rounded to one decimal.
func WeeklyWeightChange(dailyCalorieDelta float64) float64 {
	return round(dailyCalorieDelta*7/KcalPerKG*10) / 10
}

// WeeksToGoal estimates how many weeks it takes to move from current to
// target weight at weeklyChange kg/week. Returns 0 when weeklyChange is 0.
func WeeksToGoal(currentKG, targetKG, weeklyChange float64) int {
	if weeklyChange == 0 {
		return 0
	}
	return int(math.Ceil(math.Abs(targetKG-currentKG) / math.Abs(weeklyChange)))
}

/* ─── Parsing ────────────────────────────────────────────────────────── */

// ParseSex validates s against the known sexes.
func ParseSex(s string) (Sex, error) {
	switch Sex(s) {
	case Male, Female:
		return Sex(s), nil
	}
	return "", fmt.Errorf("gender must be one of: male, female")
}

// ParseActivityLevel validates s against the known activity levels.
func ParseActivityLevel(s string) (ActivityLevel, error) {
	if _, ok := activityMultipliers[ActivityLevel(s)]; !ok {
		return "", fmt.Errorf("activity_level must be one of: sedentary, light, moderate, active, very_active")
	}
	return ActivityLevel(s), nil
}

// ParseGoalType validates s against the known goals.
func ParseGoalType(s string) (GoalType, error) {
	if _, ok := goalAdjustments[GoalType(s)]; !ok {
		return "", fmt.Errorf("goal_type must be one of: lose_weight, maintain, gain_weight")
	}
	return GoalType(s), nil
}
