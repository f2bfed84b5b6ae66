package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/CODE-DK/nutritionist/internal/metabolism"
	"github.com/CODE-DK/nutritionist/internal/tips"
)

// Onboarding input ranges.
const (
	minAge, maxAge           = 13, 120
	minHeightCM, maxHeightCM = 100, 250
	minWeightKG, maxWeightKG = 30.0, 300.0
)

// metabolismInputs returns the calculator input for p, or false if any
// physical field is still missing or unparseable.
func metabolismInputs(p userProfile) (metabolism.Profile, bool) {
	if p.Gender == nil || p.Age == nil || p.HeightCM == nil || p.WeightKG == nil ||
		p.ActivityLevel == nil || p.GoalType == nil {
		return metabolism.Profile{}, false
	}
	sex, err := metabolism.ParseSex(*p.Gender)
	if err != nil {
		return metabolism.Profile{}, false
	}
	level, err := metabolism.ParseActivityLevel(*p.ActivityLevel)
	if err != nil {
		return metabolism.Profile{}, false
	}
	goal, err := metabolism.ParseGoalType(*p.GoalType)
	if err != nil {
		return metabolism.Profile{}, false
	}
	return metabolism.Profile{
		WeightKG:      *p.WeightKG,
		HeightCM:      *p.HeightCM,
		Age:           *p.Age,
		Sex:           sex,
		ActivityLevel: level,
		GoalType:      goal,
	}, true
}

// computeCalories runs the calculator and derives the pace toward targetKG.
// WeeksToGoal is 0 when no target weight is set.
func computeCalories(in metabolism.Profile, targetKG *float64) computedCalories {
	res := metabolism.Calculate(in)
	weekly := metabolism.WeeklyWeightChange(float64(res.TargetCalories - res.TDEE))
	out := computedCalories{Result: res, WeeklyChangeKG: weekly}
	if targetKG != nil {
		out.WeeksToGoal = metabolism.WeeksToGoal(in.WeightKG, *targetKG, weekly)
	}
	return out
}

// populateComputed fills p.Computed when every physical field is present.
func populateComputed(p *userProfile) {
	in, ok := metabolismInputs(*p)
	if !ok {
		p.Computed = nil
		return
	}
	c := computeCalories(in, p.TargetWeightKG)
	p.Computed = &c
}

// validateProfile checks every non-nil field of p against the onboarding
// ranges. Target weight is checked against the goal direction only when
// weight, target and goal are all known.
func validateProfile(p userProfile) error {
	if p.Gender != nil {
		if _, err := metabolism.ParseSex(*p.Gender); err != nil {
			return err
		}
	}
	if p.ActivityLevel != nil {
		if _, err := metabolism.ParseActivityLevel(*p.ActivityLevel); err != nil {
			return err
		}
	}
	if p.GoalType != nil {
		if _, err := metabolism.ParseGoalType(*p.GoalType); err != nil {
			return err
		}
	}
	if p.DietType != nil {
		if _, err := tips.ParseDietType(*p.DietType); err != nil {
			return err
		}
	}
	if p.Age != nil && (*p.Age < minAge || *p.Age > maxAge) {
		return fmt.Errorf("age must be between %d and %d", minAge, maxAge)
	}
	if p.HeightCM != nil && (*p.HeightCM < minHeightCM || *p.HeightCM > maxHeightCM) {
		return fmt.Errorf("height must be between %d and %d cm", minHeightCM, maxHeightCM)
	}
	if p.WeightKG != nil && (*p.WeightKG < minWeightKG || *p.WeightKG > maxWeightKG) {
		return fmt.Errorf("weight must be between %.0f and %.0f kg", minWeightKG, maxWeightKG)
	}
	if p.TargetWeightKG != nil {
		target := *p.TargetWeightKG
		if target < minWeightKG || target > maxWeightKG {
			return fmt.Errorf("target_weight must be between %.0f and %.0f kg", minWeightKG, maxWeightKG)
		}
		if p.WeightKG != nil && p.GoalType != nil {
			switch metabolism.GoalType(*p.GoalType) {
			case metabolism.LoseWeight:
				if target >= *p.WeightKG {
					return errors.New("target_weight must be below current weight to lose weight")
				}
			case metabolism.GainWeight:
				if target <= *p.WeightKG {
					return errors.New("target_weight must be above current weight to gain weight")
				}
			}
		}
	}
	return nil
}

// applyPatch overlays the non-nil fields of body onto p.
func applyPatch(p userProfile, body patchProfileRequest) userProfile {
	if body.Gender != nil {
		p.Gender = body.Gender
	}
	if body.Age != nil {
		p.Age = body.Age
	}
	if body.HeightCM != nil {
		p.HeightCM = body.HeightCM
	}
	if body.WeightKG != nil {
		p.WeightKG = body.WeightKG
	}
	if body.ActivityLevel != nil {
		p.ActivityLevel = body.ActivityLevel
	}
	if body.GoalType != nil {
		p.GoalType = body.GoalType
	}
	if body.DietType != nil {
		p.DietType = body.DietType
	}
	if body.TargetWeightKG != nil {
		p.TargetWeightKG = body.TargetWeightKG
	}
	if body.DailyCalorieGoal != nil {
		p.DailyCalorieGoal = *body.DailyCalorieGoal
	}
	if body.ShowDailyTips != nil {
		p.ShowDailyTips = *body.ShowDailyTips
	}
	if body.OnboardingComplete != nil {
		p.OnboardingComplete = *body.OnboardingComplete
	}
	return p
}

// touchesMetabolism reports whether body changes any calculator input.
func touchesMetabolism(body patchProfileRequest) bool {
	return body.Gender != nil || body.Age != nil || body.HeightCM != nil ||
		body.WeightKG != nil || body.ActivityLevel != nil || body.GoalType != nil
}

// recomputedGoal returns the calculator's target for the merged profile when
// the patch changed a calculator input and did not set daily_calorie_goal
// itself. Otherwise the stored goal, possibly set by hand, is kept.
func recomputedGoal(body patchProfileRequest, merged userProfile) (int, bool) {
	if body.DailyCalorieGoal != nil || !touchesMetabolism(body) {
		return 0, false
	}
	in, ok := metabolismInputs(merged)
	if !ok {
		return 0, false
	}
	return metabolism.Calculate(in).TargetCalories, true
}

// getProfile returns the caller's profile with computed calorie figures.
// GET /api/profile.
func (h *Handler) getProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	p, err := h.accounts.Profile(c, userID)
	if errors.Is(err, errNotFound) {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	populateComputed(&p)
	c.JSON(http.StatusOK, p)
}

// patchProfile updates only the provided profile fields.
// PATCH /api/profile. The merged profile is validated as a whole so a goal
// change is checked against the stored target weight. See recomputedGoal for
// when daily_calorie_goal is rewritten.
func (h *Handler) patchProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var body patchProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	current, err := h.accounts.Profile(c, userID)
	if errors.Is(err, errNotFound) {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	merged := applyPatch(current, body)
	if err := validateProfile(merged); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	setClauses := []string{}
	args := pgx.NamedArgs{"userID": userID}
	set := func(column, arg string, value any) {
		setClauses = append(setClauses, column+" = @"+arg)
		args[arg] = value
	}

	if body.Gender != nil {
		set("gender", "gender", *body.Gender)
	}
	if body.Age != nil {
		set("age", "age", *body.Age)
	}
	if body.HeightCM != nil {
		set("height_cm", "heightCM", *body.HeightCM)
	}
	if body.WeightKG != nil {
		set("weight_kg", "weightKG", *body.WeightKG)
	}
	if body.ActivityLevel != nil {
		set("activity_level", "activityLevel", *body.ActivityLevel)
	}
	if body.GoalType != nil {
		set("goal_type", "goalType", *body.GoalType)
	}
	if body.DietType != nil {
		set("diet_type", "dietType", *body.DietType)
	}
	if body.TargetWeightKG != nil {
		set("target_weight_kg", "targetWeightKG", *body.TargetWeightKG)
	}
	if body.ShowDailyTips != nil {
		set("show_daily_tips", "showDailyTips", *body.ShowDailyTips)
	}
	if body.OnboardingComplete != nil {
		set("onboarding_complete", "onboardingComplete", *body.OnboardingComplete)
	}

	if len(setClauses) == 0 && body.DailyCalorieGoal == nil {
		apiError(c, http.StatusBadRequest, "no fields to update")
		return
	}

	if body.DailyCalorieGoal != nil {
		if *body.DailyCalorieGoal < metabolism.MinTargetCalories {
			apiError(c, http.StatusBadRequest,
				fmt.Sprintf("daily_calorie_goal must be at least %d", metabolism.MinTargetCalories))
			return
		}
		set("daily_calorie_goal", "dailyCalorieGoal", *body.DailyCalorieGoal)
	} else if goal, ok := recomputedGoal(body, merged); ok {
		set("daily_calorie_goal", "dailyCalorieGoal", goal)
	}

	query := "UPDATE user_profiles SET " +
		strings.Join(setClauses, ", ") +
		", updated_at = NOW() WHERE user_id = @userID RETURNING *"

	p, err := queryOne[userProfile](h.db, c, query, args)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("[patchProfile] update failed")
		apiError(c, http.StatusInternalServerError, "failed to update profile")
		return
	}

	populateComputed(&p)
	c.JSON(http.StatusOK, p)
}

// calculateRequest is the body for POST /api/metabolism/calculate.
type calculateRequest struct {
	metabolism.Profile
	TargetWeightKG *float64 `json:"target_weight"`
}

// calculateCalories is the stateless calculator used by onboarding before a
// profile exists. POST /api/metabolism/calculate (public).
func (h *Handler) calculateCalories(c *gin.Context) {
	var body calculateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	gender := string(body.Sex)
	level := string(body.ActivityLevel)
	goal := string(body.GoalType)
	p := userProfile{
		Gender:         &gender,
		Age:            &body.Age,
		HeightCM:       &body.HeightCM,
		WeightKG:       &body.WeightKG,
		ActivityLevel:  &level,
		GoalType:       &goal,
		TargetWeightKG: body.TargetWeightKG,
	}
	if err := validateProfile(p); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	calculations.WithLabelValues(goal).Inc()
	c.JSON(http.StatusOK, computeCalories(body.Profile, body.TargetWeightKG))
}
