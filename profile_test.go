package main

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateProfile(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *userProfile)
		wantErr string
	}{
		{"complete profile", func(p *userProfile) {}, ""},
		{"empty profile", func(p *userProfile) { *p = userProfile{} }, ""},
		{"age too low", func(p *userProfile) { p.Age = ptr(12) }, "age must be between 13 and 120"},
		{"age upper bound", func(p *userProfile) { p.Age = ptr(120) }, ""},
		{"height too high", func(p *userProfile) { p.HeightCM = ptr(251) }, "height must be between 100 and 250 cm"},
		{"weight too low", func(p *userProfile) { p.WeightKG = ptr(29.9) }, "weight must be between 30 and 300 kg"},
		{"unknown gender", func(p *userProfile) { p.Gender = ptr("other") }, "gender must be one of"},
		{"unknown activity", func(p *userProfile) { p.ActivityLevel = ptr("extreme") }, "activity_level must be one of"},
		{"unknown goal", func(p *userProfile) { p.GoalType = ptr("bulk") }, "goal_type must be one of"},
		{"unknown diet", func(p *userProfile) { p.DietType = ptr("carnivore") }, "diet_type"},
		{"target out of range", func(p *userProfile) { p.TargetWeightKG = ptr(301.0) }, "target_weight must be between"},
		{"lose with higher target", func(p *userProfile) { p.TargetWeightKG = ptr(75.0) }, "below current weight"},
		{"gain with lower target", func(p *userProfile) {
			p.GoalType = ptr("gain_weight")
		}, "above current weight"},
		{"maintain any target", func(p *userProfile) {
			p.GoalType = ptr("maintain")
			p.TargetWeightKG = ptr(80.0)
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := completeProfile()
			tt.mutate(&p)
			err := validateProfile(p)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestApplyPatch_OnlyProvidedFields(t *testing.T) {
	p := completeProfile()
	merged := applyPatch(p, patchProfileRequest{
		WeightKG:      ptr(68.5),
		ShowDailyTips: ptr(false),
	})

	require.Equal(t, 68.5, *merged.WeightKG)
	require.False(t, merged.ShowDailyTips)
	require.Equal(t, *p.Age, *merged.Age)
	require.Equal(t, *p.GoalType, *merged.GoalType)
	require.Equal(t, p.DailyCalorieGoal, merged.DailyCalorieGoal)
}

func TestRecomputedGoal(t *testing.T) {
	handSet := completeProfile()
	handSet.DailyCalorieGoal = 1800

	tests := []struct {
		name string
		p    userProfile
		body patchProfileRequest
		want int
		ok   bool
	}{
		{"preference toggle keeps manual goal", handSet, patchProfileRequest{ShowDailyTips: ptr(false)}, 0, false},
		{"diet change keeps manual goal", handSet, patchProfileRequest{DietType: ptr("vegan")}, 0, false},
		{"weight change recomputes", handSet, patchProfileRequest{WeightKG: ptr(80.0)}, 2169, true},
		{"explicit goal wins", handSet, patchProfileRequest{WeightKG: ptr(80.0), DailyCalorieGoal: ptr(1900)}, 0, false},
		{"incomplete profile", userProfile{Gender: ptr("male")}, patchProfileRequest{Age: ptr(30)}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := recomputedGoal(tt.body, applyPatch(tt.p, tt.body))
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestPopulateComputed(t *testing.T) {
	p := completeProfile()
	populateComputed(&p)
	require.NotNil(t, p.Computed)
	require.Equal(t, 1649, p.Computed.BMR)
	require.Equal(t, 2556, p.Computed.TDEE)
	require.Equal(t, 2045, p.Computed.TargetCalories)
	require.Equal(t, -0.5, p.Computed.WeeklyChangeKG)
	require.Equal(t, 10, p.Computed.WeeksToGoal)

	p.Age = nil
	populateComputed(&p)
	require.Nil(t, p.Computed)
}

func TestGetProfile(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("GET", "/api/profile", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	env.accounts.profiles[testUserID] = completeProfile()
	w = env.do("GET", "/api/profile", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got userProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, 70.0, *got.WeightKG)
	require.NotNil(t, got.Computed)
	require.Equal(t, 2045, got.Computed.TargetCalories)
}

func TestCalculateCalories(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("POST", "/api/metabolism/calculate",
		`{"weight":70,"height":175,"age":30,"gender":"male","activity_level":"moderate","goal_type":"gain_weight","target_weight":73}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.JSONEq(t, `{
		"bmr": 1649,
		"tdee": 2556,
		"target_calories": 2812,
		"weekly_change_kg": 0.2,
		"weeks_to_goal": 15
	}`, w.Body.String())

	w = env.do("POST", "/api/metabolism/calculate",
		`{"weight":60,"height":165,"age":25,"gender":"female","activity_level":"sedentary","goal_type":"maintain"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res computedCalories
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, 1345, res.BMR)
	require.Equal(t, res.TDEE, res.TargetCalories)
	require.Equal(t, 0.0, res.WeeklyChangeKG)
	require.Equal(t, 0, res.WeeksToGoal)
}

func TestCalculateCalories_Invalid(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{
		`{"weight":70,"height":175,"age":30,"gender":"male","activity_level":"moderate"}`,
		`{"weight":500,"height":175,"age":30,"gender":"male","activity_level":"moderate","goal_type":"maintain"}`,
		`{"weight":70,"height":175,"age":30,"gender":"robot","activity_level":"moderate","goal_type":"maintain"}`,
		`{"weight":"heavy"}`,
	} {
		w := env.do("POST", "/api/metabolism/calculate", body)
		require.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}
