package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CODE-DK/nutritionist/internal/metabolism"
	"github.com/CODE-DK/nutritionist/internal/tips"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCalories_JSON(t *testing.T) {
	out, err := run(t, "calories", "--weight", "70", "--height", "175", "--age", "30",
		"--gender", "male", "--activity", "moderate", "--goal", "lose_weight", "--target", "65", "--json")
	require.NoError(t, err)
	require.JSONEq(t, `{"bmr":1649,"tdee":2556,"target_calories":2045,"weekly_change_kg":-0.5,"weeks_to_goal":10}`, out)
}

func TestCalories_Text(t *testing.T) {
	out, err := run(t, "calories", "--weight", "60", "--height", "165", "--age", "25", "--gender", "female")
	require.NoError(t, err)
	require.Contains(t, out, "BMR:             1345 kcal")
	require.NotContains(t, out, "Weeks to goal")
}

func TestCalories_InvalidInput(t *testing.T) {
	_, err := run(t, "calories", "--weight", "60", "--height", "165", "--age", "25", "--gender", "robot")
	require.Error(t, err)

	_, err = run(t, "calories", "--weight", "60")
	require.Error(t, err)
}

func TestWeeksToGoal(t *testing.T) {
	out, err := run(t, "weeks-to-goal", "--current", "80", "--target", "70", "--weekly=-0.5")
	require.NoError(t, err)
	require.Equal(t, "20", strings.TrimSpace(out))

	out, err = run(t, "weeks-to-goal", "--current", "80", "--target", "70", "--weekly", "0")
	require.NoError(t, err)
	require.Equal(t, "0", strings.TrimSpace(out))
}

func TestTipsValidate(t *testing.T) {
	out, err := run(t, "tips", "validate")
	require.NoError(t, err)
	require.Contains(t, out, fmt.Sprintf("total: %d", tips.Default().Stats().Total))
	require.Contains(t, out, "catalog is valid")
}

func TestTipsList(t *testing.T) {
	out, err := run(t, "tips", "list", "--diet", "vegan", "--goal", "gain_weight")
	require.NoError(t, err)
	want := len(tips.Default().Applicable(tips.Vegan, metabolism.GainWeight))
	require.Contains(t, out, fmt.Sprintf("%d tip(s)", want))

	_, err = run(t, "tips", "list", "--diet", "carnivore")
	require.Error(t, err)
}
