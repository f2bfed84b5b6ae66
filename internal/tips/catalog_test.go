package tips

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CODE-DK/nutritionist/internal/metabolism"
)

// TestDefaultCatalog_UniqueIDs is the startup self-check over the built-in
// catalog.
func TestDefaultCatalog_UniqueIDs(t *testing.T) {
	v := Default().Validate()
	require.True(t, v.Valid)
	require.Empty(t, v.Duplicates)
}

func TestDefaultCatalog_WellFormed(t *testing.T) {
	for _, tp := range Default().All() {
		require.NotEmpty(t, tp.ID)
		require.NotEmpty(t, tp.Title, tp.ID)
		require.NotEmpty(t, tp.Text, tp.ID)
		require.NotEmpty(t, tp.DietTypes, tp.ID)
		for _, d := range tp.DietTypes {
			_, err := ParseDietType(string(d))
			require.NoError(t, err, tp.ID)
		}
		for _, g := range tp.GoalTypes {
			_, err := metabolism.ParseGoalType(string(g))
			require.NoError(t, err, tp.ID)
		}
	}
}

// TestDefaultCatalog_EveryDietCovered makes sure no diet/goal pair is left
// without a single applicable tip.
func TestDefaultCatalog_EveryDietCovered(t *testing.T) {
	for _, d := range DietTypes {
		for _, g := range metabolism.GoalTypes {
			require.NotEmpty(t, Default().Applicable(d, g), "%s/%s", d, g)
		}
	}
}

func TestCatalog_ValidateReportsDuplicatesOnce(t *testing.T) {
	c := NewCatalog(
		[]Tip{tip("x", Keto), tip("y", Keto)},
		[]Tip{tip("x", Vegan), tip("x", Paleo), tip("z", Keto), tip("y", Keto)},
	)
	v := c.Validate()
	require.False(t, v.Valid)
	require.Equal(t, []string{"x", "y"}, v.Duplicates)

	first, ok := c.Lookup("x")
	require.True(t, ok)
	require.Equal(t, []DietType{Keto}, first.DietTypes)
}

func TestCatalog_StatsAndGrouping(t *testing.T) {
	c := Default()
	s := c.Stats()
	require.Equal(t, len(c.All()), s.Total)

	sum := 0
	for cat, list := range c.ByCategory() {
		require.Equal(t, len(list), s.ByCategory[cat])
		sum += len(list)
	}
	require.Equal(t, s.Total, sum)
	require.Len(t, c.ByCategory(), 5)
}

func TestTip_AppliesTo(t *testing.T) {
	lose := Tip{ID: "t", DietTypes: []DietType{Keto}, GoalTypes: []metabolism.GoalType{metabolism.LoseWeight}}
	require.True(t, lose.AppliesTo(Keto, metabolism.LoseWeight))
	require.False(t, lose.AppliesTo(Keto, metabolism.GainWeight))
	require.False(t, lose.AppliesTo(Vegan, metabolism.LoseWeight))
	require.True(t, lose.AppliesTo(Keto, ""), "users without a goal see goal-specific tips")

	all := Tip{ID: "u", DietTypes: []DietType{Keto}}
	require.True(t, all.AppliesTo(Keto, metabolism.GainWeight))
}

func TestParseDietType(t *testing.T) {
	d, err := ParseDietType("mediterranean")
	require.NoError(t, err)
	require.Equal(t, Mediterranean, d)

	_, err = ParseDietType("carnivore")
	require.Error(t, err)
}
