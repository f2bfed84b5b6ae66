// Package tips picks a personalized nutrition "tip of the day" from a static
// catalog and remembers the choice per user for the rest of the calendar day.
package tips

import (
	"fmt"
	"slices"

	"github.com/CODE-DK/nutritionist/internal/metabolism"
)

// DietType is the eating pattern chosen during onboarding.
type DietType string

const (
	Balanced            DietType = "balanced"
	CalorieDeficit      DietType = "calorie_deficit"
	Keto                DietType = "keto"
	LowCarb             DietType = "low_carb"
	HighProtein         DietType = "high_protein"
	Mediterranean       DietType = "mediterranean"
	IntermittentFasting DietType = "intermittent_fasting"
	Paleo               DietType = "paleo"
	Vegan               DietType = "vegan"
	Vegetarian          DietType = "vegetarian"
)

// DietTypes lists every diet type.
var DietTypes = []DietType{
	Balanced, CalorieDeficit, Keto, LowCarb, HighProtein,
	Mediterranean, IntermittentFasting, Paleo, Vegan, Vegetarian,
}

// ParseDietType validates s against DietTypes.
func ParseDietType(s string) (DietType, error) {
	if !slices.Contains(DietTypes, DietType(s)) {
		return "", fmt.Errorf("diet_type %q is not supported", s)
	}
	return DietType(s), nil
}

// Category groups tips in the catalog.
type Category string

const (
	Nutrition    Category = "nutrition"
	Hydration    Category = "hydration"
	MealTiming   Category = "meal_timing"
	FoodBenefits Category = "food_benefits"
	General      Category = "general"
)

// Tip is one catalog entry. A nil GoalTypes means the tip applies to every goal.
type Tip struct {
	ID        string                `json:"id"`
	Category  Category              `json:"category"`
	DietTypes []DietType            `json:"diet_types"`
	GoalTypes []metabolism.GoalType `json:"goal_types,omitempty"`
	Title     string                `json:"title"`
	Text      string                `json:"text"`
	Emoji     string                `json:"emoji,omitempty"`
}

// AppliesTo reports whether the tip fits diet and goal. An empty goal matches
// every tip, since the user has not picked one yet.
func (t Tip) AppliesTo(diet DietType, goal metabolism.GoalType) bool {
	if !slices.Contains(t.DietTypes, diet) {
		return false
	}
	return t.GoalTypes == nil || goal == "" || slices.Contains(t.GoalTypes, goal)
}

// Catalog is an immutable tip list with an id index.
type Catalog struct {
	tips       []Tip
	byID       map[string]Tip
	byCategory map[Category][]Tip
}

// Validation is the result of Catalog.Validate.
type Validation struct {
	Valid      bool     `json:"is_valid"`
	Duplicates []string `json:"duplicates"`
}

// Stats counts tips overall and per category.
type Stats struct {
	Total      int              `json:"total"`
	ByCategory map[Category]int `json:"by_category"`
}

// NewCatalog concatenates lists in order. With duplicate ids, Lookup returns
// the first occurrence; Validate reports the duplicates.
func NewCatalog(lists ...[]Tip) *Catalog {
	c := &Catalog{
		byID:       make(map[string]Tip),
		byCategory: make(map[Category][]Tip),
	}
	for _, list := range lists {
		for _, t := range list {
			c.tips = append(c.tips, t)
			if _, seen := c.byID[t.ID]; !seen {
				c.byID[t.ID] = t
			}
			c.byCategory[t.Category] = append(c.byCategory[t.Category], t)
		}
	}
	return c
}

var defaultCatalog = NewCatalog(
	nutritionTips,
	hydrationTips,
	mealTimingTips,
	foodBenefitsTips,
	generalTips,
)

// Default returns the built-in catalog.
func Default() *Catalog { return defaultCatalog }

// All returns a copy of every tip in catalog order.
func (c *Catalog) All() []Tip { return slices.Clone(c.tips) }

// ByCategory returns a copy of the per-category grouping.
func (c *Catalog) ByCategory() map[Category][]Tip {
	out := make(map[Category][]Tip, len(c.byCategory))
	for cat, list := range c.byCategory {
		out[cat] = slices.Clone(list)
	}
	return out
}

// Lookup finds a tip by id.
func (c *Catalog) Lookup(id string) (Tip, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// Stats counts tips overall and per category.
func (c *Catalog) Stats() Stats {
	s := Stats{Total: len(c.tips), ByCategory: make(map[Category]int, len(c.byCategory))}
	for cat, list := range c.byCategory {
		s.ByCategory[cat] = len(list)
	}
	return s
}

// Validate checks that every id is unique. Each duplicated id is listed once.
func (c *Catalog) Validate() Validation {
	counts := make(map[string]int, len(c.tips))
	dups := []string{}
	for _, t := range c.tips {
		counts[t.ID]++
		if counts[t.ID] == 2 {
			dups = append(dups, t.ID)
		}
	}
	return Validation{Valid: len(dups) == 0, Duplicates: dups}
}

// Applicable returns the tips that fit diet and goal, in catalog order.
func (c *Catalog) Applicable(diet DietType, goal metabolism.GoalType) []Tip {
	var out []Tip
	for _, t := range c.tips {
		if t.AppliesTo(diet, goal) {
			out = append(out, t)
		}
	}
	return out
}
