package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

const dateLayout = "2006-01-02"

// validMealTypes mirrors the meal_type CHECK constraint on food_entries.
var validMealTypes = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"dinner":    true,
	"snack":     true,
}

// summarizeDay totals entries against goal. Calories left may go negative.
func summarizeDay(date string, goal int, entries []foodEntry) dailyStats {
	s := dailyStats{
		Date:           date,
		CalorieGoal:    goal,
		CaloriesByMeal: map[string]int{"breakfast": 0, "lunch": 0, "dinner": 0, "snack": 0},
		Meals:          entries,
	}
	if s.Meals == nil {
		s.Meals = []foodEntry{}
	}
	for _, e := range entries {
		s.TotalCalories += e.Calories
		s.CaloriesByMeal[e.MealType] += e.Calories
		if e.ProteinG != nil {
			s.TotalProtein += *e.ProteinG
		}
		if e.CarbsG != nil {
			s.TotalCarbs += *e.CarbsG
		}
		if e.FatG != nil {
			s.TotalFat += *e.FatG
		}
	}
	s.CaloriesLeft = goal - s.TotalCalories
	return s
}

// getDailyStats returns the day's food entries with totals against the
// user's calorie goal.
// GET /api/diary/daily?date=YYYY-MM-DD (defaults to today, UTC).
func (h *Handler) getDailyStats(c *gin.Context) {
	userID := c.GetString("user_id")
	date := c.DefaultQuery("date", time.Now().UTC().Format(dateLayout))

	if _, err := time.Parse(dateLayout, date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	entries, err := queryMany[foodEntry](h.db, c,
		`SELECT * FROM food_entries
		 WHERE user_id = @userID AND date = @date
		 ORDER BY created_at`,
		pgx.NamedArgs{"userID": userID, "date": date})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch entries")
		return
	}

	p, err := h.accounts.Profile(c, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	c.JSON(http.StatusOK, summarizeDay(date, p.DailyCalorieGoal, entries))
}

// createFoodEntry inserts a new diary entry.
// POST /api/diary/entries. Defaults date to today if omitted.
func (h *Handler) createFoodEntry(c *gin.Context) {
	userID := c.GetString("user_id")

	var body createFoodEntryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Name == "" {
		apiError(c, http.StatusBadRequest, "name is required")
		return
	}
	if !validMealTypes[body.MealType] {
		apiError(c, http.StatusBadRequest, "meal_type must be one of: breakfast, lunch, dinner, snack")
		return
	}
	if body.Calories < 0 {
		apiError(c, http.StatusBadRequest, "calories must not be negative")
		return
	}
	if body.Date == "" {
		body.Date = time.Now().UTC().Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, body.Date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	entry, err := queryOne[foodEntry](h.db, c,
		`INSERT INTO food_entries (user_id, date, meal_type, name, calories, protein_g, carbs_g, fat_g, ai_confidence, ai_reasoning)
		 VALUES (@userID, @date, @mealType, @name, @calories, @proteinG, @carbsG, @fatG, @aiConfidence, @aiReasoning)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": userID, "date": body.Date, "mealType": body.MealType,
			"name": body.Name, "calories": body.Calories,
			"proteinG": body.ProteinG, "carbsG": body.CarbsG, "fatG": body.FatG,
			"aiConfidence": body.AIConfidence, "aiReasoning": body.AIReasoning,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create entry")
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// updateFoodEntry updates an existing diary entry.
// PUT /api/diary/entries/:id. Omitted fields keep their current value.
func (h *Handler) updateFoodEntry(c *gin.Context) {
	userID := c.GetString("user_id")
	id := c.Param("id")

	var body struct {
		Date     *string  `json:"date"`
		MealType *string  `json:"meal_type"`
		Name     *string  `json:"name"`
		Calories *int     `json:"calories"`
		ProteinG *float64 `json:"protein"`
		CarbsG   *float64 `json:"carbs"`
		FatG     *float64 `json:"fat"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.MealType != nil && !validMealTypes[*body.MealType] {
		apiError(c, http.StatusBadRequest, "meal_type must be one of: breakfast, lunch, dinner, snack")
		return
	}
	if body.Date != nil {
		if _, err := time.Parse(dateLayout, *body.Date); err != nil {
			apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
	}

	entry, err := queryOne[foodEntry](h.db, c,
		`UPDATE food_entries SET
			date = COALESCE(@date, date),
			meal_type = COALESCE(@mealType, meal_type),
			name = COALESCE(@name, name),
			calories = COALESCE(@calories, calories),
			protein_g = COALESCE(@proteinG, protein_g),
			carbs_g = COALESCE(@carbsG, carbs_g),
			fat_g = COALESCE(@fatG, fat_g),
			updated_at = now()
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{
			"id": id, "userID": userID,
			"date": body.Date, "mealType": body.MealType, "name": body.Name,
			"calories": body.Calories, "proteinG": body.ProteinG,
			"carbsG": body.CarbsG, "fatG": body.FatG,
		})
	if err != nil {
		apiError(c, http.StatusNotFound, "entry not found")
		return
	}

	c.JSON(http.StatusOK, entry)
}

// deleteFoodEntry removes a diary entry. Returns 204 on success.
// DELETE /api/diary/entries/:id.
func (h *Handler) deleteFoodEntry(c *gin.Context) {
	userID := c.GetString("user_id")
	id := c.Param("id")

	result, err := h.db.Exec(c,
		"DELETE FROM food_entries WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete entry")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "entry not found")
		return
	}

	c.Status(http.StatusNoContent)
}
