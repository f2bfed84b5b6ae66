package main

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/CODE-DK/nutritionist/internal/metabolism"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns into DateOnly.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID               string     `json:"id" db:"id"`
	Email            string     `json:"email" db:"email"`
	Name             *string    `json:"name" db:"name"`
	AuthToken        string     `json:"-" db:"auth_token"`
	Password         string     `json:"-" db:"password"`
	SubscriptionTier string     `json:"subscription_tier" db:"subscription_tier"`
	CreatedAt        *time.Time `json:"created_at" db:"created_at"`
}

// userProfile maps to user_profiles: the onboarding answers plus the stored
// daily calorie goal. Physical fields stay nil until onboarding fills them.
type userProfile struct {
	UserID             string     `json:"user_id"             db:"user_id"`
	Gender             *string    `json:"gender"              db:"gender"`
	Age                *int       `json:"age"                 db:"age"`
	HeightCM           *int       `json:"height"              db:"height_cm"`
	WeightKG           *float64   `json:"weight"              db:"weight_kg"`
	ActivityLevel      *string    `json:"activity_level"      db:"activity_level"`
	GoalType           *string    `json:"goal_type"           db:"goal_type"`
	DietType           *string    `json:"diet_type"           db:"diet_type"`
	TargetWeightKG     *float64   `json:"target_weight"       db:"target_weight_kg"`
	DailyCalorieGoal   int        `json:"daily_calorie_goal"  db:"daily_calorie_goal"`
	ShowDailyTips      bool       `json:"show_daily_tips"     db:"show_daily_tips"`
	OnboardingComplete bool       `json:"onboarding_complete" db:"onboarding_complete"`
	UpdatedAt          *time.Time `json:"updated_at"          db:"updated_at"`

	// Computed is filled server-side when every physical field is present.
	Computed *computedCalories `json:"computed,omitempty" db:"-"`
}

// computedCalories is the metabolism summary attached to profile responses.
type computedCalories struct {
	metabolism.Result
	WeeklyChangeKG float64 `json:"weekly_change_kg"`
	WeeksToGoal    int     `json:"weeks_to_goal"`
}

// foodEntry maps to food_entries. Macros and photo fields are nullable.
type foodEntry struct {
	ID           int        `json:"id"            db:"id"`
	UserID       string     `json:"user_id"       db:"user_id"`
	Date         DateOnly   `json:"date"          db:"date"`
	MealType     string     `json:"meal_type"     db:"meal_type"`
	Name         string     `json:"name"          db:"name"`
	Calories     int        `json:"calories"      db:"calories"`
	ProteinG     *float64   `json:"protein"       db:"protein_g"`
	CarbsG       *float64   `json:"carbs"         db:"carbs_g"`
	FatG         *float64   `json:"fat"           db:"fat_g"`
	PhotoURL     *string    `json:"photo_url"     db:"photo_url"`
	AIConfidence *float64   `json:"ai_confidence" db:"ai_confidence"`
	AIReasoning  *string    `json:"ai_reasoning"  db:"ai_reasoning"`
	CreatedAt    *time.Time `json:"created_at"    db:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"    db:"updated_at"`
}

// dailyStats is the response shape for GET /api/diary/daily.
type dailyStats struct {
	Date           string         `json:"date"`
	TotalCalories  int            `json:"total_calories"`
	TotalProtein   float64        `json:"total_protein"`
	TotalCarbs     float64        `json:"total_carbs"`
	TotalFat       float64        `json:"total_fat"`
	CalorieGoal    int            `json:"calorie_goal"`
	CaloriesLeft   int            `json:"calories_left"`
	CaloriesByMeal map[string]int `json:"calories_by_meal"`
	Meals          []foodEntry    `json:"meals"`
}

// chatMessage maps to chat_history: one user message and the assistant reply.
type chatMessage struct {
	ID         string     `json:"id"          db:"id"`
	UserID     string     `json:"user_id"     db:"user_id"`
	Message    string     `json:"message"     db:"message"`
	Response   string     `json:"response"    db:"response"`
	TokensUsed int        `json:"tokens_used" db:"tokens_used"`
	CreatedAt  *time.Time `json:"created_at"  db:"created_at"`
}

/* ─── Request bodies ─────────────────────────────────────────────────── */

// createFoodEntryRequest is the request body for POST /api/diary/entries.
type createFoodEntryRequest struct {
	Date         string   `json:"date"`
	MealType     string   `json:"meal_type"`
	Name         string   `json:"name"`
	Calories     int      `json:"calories"`
	ProteinG     *float64 `json:"protein"`
	CarbsG       *float64 `json:"carbs"`
	FatG         *float64 `json:"fat"`
	AIConfidence *float64 `json:"ai_confidence"`
	AIReasoning  *string  `json:"ai_reasoning"`
}

// patchProfileRequest is the request body for PATCH /api/profile.
// All fields are pointers; only non-nil fields get written.
type patchProfileRequest struct {
	Gender             *string  `json:"gender"`
	Age                *int     `json:"age"`
	HeightCM           *int     `json:"height"`
	WeightKG           *float64 `json:"weight"`
	ActivityLevel      *string  `json:"activity_level"`
	GoalType           *string  `json:"goal_type"`
	DietType           *string  `json:"diet_type"`
	TargetWeightKG     *float64 `json:"target_weight"`
	DailyCalorieGoal   *int     `json:"daily_calorie_goal"`
	ShowDailyTips      *bool    `json:"show_daily_tips"`
	OnboardingComplete *bool    `json:"onboarding_complete"`
}
