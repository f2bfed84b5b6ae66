package tips

import "github.com/CODE-DK/nutritionist/internal/metabolism"

// allDiets is shorthand for tips that fit every eating pattern.
var allDiets = DietTypes

var (
	loseOnly = []metabolism.GoalType{metabolism.LoseWeight}
	gainOnly = []metabolism.GoalType{metabolism.GainWeight}
	notGain  = []metabolism.GoalType{metabolism.LoseWeight, metabolism.Maintain}
)

var nutritionTips = []Tip{
	{
		ID: "nutrition-protein-every-meal", Category: Nutrition,
		DietTypes: allDiets,
		Title:     "Protein at every meal",
		Text:      "Spreading 20-30 g of protein across meals keeps you fuller and protects muscle better than one large serving.",
		Emoji:     "🍗",
	},
	{
		ID: "nutrition-fiber-first", Category: Nutrition,
		DietTypes: []DietType{Balanced, CalorieDeficit, Mediterranean, Vegan, Vegetarian},
		GoalTypes: notGain,
		Title:     "Start with vegetables",
		Text:      "Eating the fiber part of your plate first slows digestion and makes portion control easier.",
		Emoji:     "🥦",
	},
	{
		ID: "nutrition-keto-electrolytes", Category: Nutrition,
		DietTypes: []DietType{Keto, LowCarb},
		Title:     "Mind your electrolytes",
		Text:      "Low-carb eating flushes sodium and potassium. Salted broth, avocado and leafy greens help avoid the keto flu.",
		Emoji:     "🧂",
	},
	{
		ID: "nutrition-plant-protein-combos", Category: Nutrition,
		DietTypes: []DietType{Vegan, Vegetarian},
		Title:     "Combine plant proteins",
		Text:      "Legumes with grains, like lentils and rice, give a complete amino acid profile over the day.",
		Emoji:     "🫘",
	},
	{
		ID: "nutrition-b12", Category: Nutrition,
		DietTypes: []DietType{Vegan},
		Title:     "Don't forget B12",
		Text:      "Vitamin B12 is not reliably found in plant foods. Fortified foods or a supplement cover it.",
		Emoji:     "💊",
	},
	{
		ID: "nutrition-calorie-dense-snacks", Category: Nutrition,
		DietTypes: allDiets,
		GoalTypes: gainOnly,
		Title:     "Calorie-dense snacks",
		Text:      "Nuts, nut butters and dried fruit add energy without a lot of volume when you need a surplus.",
		Emoji:     "🥜",
	},
	{
		ID: "nutrition-high-protein-kidneys", Category: Nutrition,
		DietTypes: []DietType{HighProtein, Paleo},
		Title:     "Balance protein with plants",
		Text:      "A high-protein plate still needs vegetables and water; they support digestion and recovery.",
		Emoji:     "🥗",
	},
}

var hydrationTips = []Tip{
	{
		ID: "hydration-morning-glass", Category: Hydration,
		DietTypes: allDiets,
		Title:     "A glass after waking",
		Text:      "You lose water overnight. Drinking a glass first thing is an easy habit to build on.",
		Emoji:     "💧",
	},
	{
		ID: "hydration-thirst-or-hunger", Category: Hydration,
		DietTypes: allDiets,
		GoalTypes: loseOnly,
		Title:     "Thirst or hunger?",
		Text:      "Mild thirst often feels like hunger. Try water and wait ten minutes before a snack.",
		Emoji:     "🤔",
	},
	{
		ID: "hydration-fasting-window", Category: Hydration,
		DietTypes: []DietType{IntermittentFasting},
		Title:     "Hydrate while fasting",
		Text:      "Water, plain tea and black coffee keep you comfortable during the fasting window without breaking it.",
		Emoji:     "🍵",
	},
	{
		ID: "hydration-sugary-drinks", Category: Hydration,
		DietTypes: []DietType{Balanced, CalorieDeficit, LowCarb, Keto, Mediterranean},
		GoalTypes: notGain,
		Title:     "Watch liquid calories",
		Text:      "Juices and sodas add calories without keeping you full. Sparkling water with citrus is a good swap.",
		Emoji:     "🥤",
	},
}

var mealTimingTips = []Tip{
	{
		ID: "timing-regular-meals", Category: MealTiming,
		DietTypes: []DietType{Balanced, CalorieDeficit, HighProtein, Mediterranean, Paleo, Vegan, Vegetarian},
		Title:     "Keep a rhythm",
		Text:      "Eating at roughly the same times each day makes hunger more predictable and planning easier.",
		Emoji:     "⏰",
	},
	{
		ID: "timing-break-fast-gently", Category: MealTiming,
		DietTypes: []DietType{IntermittentFasting},
		Title:     "Break the fast gently",
		Text:      "Open your eating window with protein and vegetables rather than a large sugary meal.",
		Emoji:     "🍳",
	},
	{
		ID: "timing-late-snacking", Category: MealTiming,
		DietTypes: allDiets,
		GoalTypes: loseOnly,
		Title:     "Close the kitchen",
		Text:      "Setting a cut-off time for evening snacks removes a common source of extra calories.",
		Emoji:     "🌙",
	},
	{
		ID: "timing-post-workout", Category: MealTiming,
		DietTypes: []DietType{HighProtein, Balanced, Paleo},
		GoalTypes: []metabolism.GoalType{metabolism.GainWeight, metabolism.Maintain},
		Title:     "Refuel after training",
		Text:      "A meal with protein and carbs within a couple of hours after exercise supports recovery.",
		Emoji:     "🏋️",
	},
	{
		ID: "timing-extra-meal", Category: MealTiming,
		DietTypes: allDiets,
		GoalTypes: gainOnly,
		Title:     "Add a fourth meal",
		Text:      "If big portions are hard, an extra small meal makes a calorie surplus easier to reach.",
		Emoji:     "🍽️",
	},
}

var foodBenefitsTips = []Tip{
	{
		ID: "benefits-olive-oil", Category: FoodBenefits,
		DietTypes: []DietType{Mediterranean, Balanced, Keto, Paleo},
		Title:     "Extra virgin olive oil",
		Text:      "Rich in monounsaturated fat and polyphenols. Use it raw on salads to keep its flavor.",
		Emoji:     "🫒",
	},
	{
		ID: "benefits-oily-fish", Category: FoodBenefits,
		DietTypes: []DietType{Mediterranean, Balanced, Paleo, Keto, LowCarb, HighProtein},
		Title:     "Oily fish twice a week",
		Text:      "Salmon, sardines and mackerel provide omega-3 fats that most diets lack.",
		Emoji:     "🐟",
	},
	{
		ID: "benefits-legumes", Category: FoodBenefits,
		DietTypes: []DietType{Vegan, Vegetarian, Mediterranean, Balanced},
		Title:     "Love your legumes",
		Text:      "Beans, chickpeas and lentils combine protein and fiber and are cheap to cook in bulk.",
		Emoji:     "🫘",
	},
	{
		ID: "benefits-eggs", Category: FoodBenefits,
		DietTypes: []DietType{Vegetarian, Keto, LowCarb, HighProtein, Paleo, Balanced},
		Title:     "Eggs are versatile",
		Text:      "An egg has about 6 g of high-quality protein and fits breakfast, lunch or dinner.",
		Emoji:     "🥚",
	},
	{
		ID: "benefits-greek-yogurt", Category: FoodBenefits,
		DietTypes: []DietType{Vegetarian, HighProtein, Balanced, CalorieDeficit},
		Title:     "Greek yogurt",
		Text:      "Strained yogurt has roughly double the protein of regular yogurt for the same calories.",
		Emoji:     "🥛",
	},
	{
		ID: "benefits-berries", Category: FoodBenefits,
		DietTypes: allDiets,
		Title:     "Berries for sweetness",
		Text:      "Berries are low in sugar for a fruit and high in fiber, so they fit almost any plan.",
		Emoji:     "🫐",
	},
}

var generalTips = []Tip{
	{
		ID: "general-log-before-eating", Category: General,
		DietTypes: allDiets,
		Title:     "Log before you eat",
		Text:      "Logging a meal before eating it gives you a chance to adjust the portion.",
		Emoji:     "📝",
	},
	{
		ID: "general-sleep", Category: General,
		DietTypes: allDiets,
		Title:     "Sleep affects appetite",
		Text:      "Short sleep raises hunger hormones. Seven to nine hours makes sticking to a plan easier.",
		Emoji:     "😴",
	},
	{
		ID: "general-weigh-trends", Category: General,
		DietTypes: allDiets,
		GoalTypes: []metabolism.GoalType{metabolism.LoseWeight, metabolism.GainWeight},
		Title:     "Follow the trend",
		Text:      "Daily weight jumps with water and salt. Compare weekly averages instead of single days.",
		Emoji:     "📈",
	},
	{
		ID: "general-deficit-patience", Category: General,
		DietTypes: []DietType{CalorieDeficit, Balanced, LowCarb, Keto},
		GoalTypes: loseOnly,
		Title:     "Slow is sustainable",
		Text:      "Losing 0.5-1 kg per week preserves muscle and is easier to maintain than crash dieting.",
		Emoji:     "🐢",
	},
	{
		ID: "general-plan-weekly", Category: General,
		DietTypes: allDiets,
		Title:     "Plan the week",
		Text:      "Sketching meals for the week on Sunday cuts down on last-minute takeaway.",
		Emoji:     "🗓️",
	},
}
