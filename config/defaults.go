package config

// Default returns the vocabulary observed on the hospitality menu page. The
// station list and skip patterns track the page's wording and need updating
// when it changes.
func Default() *Config {
	return &Config{
		MenuURL: MENU_URL,
		Halls: []HallProfile{
			{
				Name:        "USC Village Dining Hall",
				Slug:        "village",
				TabLabel:    "USC Village",
				StationName: "EXPO",
				StationSlug: "expo",
				Targeting:   Targeting{Kind: TargetExactName},
			},
			{
				Name:        "Parkside Restaurant & Grill",
				Slug:        "parkside",
				TabLabel:    "Parkside",
				StationName: "BISTRO",
				StationSlug: "bistro",
				Targeting:   Targeting{Kind: TargetExactName},
			},
			{
				Name:        "Everybody's Kitchen",
				Slug:        "evk",
				TabLabel:    "Everybody",
				StationName: "BAR",
				StationSlug: "bar-of-the-day",
				Targeting: Targeting{
					Kind:    TargetSuffixBar,
					Exclude: []string{"SALAD", "DELI", "WAFFLE", "BREAKFAST"},
				},
			},
		},
		Stations: []string{
			"EXPO", "BISTRO", "FLAME", "GLOBAL", "GRILL", "HOME", "PIZZA", "SOUP",
			"SALAD", "DELI", "BAKERY", "BEVERAGE", "DESSERT", "FRESH", "HOT LINE",
			"MADE TO ORDER", "GRIDDLE", "WHOLESOME", "SIMMER", "ACTION", "PLANT BASED",
			"CHEF TABLE", "CHEF'S TABLE", "MONGOLIAN", "WOK", "TAQUERIA", "COMFORT",
			"HARVEST", "ROOTS", "WORLD", "CUCINA", "STEAM", "FIRED", "CRAFT",
			"FLEXITARIAN", "CREPES", "SALAD BAR", "DELI BAR", "BREAKFAST/DESSERT/FRUIT",
			"FRESH FROM THE FARM", "QUESADILLA BAR", "EURASIA",
		},
		MealPeriods: []string{"Breakfast", "Lunch", "Dinner"},
		SkipPatterns: []string{
			`(?i)^dairy$`, `(?i)^eggs$`, `(?i)^fish$`, `(?i)^gluten$`, `(?i)^peanuts$`,
			`(?i)^pork$`, `(?i)^sesame$`, `(?i)^shellfish$`, `(?i)^soy$`, `(?i)^tree nuts$`,
			`(?i)^gluten/wheat$`, `(?i)^food not analyzed`,
			`(?i)^halal ingredients$`, `(?i)^vegan$`, `(?i)^vegetarian$`,
			`(?i)^(contains|may contain|allergen)`,
			`(?i)^(menu|filter|all|hide|show|view|items|preferences)`,
			`(?i)^(skip to content|search|home)$`,
			`(?i)^(feedback|privacy|copyright|sign up|digital access)`,
			`^\d+$`,
			`^[•\-\*\s]+$`,
			`©`,
			`(?i)^All Menus$`, `(?i)^Breakfast Menu$`, `(?i)^Brunch Menu$`, `(?i)^Lunch Menu$`, `(?i)^Dinner Menu$`,
		},
		Timing: Timing{
			PageLoadTimeoutMs: 60_000,
			PageSettleMs:      3_000,
			TabSettleMs:       2_500,
			DateSettleMs:      1_500,
		},
	}
}
