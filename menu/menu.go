package menu

// MealPeriod is the lower-cased meal label a dish was observed under.
type MealPeriod = string

const (
	Breakfast MealPeriod = "breakfast"
	Lunch     MealPeriod = "lunch"
	Dinner    MealPeriod = "dinner"
)

// Served reports whether dishes observed under the meal period are kept.
// Breakfast stations are not tracked.
func Served(meal MealPeriod) bool {
	return meal == Lunch || meal == Dinner
}

// ScrapedDish is one dish extracted from a hall's menu text.
type ScrapedDish struct {
	// Hall is the dining hall slug.
	Hall string `json:"hall"`
	// Station is the station slug.
	Station string `json:"station"`
	// Name is the dish name as displayed on the page.
	Name        string     `json:"name"`
	Ingredients []string   `json:"ingredients"`
	MealPeriod  MealPeriod `json:"mealPeriod"`
}

// Deduplicate keeps the first dish for every distinct name, in emission order.
// Meal periods are parsed in page order, so a lunch entry wins over a dinner
// entry with the same name.
func Deduplicate(dishes []ScrapedDish) []ScrapedDish {
	seen := make(map[string]struct{}, len(dishes))
	unique := make([]ScrapedDish, 0, len(dishes))

	for _, dish := range dishes {
		if _, ok := seen[dish.Name]; ok {
			continue
		}

		seen[dish.Name] = struct{}{}
		unique = append(unique, dish)
	}

	return unique
}
