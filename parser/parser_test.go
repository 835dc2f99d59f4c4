package parser

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uscdining/dishwatch/config"
	"github.com/uscdining/dishwatch/menu"
)

func newParser(t *testing.T, slug string) *Parser {
	t.Helper()

	cfg := config.Default()
	vocab, err := cfg.Vocabulary()
	require.NoError(t, err)

	hall, ok := cfg.Hall(slug)
	require.True(t, ok)

	return New(vocab, hall)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		hall     string
		lines    []string
		expected []menu.ScrapedDish
	}{
		{
			name:  "exact station name",
			hall:  "village",
			lines: []string{"Lunch", "EXPO", "Grilled Salmon", "Salmon", "Lemon", "Dinner"},
			expected: []menu.ScrapedDish{
				{Hall: "village", Station: "expo", Name: "Grilled Salmon", Ingredients: []string{"Salmon", "Lemon"}, MealPeriod: menu.Lunch},
			},
		},
		{
			name:  "bar header is the dish name",
			hall:  "evk",
			lines: []string{"Lunch", "QUESADILLA BAR", "Cheese", "Salsa"},
			expected: []menu.ScrapedDish{
				{Hall: "evk", Station: "bar-of-the-day", Name: "QUESADILLA BAR", Ingredients: []string{"Cheese", "Salsa"}, MealPeriod: menu.Lunch},
			},
		},
		{
			name:     "excluded bar is never the target",
			hall:     "evk",
			lines:    []string{"Lunch", "SALAD BAR", "Romaine Hearts", "Croutons", "Dinner", "DELI BAR", "Turkey Club", "WAFFLE BAR", "Syrup"},
			expected: []menu.ScrapedDish{},
		},
		{
			name:  "allergen words are dropped",
			hall:  "village",
			lines: []string{"Lunch", "EXPO", "dairy", "Beef Lasagna", "dairy", "Ricotta", "Gluten"},
			expected: []menu.ScrapedDish{
				{Hall: "village", Station: "expo", Name: "Beef Lasagna", Ingredients: []string{"Ricotta"}, MealPeriod: menu.Lunch},
			},
		},
		{
			name:     "no meal period means no dishes",
			hall:     "village",
			lines:    []string{"EXPO", "Grilled Salmon", "Salmon", "Lemon"},
			expected: []menu.ScrapedDish{},
		},
		{
			name:     "breakfast is discarded",
			hall:     "village",
			lines:    []string{"Breakfast", "EXPO", "Omelette Bar", "Eggs", "Cheddar"},
			expected: []menu.ScrapedDish{},
		},
		{
			name:  "breakfast dish is dropped at the lunch boundary",
			hall:  "parkside",
			lines: []string{"Breakfast", "BISTRO", "French Toast", "Brioche", "Lunch", "BISTRO", "Chicken Pesto Pasta", "Penne", "Basil Pesto"},
			expected: []menu.ScrapedDish{
				{Hall: "parkside", Station: "bistro", Name: "Chicken Pesto Pasta", Ingredients: []string{"Penne", "Basil Pesto"}, MealPeriod: menu.Lunch},
			},
		},
		{
			name: "lunch and dinner",
			hall: "village",
			lines: []string{
				"Lunch", "GRILL", "Cheeseburger", "Bun", "EXPO", "Grilled Salmon", "Salmon", "GRILL", "Hot Dog",
				"Dinner", "EXPO", "Grilled Salmon", "Salmon", "Dill",
			},
			expected: []menu.ScrapedDish{
				{Hall: "village", Station: "expo", Name: "Grilled Salmon", Ingredients: []string{"Salmon"}, MealPeriod: menu.Lunch},
				{Hall: "village", Station: "expo", Name: "Grilled Salmon", Ingredients: []string{"Salmon", "Dill"}, MealPeriod: menu.Dinner},
			},
		},
		{
			name:  "station with suffix is a header but not the target",
			hall:  "village",
			lines: []string{"Lunch", "EXPO", "Pad Thai", "Rice Noodles", "GRILL STATION", "Burger", "Beef"},
			expected: []menu.ScrapedDish{
				{Hall: "village", Station: "expo", Name: "Pad Thai", Ingredients: []string{"Rice Noodles"}, MealPeriod: menu.Lunch},
			},
		},
		{
			name:  "unknown bar is plain content outside suffix-bar halls",
			hall:  "village",
			lines: []string{"Lunch", "EXPO", "Pad Thai", "TACO BAR", "Peanuts"},
			expected: []menu.ScrapedDish{
				{Hall: "village", Station: "expo", Name: "Pad Thai", Ingredients: []string{"TACO BAR"}, MealPeriod: menu.Lunch},
			},
		},
		{
			name:  "rotating bar not in the station list",
			hall:  "evk",
			lines: []string{"Dinner", "PHO BAR", "Rice Noodles", "Beef Broth", "SALAD BAR", "Spinach"},
			expected: []menu.ScrapedDish{
				{Hall: "evk", Station: "bar-of-the-day", Name: "PHO BAR", Ingredients: []string{"Rice Noodles", "Beef Broth"}, MealPeriod: menu.Dinner},
			},
		},
		{
			name:  "single upper case word is not a dish name",
			hall:  "village",
			lines: []string{"Lunch", "EXPO", "TACOS", "Beef Tacos", "Tortilla"},
			expected: []menu.ScrapedDish{
				{Hall: "village", Station: "expo", Name: "Beef Tacos", Ingredients: []string{"Tortilla"}, MealPeriod: menu.Lunch},
			},
		},
		{
			name:  "only the first dish-like line names the dish",
			hall:  "village",
			lines: []string{"Lunch", "EXPO", "Grilled Salmon", "Roasted Potatoes", "Green Beans"},
			expected: []menu.ScrapedDish{
				{Hall: "village", Station: "expo", Name: "Grilled Salmon", Ingredients: []string{"Roasted Potatoes", "Green Beans"}, MealPeriod: menu.Lunch},
			},
		},
		{
			name:  "ui chrome is skipped",
			hall:  "village",
			lines: []string{"Lunch", "EXPO", "Menu Filters", "Show Allergens", "Katsu Curry", "12", "•", "Rice", "© 2025 USC Hospitality"},
			expected: []menu.ScrapedDish{
				{Hall: "village", Station: "expo", Name: "Katsu Curry", Ingredients: []string{"Rice"}, MealPeriod: menu.Lunch},
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := newParser(t, test.hall)
			require.Equal(t, test.expected, p.Parse(test.lines))
		})
	}
}

func TestLengthBounds(t *testing.T) {
	p := newParser(t, "village")

	// dish names must be longer than 3 characters
	dishes := p.Parse([]string{"Lunch", "EXPO", "Pho", "Rice", "Oil", "Ox", strings.Repeat("a", 79), strings.Repeat("b", 80)})
	require.Equal(t, []menu.ScrapedDish{
		{Hall: "village", Station: "expo", Name: "Rice", Ingredients: []string{"Oil", strings.Repeat("a", 79)}, MealPeriod: menu.Lunch},
	}, dishes)

	// and shorter than 60
	long := "Slow Roasted " + strings.Repeat("x", 47)
	require.Len(t, long, 60)
	dishes = p.Parse([]string{"Lunch", "EXPO", long, "Pasta Primavera", "Zucchini"})
	require.Equal(t, "Pasta Primavera", dishes[0].Name)
}

func TestLengthCountsCharacters(t *testing.T) {
	p := newParser(t, "village")

	// "Phở" is three characters but five bytes, so it is not a dish name
	dishes := p.Parse([]string{"Lunch", "EXPO", "Phở", "Cơm Gà", "Bún"})
	require.Len(t, dishes, 1)
	require.Equal(t, "Cơm Gà", dishes[0].Name)
	require.Equal(t, []string{"Bún"}, dishes[0].Ingredients)
}

func TestStepDoesNotMutatePreviousState(t *testing.T) {
	p := newParser(t, "village")

	var s State
	for _, line := range []string{"Lunch", "EXPO", "Grilled Salmon", "Salmon"} {
		s, _ = p.Step(s, line)
	}

	before := s
	after, flushed := p.Step(s, "Lemon")
	require.Nil(t, flushed)

	_, beforeIngredients, ok := before.Pending()
	require.True(t, ok)
	require.Equal(t, []string{"Salmon"}, beforeIngredients)

	name, afterIngredients, ok := after.Pending()
	require.True(t, ok)
	require.Equal(t, "Grilled Salmon", name)
	require.Equal(t, []string{"Salmon", "Lemon"}, afterIngredients)
}

func TestStepTransitions(t *testing.T) {
	p := newParser(t, "evk")

	s, dish := p.Step(State{}, "Lunch")
	require.Nil(t, dish)
	require.Equal(t, State{Meal: menu.Lunch}, s)

	s, dish = p.Step(s, "TACO BAR")
	require.Nil(t, dish)
	require.True(t, s.InTarget)
	require.True(t, s.FoundName)

	s, _ = p.Step(s, "Carnitas")
	s, dish = p.Step(s, "BAKERY")
	require.NotNil(t, dish)
	require.Equal(t, "TACO BAR", dish.Name)
	require.Equal(t, []string{"Carnitas"}, dish.Ingredients)
	require.False(t, s.InTarget)
	require.False(t, s.FoundName)
	_, _, ok := s.Pending()
	require.False(t, ok)

	// content outside the target is ignored without changing state
	next, dish := p.Step(s, "Croissant")
	require.Nil(t, dish)
	require.Equal(t, s, next)
}

var (
	fuzzMeals    = []string{"Breakfast", "Lunch", "Dinner"}
	fuzzHeaders  = []string{"EXPO", "BISTRO", "GRILL", "SALAD BAR", "QUESADILLA BAR", "PHO BAR", "WAFFLE BAR", "DELI"}
	fuzzContents = []string{
		"Grilled Salmon", "Beef Tacos", "Salmon", "Lemon", "Rice", "dairy", "Menu", "12", "TACOS",
		"Ox", "Chicken Pesto Pasta", "Green Beans", "Vegan", "© USC", "Roasted Potatoes",
	}
)

func randomLines(r *rand.Rand) []string {
	n := r.Intn(60)
	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		switch k := r.Intn(10); {
		case k == 0:
			lines = append(lines, fuzzMeals[r.Intn(len(fuzzMeals))])
		case k < 3:
			lines = append(lines, fuzzHeaders[r.Intn(len(fuzzHeaders))])
		default:
			lines = append(lines, fuzzContents[r.Intn(len(fuzzContents))])
		}
	}
	return lines
}

func isSubsequence(sub, of []string) bool {
	i := 0
	for _, s := range of {
		if i < len(sub) && sub[i] == s {
			i++
		}
	}
	return i == len(sub)
}

func TestRandomSequences(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for _, slug := range []string{"village", "parkside", "evk"} {
		p := newParser(t, slug)

		for i := 0; i < 500; i++ {
			lines := randomLines(r)

			// dishes are only ever lunch or dinner
			for _, dish := range p.Parse(lines) {
				require.True(t, menu.Served(dish.MealPeriod), dish.MealPeriod)
			}

			// ingredients come from between the dish's name line and the line
			// that completed it, with no section boundary in between
			var s State
			start := -1
			for idx, line := range append(lines, "Breakfast") {
				prevDish := s.current
				var dish *menu.ScrapedDish
				s, dish = p.Step(s, line)

				if dish != nil {
					require.GreaterOrEqual(t, start, 0)
					window := lines[start+1 : idx]
					require.True(t, isSubsequence(dish.Ingredients, window), "%v not in %v", dish.Ingredients, window)
					for _, between := range window {
						require.False(t, p.vocab.IsMealPeriod(between))
						require.False(t, p.isStationHeader(between, strings.ToUpper(between)))
					}
				}

				if s.current != nil && s.current != prevDish && len(s.current.ingredients) == 0 {
					start = idx
				}
			}
		}
	}
}

func TestSuggest(t *testing.T) {
	p := newParser(t, "village")

	lines := []string{"Lunch", "EXPO2", "GRILL", "Grilled Salmon", "EXPO2", "Expo"}
	require.Equal(t, []string{"EXPO2"}, suggestionLines(p.Suggest(lines, 3)))
	require.Empty(t, p.Suggest([]string{"Lunch", "EXPO"}, 3))
}

func suggestionLines(suggestions []Suggestion) []string {
	lines := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		lines = append(lines, s.Line)
	}
	return lines
}
