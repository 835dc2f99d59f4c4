package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/uscdining/dishwatch/config"
	"github.com/uscdining/dishwatch/log"
	"github.com/uscdining/dishwatch/menu"
)

const (
	// Dish names are strictly longer than minDishName and shorter than maxDishName.
	minDishName = 3
	maxDishName = 60
	// Ingredients are at least minIngredient and shorter than maxIngredient.
	minIngredient = 3
	maxIngredient = 80
)

type pendingDish struct {
	name        string
	ingredients []string
}

// State is the parser's working memory between two lines. A State is never
// modified by Step; every step returns a new value.
type State struct {
	// Meal is the lower-cased current meal period, empty before the first meal label.
	Meal menu.MealPeriod
	// InTarget is set while inside the hall's target station section.
	InTarget bool
	// FoundName is set once the current station section has produced a dish name.
	FoundName bool

	current *pendingDish
}

// Pending returns the name and ingredients of the dish being built, if any.
func (s State) Pending() (string, []string, bool) {
	if s.current == nil {
		return "", nil, false
	}
	return s.current.name, s.current.ingredients, true
}

func (s State) withIngredient(line string) State {
	ingredients := make([]string, len(s.current.ingredients), len(s.current.ingredients)+1)
	copy(ingredients, s.current.ingredients)

	s.current = &pendingDish{
		name:        s.current.name,
		ingredients: append(ingredients, line),
	}
	return s
}

// Parser turns the visible text lines of one hall view into dishes.
type Parser struct {
	log   zerolog.Logger
	vocab *config.Vocabulary
	hall  config.HallProfile
}

func New(vocab *config.Vocabulary, hall config.HallProfile) *Parser {
	return &Parser{
		log:   log.NewLogger("parser").With().Str("hall", hall.Slug).Logger(),
		vocab: vocab,
		hall:  hall,
	}
}

// Parse scans lines once and returns the dishes of the hall's target station
// for lunch and dinner. Lines that match no rule are dropped.
func (p *Parser) Parse(lines []string) []menu.ScrapedDish {
	dishes := make([]menu.ScrapedDish, 0)

	var state State
	for _, line := range lines {
		var dish *menu.ScrapedDish
		state, dish = p.Step(state, line)
		if dish != nil {
			dishes = append(dishes, *dish)
		}
	}

	if dish := p.Flush(state); dish != nil {
		dishes = append(dishes, *dish)
	}

	return dishes
}

// Flush returns the pending dish as a completed record, or nil when there is
// none or the current meal period is not tracked.
func (p *Parser) Flush(s State) *menu.ScrapedDish {
	if s.current == nil || !menu.Served(s.Meal) {
		return nil
	}

	return &menu.ScrapedDish{
		Hall:        p.hall.Slug,
		Station:     p.hall.StationSlug,
		Name:        s.current.name,
		Ingredients: s.current.ingredients,
		MealPeriod:  s.Meal,
	}
}

// Step consumes one trimmed, non-empty line. It returns the next state and the
// dish completed by this line, if any.
func (p *Parser) Step(s State, line string) (State, *menu.ScrapedDish) {
	upper := strings.ToUpper(line)

	if p.vocab.IsMealPeriod(line) {
		flushed := p.Flush(s)
		next := State{Meal: strings.ToLower(line)}
		p.log.Debug().Str("meal", next.Meal).Msg("Meal period")
		return next, flushed
	}

	if p.isStationHeader(line, upper) {
		flushed := p.Flush(s)
		next := State{Meal: s.Meal}

		switch p.hall.Targeting.Kind {
		case config.TargetSuffixBar:
			if p.isTargetBar(upper) {
				// The bar's own header is the dish name.
				next.InTarget = true
				next.FoundName = true
				next.current = &pendingDish{name: line, ingredients: []string{}}
				p.log.Debug().Str("bar", line).Msg("Found target bar")
			}
		default:
			if upper == strings.ToUpper(p.hall.StationName) {
				next.InTarget = true
				p.log.Debug().Str("station", p.hall.StationName).Msg("Found target station")
			}
		}

		return next, flushed
	}

	if !s.InTarget || !menu.Served(s.Meal) || p.vocab.ShouldSkip(line) {
		return s, nil
	}

	length := utf8.RuneCountInString(line)

	if !s.FoundName && length > minDishName && length < maxDishName && looksLikeDishName(line, upper) {
		flushed := p.Flush(s)
		s.current = &pendingDish{name: line, ingredients: []string{}}
		s.FoundName = true
		p.log.Debug().Str("dish", line).Msg("Dish")
		return s, flushed
	}

	if s.current != nil && s.FoundName && length >= minIngredient && length < maxIngredient {
		p.log.Trace().Str("ingredient", line).Msg("Ingredient")
		return s.withIngredient(line), nil
	}

	return s, nil
}

// isStationHeader reports whether line is an all-caps station section header.
func (p *Parser) isStationHeader(line, upper string) bool {
	if line != upper {
		return false
	}

	if p.vocab.IsKnownStation(upper) {
		return true
	}

	return p.hall.Targeting.Kind == config.TargetSuffixBar && strings.HasSuffix(upper, " BAR")
}

// isTargetBar reports whether a header names a rotating bar rather than one of
// the excluded fixed bars.
func (p *Parser) isTargetBar(upper string) bool {
	if !strings.HasSuffix(upper, " BAR") && upper != "BAR" {
		return false
	}

	for _, word := range p.hall.Targeting.Exclude {
		if strings.Contains(upper, strings.ToUpper(word)) {
			return false
		}
	}

	return true
}

// looksLikeDishName separates dish titles from section labels: a title is
// mixed case or has more than one word.
func looksLikeDishName(line, upper string) bool {
	return line != upper || strings.Contains(line, " ")
}
