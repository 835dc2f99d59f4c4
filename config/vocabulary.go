package config

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// Vocabulary is the compiled, read-only form of the config's word lists.
type Vocabulary struct {
	stations    []string
	mealPeriods map[string]struct{}
	skip        []*regexp.Regexp
}

// Vocabulary compiles the station names, meal labels and skip patterns.
func (c *Config) Vocabulary() (*Vocabulary, error) {
	v := &Vocabulary{
		stations:    make([]string, 0, len(c.Stations)),
		mealPeriods: make(map[string]struct{}, len(c.MealPeriods)),
		skip:        make([]*regexp.Regexp, 0, len(c.SkipPatterns)),
	}

	for _, station := range c.Stations {
		v.stations = append(v.stations, strings.ToUpper(station))
	}

	for _, meal := range c.MealPeriods {
		v.mealPeriods[meal] = struct{}{}
	}

	for _, pattern := range c.SkipPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "bad skip pattern %q", pattern)
		}
		v.skip = append(v.skip, re)
	}

	return v, nil
}

// IsMealPeriod reports whether line is exactly one of the meal labels.
func (v *Vocabulary) IsMealPeriod(line string) bool {
	_, ok := v.mealPeriods[line]
	return ok
}

// IsKnownStation reports whether an upper-cased line names a known station,
// either exactly or followed by a space and more text.
func (v *Vocabulary) IsKnownStation(upper string) bool {
	for _, station := range v.stations {
		if upper == station || strings.HasPrefix(upper, station+" ") {
			return true
		}
	}
	return false
}

// ShouldSkip reports whether line matches any skip pattern.
func (v *Vocabulary) ShouldSkip(line string) bool {
	for _, re := range v.skip {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
