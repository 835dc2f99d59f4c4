package parser

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

// minSimilarity is the Jaro-Winkler score above which a header is reported as
// a possible rename of the target station.
const minSimilarity = 0.8

// Suggestion is an all-caps line that resembles the hall's target station.
type Suggestion struct {
	Line  string
	Score float64
}

// Suggest lists the all-caps lines of a hall view that look like renamed
// versions of the target station, best match first. It is meant for halls
// that produced no dishes; it never changes what Parse extracts.
func (p *Parser) Suggest(lines []string, limit int) []Suggestion {
	target := strings.ToUpper(p.hall.StationName)
	seen := make(map[string]struct{})
	suggestions := make([]Suggestion, 0)

	for _, line := range lines {
		upper := strings.ToUpper(line)
		if line != upper || upper == target || p.vocab.IsMealPeriod(line) {
			continue
		}

		if _, ok := seen[upper]; ok {
			continue
		}
		seen[upper] = struct{}{}

		score := matchr.JaroWinkler(upper, target, false)
		if score >= minSimilarity {
			suggestions = append(suggestions, Suggestion{Line: line, Score: score})
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})

	if limit > 0 && len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}

	return suggestions
}
