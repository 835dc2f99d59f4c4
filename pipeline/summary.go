package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/uscdining/dishwatch/menu"
	"github.com/uscdining/dishwatch/util"
)

// HallResult counts what happened to one hall during a run.
type HallResult struct {
	Hall    string
	Station string
	Lines   int
	// Scraped is the number of dishes left after deduplication.
	Scraped  int
	Upserted int
	Failed   int
	// Suggestions are headers resembling the target station, set only when
	// the hall produced no dishes.
	Suggestions []string
	// Dishes are the deduplicated dishes of the hall, in page order.
	Dishes []menu.ScrapedDish
	// Err is set when the hall was skipped or its station could not be resolved.
	Err error
}

type Summary struct {
	Date    string
	DryRun  bool
	Halls   []*HallResult
	Elapsed time.Duration
}

func (s *Summary) sum(f func(*HallResult) int) int {
	total := 0
	for _, h := range s.Halls {
		total += f(h)
	}
	return total
}

func (s *Summary) Scraped() int  { return s.sum(func(h *HallResult) int { return h.Scraped }) }
func (s *Summary) Upserted() int { return s.sum(func(h *HallResult) int { return h.Upserted }) }
func (s *Summary) Failed() int   { return s.sum(func(h *HallResult) int { return h.Failed }) }

// Skipped returns the halls that could not be read.
func (s *Summary) Skipped() []string {
	skipped := make([]string, 0)
	for _, h := range s.Halls {
		if h.Err != nil && h.Lines == 0 {
			skipped = append(skipped, h.Hall)
		}
	}
	return skipped
}

func status(h *HallResult) string {
	switch {
	case h.Err != nil && h.Lines == 0:
		return "skipped"
	case h.Err != nil:
		return "store error"
	case h.Scraped == 0:
		return "no dishes"
	case h.Failed > 0:
		return "partial"
	default:
		return "ok"
	}
}

// Table renders the summary for a terminal.
func (s *Summary) Table() string {
	t := table.NewWriter()
	t.SetTitle("Menu " + s.Date)
	t.AppendHeader(table.Row{"Hall", "Station", "Lines", "Scraped", "Upserted", "Failed", "Status"})

	for _, h := range s.Halls {
		t.AppendRow(table.Row{h.Hall, h.Station, h.Lines, h.Scraped, h.Upserted, h.Failed, status(h)})
	}

	t.AppendFooter(table.Row{"Total", "", "", s.Scraped(), s.Upserted(), s.Failed(), ""})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	t.SetStyle(table.StyleLight)

	return t.Render()
}

// Text is a short plain-text report, used for chat notifications. It lists
// every dish with its meal and ingredient count.
func (s *Summary) Text() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Menu scrape for %s: %s scraped", s.Date, util.Plural(s.Scraped(), "dish", "dishes"))
	if s.DryRun {
		b.WriteString(" (dry run)")
	} else {
		fmt.Fprintf(&b, ", %d upserted", s.Upserted())
		if failed := s.Failed(); failed > 0 {
			fmt.Fprintf(&b, ", %d failed", failed)
		}
	}
	b.WriteString("\n")

	for _, h := range s.Halls {
		fmt.Fprintf(&b, "• %s: %s (%s)", h.Hall, util.Plural(h.Scraped, "dish", "dishes"), status(h))
		if len(h.Suggestions) > 0 {
			fmt.Fprintf(&b, ", similar headers: %s", strings.Join(h.Suggestions, ", "))
		}
		b.WriteString("\n")

		for _, dish := range h.Dishes {
			fmt.Fprintf(&b, "    %s: %s (%s)\n", dish.MealPeriod, dish.Name, util.Plural(len(dish.Ingredients), "ingredient", "ingredients"))
		}
	}

	if skipped := s.Skipped(); len(skipped) > 0 {
		fmt.Fprintf(&b, "Skipped: %s\n", strings.Join(skipped, ", "))
	}

	return b.String()
}
