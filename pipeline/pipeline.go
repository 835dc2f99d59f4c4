package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/uscdining/dishwatch/chrono"
	"github.com/uscdining/dishwatch/config"
	"github.com/uscdining/dishwatch/content"
	"github.com/uscdining/dishwatch/db"
	"github.com/uscdining/dishwatch/document"
	"github.com/uscdining/dishwatch/log"
	"github.com/uscdining/dishwatch/menu"
	"github.com/uscdining/dishwatch/parser"
	"github.com/uscdining/dishwatch/scrape"
	"github.com/uscdining/dishwatch/store"
)

// maxSuggestions bounds the drift report of a hall without dishes.
const maxSuggestions = 5

type Options struct {
	// Clock decides the observed date. Defaults to the system clock.
	Clock chrono.Clock
	// DryRun parses every hall but never touches the store.
	DryRun bool
	// Snapshots receives one document per hall view when set.
	Snapshots store.LocalStore
	// Halls restricts the run to these hall slugs, in this order. Empty means
	// every configured hall.
	Halls []string
}

// Pipeline runs one scrape: every configured hall is read through the
// navigator and parsed, then all dishes are written to the store.
type Pipeline struct {
	log   zerolog.Logger
	cfg   *config.Config
	vocab *config.Vocabulary
	halls []config.HallProfile

	nav   scrape.Navigator
	store db.Store
	opts  Options
}

func New(cfg *config.Config, nav scrape.Navigator, st db.Store, opts Options) (*Pipeline, error) {
	vocab, err := cfg.Vocabulary()
	if err != nil {
		return nil, errors.Wrap(err, "failed to compile vocabulary")
	}

	if opts.Clock == nil {
		opts.Clock = chrono.System{}
	}

	if st == nil && !opts.DryRun {
		return nil, errors.New("a store is required unless running dry")
	}

	halls := cfg.Halls
	if len(opts.Halls) > 0 {
		halls = make([]config.HallProfile, 0, len(opts.Halls))
		for _, slug := range opts.Halls {
			hall, ok := cfg.Hall(slug)
			if !ok {
				return nil, errors.Wrapf(config.ErrInvalid, "unknown hall %q", slug)
			}
			halls = append(halls, hall)
		}
	}

	return &Pipeline{
		log:   log.NewLogger("pipeline"),
		cfg:   cfg,
		vocab: vocab,
		halls: halls,
		nav:   nav,
		store: st,
		opts:  opts,
	}, nil
}

// hallScan is the parsed result of one hall view, before persistence.
type hallScan struct {
	result *HallResult
	hall   config.HallProfile
	dishes []menu.ScrapedDish
}

// Run scrapes all halls and upserts their dishes. It fails only when the page
// cannot be loaded or a hall view breaks in a way other than a missing tab;
// in both cases nothing is written. Store failures are counted per dish.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	today := chrono.Today(p.opts.Clock)

	p.log.Info().Str("url", p.cfg.MenuURL).Str("date", today).Msg("Starting scrape")

	if err := p.nav.Open(ctx); err != nil {
		return nil, err
	}

	p.nav.EnsureDateIsToday(ctx, today)

	summary := &Summary{Date: today, DryRun: p.opts.DryRun}
	scans := make([]hallScan, 0, len(p.halls))

	for _, hall := range p.halls {
		result := &HallResult{Hall: hall.Slug, Station: hall.StationSlug}
		summary.Halls = append(summary.Halls, result)

		dishes, err := p.scanHall(ctx, hall, today, result)
		if err != nil {
			if errors.Is(err, scrape.ErrTabNotFound) {
				p.log.Warn().Err(err).Str("hall", hall.Slug).Msg("Skipping hall")
				result.Err = err
				continue
			}
			return nil, errors.Wrapf(err, "failed to read hall %s", hall.Slug)
		}

		scans = append(scans, hallScan{result: result, hall: hall, dishes: dishes})
	}

	if p.opts.DryRun {
		p.log.Info().Int("dishes", summary.Scraped()).Msg("Dry run, nothing stored")
	} else {
		for _, scan := range scans {
			p.persist(ctx, scan, today)
		}
	}

	summary.Elapsed = time.Since(start)
	p.log.Info().
		Int("scraped", summary.Scraped()).
		Int("upserted", summary.Upserted()).
		Int("failed", summary.Failed()).
		Dur("elapsed", summary.Elapsed).
		Msg("Scrape finished")

	return summary, nil
}

func (p *Pipeline) scanHall(ctx context.Context, hall config.HallProfile, today string, result *HallResult) ([]menu.ScrapedDish, error) {
	lines, err := p.nav.SelectHallView(ctx, hall.TabLabel)
	if err != nil {
		return nil, err
	}

	prs := parser.New(p.vocab, hall)
	dishes := menu.Deduplicate(prs.Parse(lines))

	result.Lines = len(lines)
	result.Scraped = len(dishes)
	result.Dishes = dishes

	p.log.Info().Str("hall", hall.Slug).Int("lines", len(lines)).Int("dishes", len(dishes)).Msg("Parsed hall")

	if len(dishes) == 0 {
		for _, s := range prs.Suggest(lines, maxSuggestions) {
			result.Suggestions = append(result.Suggestions, s.Line)
			p.log.Warn().
				Str("hall", hall.Slug).
				Str("expected", hall.StationName).
				Str("seen", s.Line).
				Float64("score", s.Score).
				Msg("No dishes found, station may have been renamed")
		}
	}

	if p.opts.Snapshots != nil {
		p.snapshot(ctx, hall, today, lines, result)
	}

	return dishes, nil
}

// snapshot stores the hall view for later inspection. Failures are logged only.
func (p *Pipeline) snapshot(ctx context.Context, hall config.HallProfile, today string, lines []string, result *HallResult) {
	md := document.Metadata{
		Hall:          hall.Slug,
		Station:       hall.StationSlug,
		TabLabel:      hall.TabLabel,
		Date:          today,
		Source:        p.cfg.MenuURL,
		Dishes:        result.Scraped,
		Suggestions:   result.Suggestions,
		ProcessedTime: time.Now().UTC().Format(time.RFC3339),
	}

	doc := document.FromLines(lines, md)

	// Keep the rendered page next to the lines when the navigator can provide it.
	if src, ok := p.nav.(scrape.HTMLSource); ok {
		raw, err := src.HTML(ctx)
		if err == nil {
			var markdown []byte
			markdown, err = content.Markdown([]byte(raw), p.cfg.MenuURL)
			if err == nil {
				doc.Content += "\n---\n\n" + string(bytes.TrimSpace(markdown)) + "\n"
				doc.Metadata.Type = document.TypeMarkdown
			}
		}
		if err != nil {
			p.log.Debug().Err(err).Str("hall", hall.Slug).Msg("Page HTML not included in snapshot")
		}
	}

	name, err := store.SaveDocument(p.opts.Snapshots, doc)
	if err != nil {
		p.log.Warn().Err(err).Str("hall", hall.Slug).Msg("Failed to write snapshot")
		return
	}

	p.log.Debug().Str("hall", hall.Slug).Str("file", name).Msg("Wrote snapshot")
}

func (p *Pipeline) persist(ctx context.Context, scan hallScan, today string) {
	if len(scan.dishes) == 0 {
		return
	}

	stationID, err := p.store.ResolveStationID(ctx, scan.hall.Slug, scan.hall.StationSlug, scan.hall.StationName)
	if err != nil {
		p.log.Error().Err(err).Str("hall", scan.hall.Slug).Msg("Failed to resolve station")
		scan.result.Failed = len(scan.dishes)
		scan.result.Err = err
		return
	}

	for _, dish := range scan.dishes {
		err := p.store.UpsertDish(ctx, db.DishRecord{
			StationID:    stationID,
			Name:         dish.Name,
			MealPeriod:   dish.MealPeriod,
			ObservedDate: today,
			Ingredients:  dish.Ingredients,
		})
		if err != nil {
			p.log.Error().Err(err).Str("hall", scan.hall.Slug).Str("dish", dish.Name).Msg("Failed to upsert dish")
			scan.result.Failed++
			continue
		}

		scan.result.Upserted++
	}

	p.log.Info().
		Str("hall", scan.hall.Slug).
		Int("upserted", scan.result.Upserted).
		Int("failed", scan.result.Failed).
		Msg("Stored hall")
}
