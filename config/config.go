package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/pkg/errors"
	"github.com/titanous/json5"

	"github.com/uscdining/dishwatch/log"
)

const MENU_URL = "https://hospitality.usc.edu/dining-hall-menus/"

var ErrInvalid = errors.New("invalid config")

// TargetingKind selects how a hall decides which station header is its target.
type TargetingKind string

const (
	// TargetExactName targets the header equal to the profile's station name.
	// The first dish-like line after the header is the dish name.
	TargetExactName TargetingKind = "exact-name"
	// TargetSuffixBar targets any "... BAR" header not containing an excluded
	// word. The header itself is the dish name.
	TargetSuffixBar TargetingKind = "suffix-bar"
)

// Targeting is the station targeting strategy of a hall. Exclude is only
// consulted for TargetSuffixBar.
type Targeting struct {
	Kind    TargetingKind `json:"kind"`
	Exclude []string      `json:"exclude,omitempty"`
}

// HallProfile describes one dining hall and the single station tracked in it.
type HallProfile struct {
	Name string `json:"name"`
	// Slug is the stable identity of the hall.
	Slug string `json:"slug"`
	// TabLabel is the text of the hall's tab on the menu page.
	TabLabel    string    `json:"tabLabel"`
	StationName string    `json:"stationName"`
	StationSlug string    `json:"stationSlug"`
	Targeting   Targeting `json:"targeting"`
}

// Timing holds the grace waits used while driving the menu page, in milliseconds.
type Timing struct {
	PageLoadTimeoutMs int `json:"pageLoadTimeoutMs"`
	PageSettleMs      int `json:"pageSettleMs"`
	TabSettleMs       int `json:"tabSettleMs"`
	DateSettleMs      int `json:"dateSettleMs"`
}

func (t Timing) PageLoadTimeout() time.Duration {
	return time.Duration(t.PageLoadTimeoutMs) * time.Millisecond
}

func (t Timing) PageSettle() time.Duration {
	return time.Duration(t.PageSettleMs) * time.Millisecond
}

func (t Timing) TabSettle() time.Duration {
	return time.Duration(t.TabSettleMs) * time.Millisecond
}

func (t Timing) DateSettle() time.Duration {
	return time.Duration(t.DateSettleMs) * time.Millisecond
}

type Config struct {
	MenuURL string        `json:"menuUrl"`
	Halls   []HallProfile `json:"halls"`
	// Stations is the known station vocabulary used to recognize section headers.
	Stations []string `json:"stations"`
	// MealPeriods are the exact, case-sensitive meal labels on the page.
	MealPeriods []string `json:"mealPeriods"`
	// SkipPatterns are RE2 patterns for lines that are never dish names or ingredients.
	SkipPatterns []string `json:"skipPatterns"`
	Timing       Timing   `json:"timing"`
}

// Validate checks that the config can drive a scrape.
func (c *Config) Validate() error {
	if c.MenuURL == "" {
		return errors.Wrap(ErrInvalid, "menuUrl is empty")
	}

	if len(c.Halls) == 0 {
		return errors.Wrap(ErrInvalid, "no halls configured")
	}

	if len(c.MealPeriods) == 0 {
		return errors.Wrap(ErrInvalid, "no meal periods configured")
	}

	slugs := make(map[string]struct{}, len(c.Halls))
	for _, hall := range c.Halls {
		if hall.Slug == "" || hall.StationSlug == "" || hall.TabLabel == "" {
			return errors.Wrapf(ErrInvalid, "hall %q is missing slug, station slug or tab label", hall.Name)
		}

		if _, ok := slugs[hall.Slug]; ok {
			return errors.Wrapf(ErrInvalid, "duplicate hall slug %q", hall.Slug)
		}
		slugs[hall.Slug] = struct{}{}

		switch hall.Targeting.Kind {
		case TargetExactName:
			if strings.TrimSpace(hall.StationName) == "" {
				return errors.Wrapf(ErrInvalid, "hall %q targets an empty station name", hall.Slug)
			}
		case TargetSuffixBar:
			// An empty word is contained in every header and would exclude all bars.
			for _, word := range hall.Targeting.Exclude {
				if strings.TrimSpace(word) == "" {
					return errors.Wrapf(ErrInvalid, "hall %q has an empty exclusion word", hall.Slug)
				}
			}
		default:
			return errors.Wrapf(ErrInvalid, "hall %q has unknown targeting %q", hall.Slug, hall.Targeting.Kind)
		}
	}

	if _, err := c.Vocabulary(); err != nil {
		return errors.Wrap(ErrInvalid, err.Error())
	}

	return nil
}

// Hall returns the profile with the given slug.
func (c *Config) Hall(slug string) (HallProfile, bool) {
	for _, hall := range c.Halls {
		if hall.Slug == slug {
			return hall, true
		}
	}
	return HallProfile{}, false
}

func splitExt(name string) (string, string) {
	ext := filepath.Ext(name)
	return name[:len(name)-len(ext)], ext
}

// Load returns the default config overridden by the JSON5 file at path and, if
// present, its sibling <name>.local.<ext>. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		log := log.NewLogger("config")

		prefix, ext := splitExt(path)
		for i, name := range []string{path, fmt.Sprintf("%s.local%s", prefix, ext)} {
			file, err := os.ReadFile(name)
			if err != nil {
				// Only the base file is required.
				if os.IsNotExist(err) && i > 0 {
					continue
				}
				return nil, errors.Wrapf(err, "failed to read config %s", name)
			}

			var override Config
			if err := json5.Unmarshal(file, &override); err != nil {
				return nil, errors.Wrapf(err, "failed to parse config %s", name)
			}

			if err := mergo.Merge(cfg, override, mergo.WithOverride); err != nil {
				return nil, errors.Wrapf(err, "failed to merge config %s", name)
			}

			log.Info().Str("path", name).Msg("Merged config file")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
