package scrape

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrPageLoad means the menu page itself could not be loaded. It aborts the run.
	ErrPageLoad = errors.New("menu page did not load")
	// ErrTabNotFound means a hall's tab could not be selected. Only that hall is skipped.
	ErrTabNotFound = errors.New("hall tab not found")
)

// Navigator drives the shared menu page. Calls are not safe for concurrent use:
// every hall view replaces the previous one on the same page.
type Navigator interface {
	// Open loads the menu page.
	Open(ctx context.Context) error
	// EnsureDateIsToday tries to point the page's date filter at todayISO
	// (YYYY-MM-DD). Failures are logged, never returned.
	EnsureDateIsToday(ctx context.Context, todayISO string)
	// SelectHallView switches to the hall's tab and returns the visible text of
	// the page as trimmed, non-empty lines.
	SelectHallView(ctx context.Context, tabLabel string) ([]string, error)
	Close() error
}

// HTMLSource is implemented by navigators that can return the current page HTML.
type HTMLSource interface {
	HTML(ctx context.Context) (string, error)
}

// ms converts a duration in milliseconds to the float playwright expects.
func ms(v int) float64 {
	return float64(v)
}
