package db

import (
	"context"

	"github.com/pkg/errors"

	"github.com/uscdining/dishwatch/menu"
)

var ErrNotFound = errors.New("not found")

// DishRecord is one dish as persisted for a station.
type DishRecord struct {
	StationID  int64           `json:"stationId"`
	Name       string          `json:"name"`
	MealPeriod menu.MealPeriod `json:"mealPeriod"`
	// ObservedDate is the LA calendar date the dish was last served, YYYY-MM-DD.
	ObservedDate string   `json:"observedDate"`
	Ingredients  []string `json:"ingredients"`
}

// DishRow is a stored DishRecord with its stable identity.
type DishRow struct {
	ID int64 `json:"id"`
	DishRecord
}

// Store persists scraped dishes. Rows are unique on (station, name, meal
// period); upserting an existing dish keeps its ID.
type Store interface {
	// ResolveStationID returns the ID of the station in the hall, creating the
	// hall and station on first use.
	ResolveStationID(ctx context.Context, hallSlug, stationSlug, stationName string) (int64, error)
	// UpsertDish inserts the dish or updates its ingredients and observed date.
	UpsertDish(ctx context.Context, rec DishRecord) error
	// GetDish returns the stored dish or ErrNotFound.
	GetDish(ctx context.Context, stationID int64, name string, meal menu.MealPeriod) (*DishRow, error)
	Close() error
}

func validate(rec DishRecord) error {
	if rec.Name == "" {
		return errors.New("dish name is empty")
	}
	if !menu.Served(rec.MealPeriod) {
		return errors.Errorf("meal period %q is not stored", rec.MealPeriod)
	}
	return nil
}
