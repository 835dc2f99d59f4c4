package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"

	"github.com/uscdining/dishwatch/log"
	"github.com/uscdining/dishwatch/menu"
)

const Schema = `
CREATE TABLE IF NOT EXISTS dining_halls (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	slug TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS stations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	dining_hall_id INTEGER NOT NULL REFERENCES dining_halls(id),
	name TEXT NOT NULL,
	slug TEXT NOT NULL,
	UNIQUE (dining_hall_id, slug)
);

CREATE TABLE IF NOT EXISTS menu_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	station_id INTEGER NOT NULL REFERENCES stations(id),
	name TEXT NOT NULL,
	meal_period TEXT NOT NULL,
	last_served_date TEXT NOT NULL,
	ingredients TEXT NOT NULL,
	UNIQUE (station_id, name, meal_period)
);
`

// SQLStore is a Store on SQLite, either a local file or a remote libsql database.
type SQLStore struct {
	log zerolog.Logger
	db  *sql.DB
}

func isRemote(dsn string) bool {
	return strings.HasPrefix(dsn, "libsql://") || strings.HasPrefix(dsn, "https://") || strings.HasPrefix(dsn, "http://")
}

// OpenSQL opens dsn and creates the schema. Remote libsql URLs use authToken
// when it is not empty; anything else is a local SQLite path.
func OpenSQL(ctx context.Context, dsn, authToken string) (*SQLStore, error) {
	var (
		db  *sql.DB
		err error
	)

	if isRemote(dsn) {
		var remote string
		remote, err = libsqlDSN(dsn, authToken)
		if err == nil {
			db, err = sql.Open("libsql", remote)
		}
	} else {
		db, err = sql.Open("sqlite", dsn)
		if err == nil {
			// sqlite allows a single writer
			db.SetMaxOpenConns(1)
			if _, err = db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
				db.Close()
			}
		}
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	for _, stmt := range strings.Split(Schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "failed to create schema")
		}
	}

	return &SQLStore{
		log: log.NewLogger("db"),
		db:  db,
	}, nil
}

// libsqlDSN sets authToken on a remote DSN, replacing a token already in it.
// Other query parameters are kept.
func libsqlDSN(dsn, authToken string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", errors.Wrap(err, "invalid database URL")
	}

	if authToken != "" {
		query := u.Query()
		query.Set("authToken", authToken)
		u.RawQuery = query.Encode()
	}

	return u.String(), nil
}

func (s *SQLStore) ResolveStationID(ctx context.Context, hallSlug, stationSlug, stationName string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO dining_halls (slug) VALUES (?) ON CONFLICT (slug) DO NOTHING`,
		hallSlug,
	); err != nil {
		return 0, errors.Wrapf(err, "failed to create dining hall %s", hallSlug)
	}

	var hallID int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM dining_halls WHERE slug = ?`, hallSlug).Scan(&hallID); err != nil {
		return 0, errors.Wrapf(err, "failed to get dining hall %s", hallSlug)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO stations (dining_hall_id, name, slug) VALUES (?, ?, ?) ON CONFLICT (dining_hall_id, slug) DO NOTHING`,
		hallID, stationName, stationSlug,
	)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to create station %s", stationSlug)
	}

	var stationID int64
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM stations WHERE dining_hall_id = ? AND slug = ?`,
		hallID, stationSlug,
	).Scan(&stationID); err != nil {
		return 0, errors.Wrapf(err, "failed to get station %s", stationSlug)
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "failed to commit station")
	}

	if n, _ := res.RowsAffected(); n > 0 {
		s.log.Info().Str("hall", hallSlug).Str("station", stationSlug).Int64("id", stationID).Msg("Created station")
	}

	return stationID, nil
}

func (s *SQLStore) UpsertDish(ctx context.Context, rec DishRecord) error {
	if err := validate(rec); err != nil {
		return err
	}

	ingredients, err := json.Marshal(orEmpty(rec.Ingredients))
	if err != nil {
		return errors.Wrap(err, "failed to encode ingredients")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO menu_items (station_id, name, meal_period, last_served_date, ingredients)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (station_id, name, meal_period) DO UPDATE SET
			last_served_date = excluded.last_served_date,
			ingredients = excluded.ingredients`,
		rec.StationID, rec.Name, rec.MealPeriod, rec.ObservedDate, string(ingredients),
	)
	if err != nil {
		return errors.Wrapf(err, "failed to upsert %s", rec.Name)
	}

	return nil
}

func (s *SQLStore) GetDish(ctx context.Context, stationID int64, name string, meal menu.MealPeriod) (*DishRow, error) {
	row := &DishRow{}
	var ingredients string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, station_id, name, meal_period, last_served_date, ingredients
		FROM menu_items
		WHERE station_id = ? AND name = ? AND meal_period = ?`,
		stationID, name, meal,
	).Scan(&row.ID, &row.StationID, &row.Name, &row.MealPeriod, &row.ObservedDate, &ingredients)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get dish")
	}

	if err := json.Unmarshal([]byte(ingredients), &row.Ingredients); err != nil {
		return nil, errors.Wrapf(err, "failed to decode ingredients of %s", name)
	}

	return row, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func orEmpty(ingredients []string) []string {
	if ingredients == nil {
		return []string{}
	}
	return ingredients
}
