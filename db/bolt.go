package db

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	bolt "go.etcd.io/bbolt"

	"github.com/uscdining/dishwatch/log"
	"github.com/uscdining/dishwatch/menu"
)

const (
	STATIONS_BUCKET = "stations"
	DISHES_BUCKET   = "dishes"
)

// BoltStore is a Store in a single bbolt file, for runs without a SQL database.
type BoltStore struct {
	log zerolog.Logger
	db  *bolt.DB
}

// OpenBolt opens or creates the database file at path.
// It is up to the caller to close the database when it is no longer needed.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open bolt database")
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{STATIONS_BUCKET, DISHES_BUCKET} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create default buckets")
	}

	return &BoltStore{
		log: log.NewLogger("db"),
		db:  db,
	}, nil
}

func stationKey(hallSlug, stationSlug string) []byte {
	return []byte(hallSlug + "/" + stationSlug)
}

func dishKey(stationID int64, meal menu.MealPeriod, name string) []byte {
	return []byte(fmt.Sprintf("%d/%s/%s", stationID, meal, name))
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func (s *BoltStore) ResolveStationID(_ context.Context, hallSlug, stationSlug, stationName string) (int64, error) {
	var id int64

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(STATIONS_BUCKET))
		key := stationKey(hallSlug, stationSlug)

		if val := b.Get(key); val != nil {
			id = int64(binary.BigEndian.Uint64(val))
			return nil
		}

		seq, err := b.NextSequence()
		if err != nil {
			return err
		}

		id = int64(seq)
		s.log.Info().Str("hall", hallSlug).Str("station", stationSlug).Str("name", stationName).Int64("id", id).Msg("Created station")
		return b.Put(key, itob(seq))
	})

	if err != nil {
		return 0, errors.Wrapf(err, "failed to resolve station %s/%s", hallSlug, stationSlug)
	}

	return id, nil
}

func (s *BoltStore) UpsertDish(_ context.Context, rec DishRecord) error {
	if err := validate(rec); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(DISHES_BUCKET))
		key := dishKey(rec.StationID, rec.MealPeriod, rec.Name)

		row := DishRow{DishRecord: rec}
		row.Ingredients = orEmpty(rec.Ingredients)

		if val := b.Get(key); val != nil {
			var existing DishRow
			if err := json.Unmarshal(val, &existing); err != nil {
				return err
			}
			row.ID = existing.ID
		} else {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			row.ID = int64(seq)
		}

		encoded, err := json.Marshal(row)
		if err != nil {
			return err
		}

		return b.Put(key, encoded)
	})

	if err != nil {
		return errors.Wrapf(err, "failed to upsert %s", rec.Name)
	}

	return nil
}

func (s *BoltStore) GetDish(_ context.Context, stationID int64, name string, meal menu.MealPeriod) (row *DishRow, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		val := tx.Bucket([]byte(DISHES_BUCKET)).Get(dishKey(stationID, meal, name))
		if val == nil {
			return ErrNotFound
		}

		row = &DishRow{}
		return json.Unmarshal(val, row)
	})

	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get dish")
	}

	return row, nil
}

// Close closes the database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
