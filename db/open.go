package db

import (
	"context"

	"github.com/pkg/errors"
)

type Kind = string

const (
	KindSQLite Kind = "sqlite"
	KindBolt   Kind = "bolt"
)

// Open opens the store of the given kind. For KindSQLite, dsn is a file path or
// a libsql URL; for KindBolt it is a file path.
func Open(ctx context.Context, kind Kind, dsn, authToken string) (Store, error) {
	switch kind {
	case KindSQLite, "":
		return OpenSQL(ctx, dsn, authToken)
	case KindBolt:
		return OpenBolt(dsn)
	default:
		return nil, errors.Errorf("unknown store %q", kind)
	}
}
