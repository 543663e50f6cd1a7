package repositories

import (
	"database/sql"
	"errors"

	intconfig "caravan/internal/config"
	intdb "caravan/internal/db"
	"caravan/internal/domain"
)

var errNoDB = domain.InternalError{Msg: "base de datos no disponible"}

type rowScanner interface {
	Scan(dest ...any) error
}

// querier falls back to the shared connection when the repository was built
// without an explicit handle.
func querier(q intdb.Querier) (intdb.Querier, error) {
	if db, ok := q.(*sql.DB); ok && db == nil {
		q = nil
	}
	if q != nil {
		return q, nil
	}
	if intconfig.DB != nil {
		return intconfig.DB, nil
	}
	return nil, errNoDB
}

func notFound(resource string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError{Resource: resource, Err: err}
	}
	return err
}

func nullIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullInt64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
