package storage

import "errors"

// ErrNotFound is returned when no record exists for the given id. The
// repositories translate driver-level no-row errors into it so handlers do
// not depend on pgx.
var ErrNotFound = errors.New("record not found")

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
