package persistence

import "errors"

var (
	// ErrRecordNotFound is returned by update and delete operations when no
	// document carries the requested id. Lookups report absence without an
	// error; only mutations treat it as a failure.
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateID is returned when an insert supplies an id that already
	// exists in the collection.
	ErrDuplicateID = errors.New("record id already exists")
)
