package models

import "errors"

// Domain error taxonomy. All are recoverable and reported to the caller;
// none is fatal to the process.
var (
	// ErrDuplicateKey reports a uniqueness violation on insert; the caller
	// should treat it as "already exists", prior state is retained.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrReferentialConflict reports a delete blocked by dependent rows.
	ErrReferentialConflict = errors.New("referenced by dependent rows")

	// ErrNotFound reports an absent entity or request id.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyResolved reports an approve/reject attempt on a request
	// that is no longer Pending. No state is mutated.
	ErrAlreadyResolved = errors.New("request already resolved")

	// ErrInvalidRequest reports semantically invalid input, e.g. a transfer
	// whose source and destination rooms are equal.
	ErrInvalidRequest = errors.New("invalid request")
)
