package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	// ErrNotFound marks a missing member or pairing. Callers treat it as
	// "nothing to do", not as a crash.
	ErrNotFound = errors.New("record not found")

	// ErrNothingToUpdate marks an update request that carried no effective
	// field changes. Reported, not an error condition.
	ErrNothingToUpdate = errors.New("nothing to update")
)
