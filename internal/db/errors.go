package db

import "errors"

var (
	// ErrConnect indicates the pool could not be created from the DSN.
	ErrConnect = errors.New("database connect failed")
	// ErrPing indicates the database did not answer the liveness ping.
	ErrPing = errors.New("database ping failed")
	// ErrEmptyMigration indicates a migration file with no statements.
	ErrEmptyMigration = errors.New("empty migration file")
)
