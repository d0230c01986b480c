package service

import "errors"

// ErrNotStarted indicates an operation before Start or after Stop.
var ErrNotStarted = errors.New("service not started")
