package matching

import "github.com/okian/fika/pkg/logger"

// Three misses in a row benches a member until they complete a meeting.
const defaultMissedThreshold = 3

type Option func(*Engine)

// WithMissedThreshold overrides how many consecutive missed or cancelled
// pairings exclude a member from matching.
func WithMissedThreshold(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.missedThreshold = n
		}
	}
}

// WithLogger replaces the engine's named logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}
