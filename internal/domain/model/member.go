// Package model contains domain models passed between layers.
package model

import "time"

// Member represents a participant eligible to be paired.
// Members are created on first contact and soft-deactivated, never deleted.
type Member struct {
	ID                int64
	TelegramID        int64    // unique external identity
	Username          string
	FullName          string
	Bio               string
	Interests         []string // normalized tag identifiers
	LocationLat       *float64 // nil when the member shared no location
	LocationLon       *float64
	RadiusKm          int // search radius; 0 means no distance constraint
	PreferredLanguage string
	PhotoURL          string

	// Availability window, informational only; never gates matching.
	PreferredDays      []string
	PreferredTimeStart *string // "HH:MM"
	PreferredTimeEnd   *string
	Timezone           string

	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasLocation reports whether the member shared coordinates.
func (m Member) HasLocation() bool {
	return m.LocationLat != nil && m.LocationLon != nil
}

// MemberStats aggregates a member's pairing counts.
type MemberStats struct {
	Total     int
	Completed int
	Missed    int
	Pending   int
}
