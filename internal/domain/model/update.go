package model

import "time"

// MemberUpdate is a partial update for a member profile. Only non-nil fields
// are written; unrelated columns are never clobbered.
type MemberUpdate struct {
	Username           *string
	FullName           *string
	Bio                *string
	Interests          *[]string
	LocationLat        *float64
	LocationLon        *float64
	RadiusKm           *int
	PreferredLanguage  *string
	PhotoURL           *string
	PreferredDays      *[]string
	PreferredTimeStart *string
	PreferredTimeEnd   *string
	Timezone           *string
	IsActive           *bool
}

// Empty reports whether the update carries no field changes.
func (u MemberUpdate) Empty() bool {
	return u.Username == nil && u.FullName == nil && u.Bio == nil &&
		u.Interests == nil && u.LocationLat == nil && u.LocationLon == nil &&
		u.RadiusKm == nil && u.PreferredLanguage == nil && u.PhotoURL == nil &&
		u.PreferredDays == nil && u.PreferredTimeStart == nil &&
		u.PreferredTimeEnd == nil && u.Timezone == nil && u.IsActive == nil
}

// PairingUpdate is a partial update for a pairing row.
type PairingUpdate struct {
	Status        *Status
	MeetingDate   *time.Time
	FeedbackUser1 *string
	FeedbackUser2 *string
}

// Empty reports whether the update carries no field changes.
func (u PairingUpdate) Empty() bool {
	return u.Status == nil && u.MeetingDate == nil &&
		u.FeedbackUser1 == nil && u.FeedbackUser2 == nil
}
