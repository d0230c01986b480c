// Package eligibility holds the pure compatibility rules used by the
// matching engine: cycle eligibility, pairwise checks, and the great-circle
// distance math behind the radius rule.
package eligibility

import (
	"math"

	"github.com/okian/fika/internal/domain/model"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371

// Distance returns the great-circle distance between two coordinates in
// kilometers (haversine).
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlon1 := lon1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	rlon2 := lon2 * math.Pi / 180

	dlat := rlat2 - rlat1
	dlon := rlon2 - rlon1

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Asin(math.Sqrt(a))

	return c * earthRadiusKm
}

// Eligible reports whether a member may participate in a matching cycle:
// active and with a consecutive missed/cancelled streak below the threshold.
func Eligible(m model.Member, missedStreak, threshold int) bool {
	return m.IsActive && missedStreak < threshold
}

// Compatible reports whether b is a valid candidate for a. priorPartners is
// the set of member ids a has ever been paired with, live rows and history
// unioned. All rules must hold:
//
//  1. b was never paired with a before.
//  2. If both members have coordinates and a has a radius, b lies within it.
//     Members without location data skip the distance rule entirely.
//  3. Languages match exactly.
//  4. The members share at least one interest.
func Compatible(a, b model.Member, priorPartners map[int64]struct{}) bool {
	if a.ID == b.ID {
		return false
	}
	if _, met := priorPartners[b.ID]; met {
		return false
	}
	if a.HasLocation() && b.HasLocation() && a.RadiusKm > 0 {
		d := Distance(*a.LocationLat, *a.LocationLon, *b.LocationLat, *b.LocationLon)
		if d > float64(a.RadiusKm) {
			return false
		}
	}
	if a.PreferredLanguage != b.PreferredLanguage {
		return false
	}
	return sharesInterest(a.Interests, b.Interests)
}

// sharesInterest reports whether the two interest sets intersect.
func sharesInterest(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, tag := range a {
		set[tag] = struct{}{}
	}
	for _, tag := range b {
		if _, ok := set[tag]; ok {
			return true
		}
	}
	return false
}
