package eligibility_test

import (
	"math"
	"testing"

	"github.com/okian/fika/internal/domain/eligibility"
	"github.com/okian/fika/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func ptr[T any](v T) *T { return &v }

func member(id int64, lang string, interests ...string) model.Member {
	return model.Member{
		ID:                id,
		IsActive:          true,
		PreferredLanguage: lang,
		Interests:         interests,
	}
}

func TestDistance(t *testing.T) {
	Convey("Given the haversine distance function", t, func() {
		// Paris and London city centers.
		parisLat, parisLon := 48.8566, 2.3522
		londonLat, londonLon := 51.5074, -0.1278

		Convey("Then the Paris-London distance is about 344 km", func() {
			d := eligibility.Distance(parisLat, parisLon, londonLat, londonLon)
			So(d, ShouldBeBetween, 340, 348)
		})

		Convey("Then distance is symmetric", func() {
			ab := eligibility.Distance(parisLat, parisLon, londonLat, londonLon)
			ba := eligibility.Distance(londonLat, londonLon, parisLat, parisLon)
			So(math.Abs(ab-ba), ShouldBeLessThan, 1e-9)
		})

		Convey("Then the distance from a point to itself is zero", func() {
			So(eligibility.Distance(parisLat, parisLon, parisLat, parisLon), ShouldEqual, 0)
		})
	})
}

func TestEligible(t *testing.T) {
	Convey("Given cycle eligibility with threshold 3", t, func() {
		m := member(1, "en", "coffee")

		Convey("Then an active member below the streak threshold is eligible", func() {
			So(eligibility.Eligible(m, 0, 3), ShouldBeTrue)
			So(eligibility.Eligible(m, 2, 3), ShouldBeTrue)
		})

		Convey("Then a streak at or above the threshold excludes the member", func() {
			So(eligibility.Eligible(m, 3, 3), ShouldBeFalse)
			So(eligibility.Eligible(m, 5, 3), ShouldBeFalse)
		})

		Convey("Then an inactive member is never eligible", func() {
			m.IsActive = false
			So(eligibility.Eligible(m, 0, 3), ShouldBeFalse)
		})
	})
}

func TestCompatible(t *testing.T) {
	Convey("Given two members sharing language and interests", t, func() {
		a := member(1, "en", "coffee", "books")
		b := member(2, "en", "coffee")
		none := map[int64]struct{}{}

		Convey("Then they are compatible", func() {
			So(eligibility.Compatible(a, b, none), ShouldBeTrue)
		})

		Convey("When b is a prior partner of a", func() {
			prior := map[int64]struct{}{2: {}}

			Convey("Then they are not compatible", func() {
				So(eligibility.Compatible(a, b, prior), ShouldBeFalse)
			})
		})

		Convey("When languages differ", func() {
			b.PreferredLanguage = "fr"

			Convey("Then they are not compatible", func() {
				So(eligibility.Compatible(a, b, none), ShouldBeFalse)
			})
		})

		Convey("When no interests are shared", func() {
			b.Interests = []string{"running"}

			Convey("Then they are not compatible", func() {
				So(eligibility.Compatible(a, b, none), ShouldBeFalse)
			})
		})

		Convey("When a has no interests at all", func() {
			a.Interests = nil

			Convey("Then they are not compatible", func() {
				So(eligibility.Compatible(a, b, none), ShouldBeFalse)
			})
		})

		Convey("Then a member is never compatible with itself", func() {
			So(eligibility.Compatible(a, a, none), ShouldBeFalse)
		})
	})

	Convey("Given the distance rule", t, func() {
		// Roughly 15 km apart on the same meridian.
		a := member(1, "en", "coffee")
		a.LocationLat, a.LocationLon = ptr(48.0), ptr(2.0)
		a.RadiusKm = 10

		b := member(2, "en", "coffee")
		b.LocationLat, b.LocationLon = ptr(48.135), ptr(2.0)

		none := map[int64]struct{}{}

		Convey("Then a candidate outside the radius is rejected", func() {
			So(eligibility.Compatible(a, b, none), ShouldBeFalse)
		})

		Convey("Then widening the radius admits the candidate", func() {
			a.RadiusKm = 20
			So(eligibility.Compatible(a, b, none), ShouldBeTrue)
		})

		Convey("Then a missing coordinate on either side skips the rule", func() {
			b.LocationLat, b.LocationLon = nil, nil
			So(eligibility.Compatible(a, b, none), ShouldBeTrue)

			b.LocationLat, b.LocationLon = ptr(48.135), ptr(2.0)
			a.LocationLat, a.LocationLon = nil, nil
			So(eligibility.Compatible(a, b, none), ShouldBeTrue)
		})

		Convey("Then a zero radius disables the rule", func() {
			a.RadiusKm = 0
			So(eligibility.Compatible(a, b, none), ShouldBeTrue)
		})
	})
}
