package model_test

import (
	"testing"

	"github.com/okian/fika/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStatusTransitions(t *testing.T) {
	Convey("Given the pairing status transition table", t, func() {
		Convey("Then pending may move to accepted or declined", func() {
			So(model.CanTransition(model.StatusPending, model.StatusAccepted), ShouldBeTrue)
			So(model.CanTransition(model.StatusPending, model.StatusDeclined), ShouldBeTrue)
		})

		Convey("Then accepted may move to completed", func() {
			So(model.CanTransition(model.StatusAccepted, model.StatusCompleted), ShouldBeTrue)
		})

		Convey("Then declined and completed are terminal", func() {
			So(model.StatusDeclined.Terminal(), ShouldBeTrue)
			So(model.StatusCompleted.Terminal(), ShouldBeTrue)
			So(model.CanTransition(model.StatusDeclined, model.StatusAccepted), ShouldBeFalse)
			So(model.CanTransition(model.StatusCompleted, model.StatusPending), ShouldBeFalse)
			So(model.CanTransition(model.StatusCompleted, model.StatusDeclined), ShouldBeFalse)
		})

		Convey("Then a pairing never skips straight from pending to completed", func() {
			So(model.CanTransition(model.StatusPending, model.StatusCompleted), ShouldBeFalse)
		})

		Convey("Then re-entering the same status is not a transition", func() {
			So(model.CanTransition(model.StatusAccepted, model.StatusAccepted), ShouldBeFalse)
			So(model.CanTransition(model.StatusPending, model.StatusPending), ShouldBeFalse)
		})
	})
}

func TestStatusParsing(t *testing.T) {
	Convey("Given stored status strings", t, func() {
		Convey("Then known values parse", func() {
			for _, s := range []string{"pending", "accepted", "declined", "completed", "missed", "cancelled"} {
				st, err := model.ParseStatus(s)
				So(err, ShouldBeNil)
				So(st.Valid(), ShouldBeTrue)
			}
		})

		Convey("Then unknown values are rejected", func() {
			_, err := model.ParseStatus("ghosted")
			So(err, ShouldNotBeNil)
		})

		Convey("Then only missed and cancelled count toward the streak", func() {
			So(model.StatusMissed.CountsAsMissed(), ShouldBeTrue)
			So(model.StatusCancelled.CountsAsMissed(), ShouldBeTrue)
			So(model.StatusDeclined.CountsAsMissed(), ShouldBeFalse)
			So(model.StatusCompleted.CountsAsMissed(), ShouldBeFalse)
		})
	})
}

func TestPairingHelpers(t *testing.T) {
	Convey("Given a pairing between members 1 and 2", t, func() {
		p := model.Pairing{ID: 10, User1ID: 1, User2ID: 2, Status: model.StatusPending}

		Convey("Then Involves reports membership", func() {
			So(p.Involves(1), ShouldBeTrue)
			So(p.Involves(2), ShouldBeTrue)
			So(p.Involves(3), ShouldBeFalse)
		})

		Convey("Then PartnerOf returns the other side", func() {
			partner, ok := p.PartnerOf(1)
			So(ok, ShouldBeTrue)
			So(partner, ShouldEqual, 2)

			partner, ok = p.PartnerOf(2)
			So(ok, ShouldBeTrue)
			So(partner, ShouldEqual, 1)

			_, ok = p.PartnerOf(7)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestPartialUpdates(t *testing.T) {
	Convey("Given partial update value objects", t, func() {
		Convey("Then an empty update reports Empty", func() {
			So(model.PairingUpdate{}.Empty(), ShouldBeTrue)
			So(model.MemberUpdate{}.Empty(), ShouldBeTrue)
		})

		Convey("Then a single set field makes the update non-empty", func() {
			status := model.StatusAccepted
			So(model.PairingUpdate{Status: &status}.Empty(), ShouldBeFalse)

			bio := "flat white person"
			So(model.MemberUpdate{Bio: &bio}.Empty(), ShouldBeFalse)
		})
	})
}
