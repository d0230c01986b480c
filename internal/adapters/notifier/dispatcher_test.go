package notifier

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/fika/internal/adapters/repository"
	"github.com/okian/fika/internal/domain/model"
	"github.com/okian/fika/pkg/logger"
)

func init() {
	_ = logger.Init()
}

// recorder captures every delivery and can fail sends to chosen members.
type recorder struct {
	sent   []sentMessage
	failTo map[int64]error
}

type sentMessage struct {
	kind     string
	memberID int64
	aboutID  int64
	status   model.Status
}

func (r *recorder) AnnounceNewPairing(_ context.Context, member, counterpart model.Member, _ int64) error {
	if err := r.failTo[member.ID]; err != nil {
		return err
	}
	r.sent = append(r.sent, sentMessage{kind: "pairing", memberID: member.ID, aboutID: counterpart.ID})
	return nil
}

func (r *recorder) AnnounceStatusChange(_ context.Context, member, counterpart model.Member, _ int64, status model.Status) error {
	if err := r.failTo[member.ID]; err != nil {
		return err
	}
	r.sent = append(r.sent, sentMessage{kind: "status", memberID: member.ID, aboutID: counterpart.ID, status: status})
	return nil
}

func (r *recorder) SendReminder(_ context.Context, member, counterpart model.Member, _ int64) error {
	if err := r.failTo[member.ID]; err != nil {
		return err
	}
	r.sent = append(r.sent, sentMessage{kind: "reminder", memberID: member.ID, aboutID: counterpart.ID})
	return nil
}

func seedPairing(t *testing.T, status model.Status) (*repository.MemoryStore, int64, int64, int64) {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()

	a, err := store.CreateMember(ctx, model.Member{TelegramID: 100, FullName: "Ada", IsActive: true})
	if err != nil {
		t.Fatalf("seed member: %v", err)
	}
	b, err := store.CreateMember(ctx, model.Member{TelegramID: 200, FullName: "Grace", IsActive: true})
	if err != nil {
		t.Fatalf("seed member: %v", err)
	}
	id, err := store.CreatePairing(ctx, a, b, status)
	if err != nil {
		t.Fatalf("seed pairing: %v", err)
	}
	return store, id, a, b
}

func TestDispatcherAnnouncePairing(t *testing.T) {
	Convey("Given a pairing between two members", t, func() {
		store, id, a, b := seedPairing(t, model.StatusPending)
		rec := &recorder{}
		d := NewDispatcher(store, rec)

		Convey("Both participants are told about each other", func() {
			So(d.AnnouncePairing(context.Background(), id), ShouldBeNil)
			So(rec.sent, ShouldHaveLength, 2)
			So(rec.sent[0], ShouldResemble, sentMessage{kind: "pairing", memberID: a, aboutID: b})
			So(rec.sent[1], ShouldResemble, sentMessage{kind: "pairing", memberID: b, aboutID: a})
		})

		Convey("One failed delivery does not block the other", func() {
			rec.failTo = map[int64]error{a: errors.New("blocked")}
			err := d.AnnouncePairing(context.Background(), id)
			So(err, ShouldNotBeNil)
			So(rec.sent, ShouldHaveLength, 1)
			So(rec.sent[0].memberID, ShouldEqual, b)
		})

		Convey("An unknown pairing is an error", func() {
			err := d.AnnouncePairing(context.Background(), 999)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestDispatcherStatusChange(t *testing.T) {
	Convey("Given an announced status change", t, func() {
		store, id, a, b := seedPairing(t, model.StatusPending)
		rec := &recorder{}
		d := NewDispatcher(store, rec)

		Convey("Acceptance goes only to the non-acting participant", func() {
			So(d.AnnounceStatusChange(context.Background(), id, a, model.StatusAccepted), ShouldBeNil)
			So(rec.sent, ShouldHaveLength, 1)
			So(rec.sent[0], ShouldResemble, sentMessage{
				kind: "status", memberID: b, aboutID: a, status: model.StatusAccepted,
			})
		})

		Convey("Decline by the second participant notifies the first", func() {
			So(d.AnnounceStatusChange(context.Background(), id, b, model.StatusDeclined), ShouldBeNil)
			So(rec.sent, ShouldHaveLength, 1)
			So(rec.sent[0].memberID, ShouldEqual, a)
			So(rec.sent[0].aboutID, ShouldEqual, b)
		})

		Convey("Completion notifies both participants", func() {
			So(d.AnnounceStatusChange(context.Background(), id, a, model.StatusCompleted), ShouldBeNil)
			So(rec.sent, ShouldHaveLength, 2)
		})

		Convey("Statuses without a member facing message are silent", func() {
			So(d.AnnounceStatusChange(context.Background(), id, a, model.StatusMissed), ShouldBeNil)
			So(rec.sent, ShouldBeEmpty)
		})
	})
}

func TestDispatcherRemind(t *testing.T) {
	Convey("Given reminder dispatch", t, func() {
		rec := &recorder{}

		Convey("A pending pairing reminds both participants", func() {
			store, id, _, _ := seedPairing(t, model.StatusPending)
			d := NewDispatcher(store, rec)
			So(d.RemindPairing(context.Background(), id), ShouldBeNil)
			So(rec.sent, ShouldHaveLength, 2)
		})

		Convey("A pairing that moved on is skipped", func() {
			store, id, _, _ := seedPairing(t, model.StatusAccepted)
			d := NewDispatcher(store, rec)
			So(d.RemindPairing(context.Background(), id), ShouldBeNil)
			So(rec.sent, ShouldBeEmpty)
		})
	})
}
