package invite_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/julianstephens/coffeematch/internal/errors"
	"github.com/julianstephens/coffeematch/internal/invite"
	"github.com/julianstephens/coffeematch/internal/matches"
	"github.com/julianstephens/coffeematch/internal/models"
	"github.com/julianstephens/coffeematch/internal/session"
	"github.com/julianstephens/coffeematch/internal/testserver"
)

var tomorrow10 = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

type fixture struct {
	env   *testserver.Env
	ada   *models.User // id 1, the target
	grace *models.User // id 2, the requester
	venue *models.Venue
	slot  *models.TimeSlot
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	env := testserver.New(t)
	c := env.Client

	ada, err := c.Register(ctx, models.RegisterInput{Name: "Ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	grace, err := c.Register(ctx, models.RegisterInput{Name: "Grace", Email: "grace@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	venue, err := c.CreateVenue(ctx, models.VenueInput{Name: "Sightglass", Type: "coffee", CreatedByID: grace.ID})
	if err != nil {
		t.Fatal(err)
	}
	slot, err := c.CreateSlot(ctx, models.NewSlotInput(ada.ID, tomorrow10))
	if err != nil {
		t.Fatal(err)
	}
	return fixture{env: env, ada: ada, grace: grace, venue: venue, slot: slot}
}

// signIn returns a session and workflow logged in as email.
func (f fixture) signIn(t *testing.T, email string) (*session.Session, *invite.Workflow) {
	t.Helper()
	s := session.New(f.env.Client, session.Options{Location: time.UTC})
	if err := s.Login(context.Background(), email); err != nil {
		t.Fatalf("Login(%s) failed: %v", email, err)
	}
	return s, invite.New(s, f.env.Client)
}

func TestAvailableOrAll(t *testing.T) {
	open := models.TimeSlot{ID: 1, Status: models.SlotStatusAvailable}
	booked := models.TimeSlot{ID: 2, Status: models.SlotStatusBooked}

	tests := []struct {
		name  string
		slots []models.TimeSlot
		want  []int64
	}{
		{"mixed keeps only available", []models.TimeSlot{open, booked}, []int64{1}},
		{"only booked falls back to all", []models.TimeSlot{booked}, []int64{2}},
		{"none", nil, nil},
		{"status case-insensitive", []models.TimeSlot{{ID: 3, Status: "Available"}, booked}, []int64{3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := invite.AvailableOrAll(tt.slots)
			if len(got) != len(tt.want) {
				t.Fatalf("AvailableOrAll() = %+v, want ids %v", got, tt.want)
			}
			for i := range got {
				if got[i].ID != tt.want[i] {
					t.Errorf("AvailableOrAll()[%d] = %d, want %d", i, got[i].ID, tt.want[i])
				}
			}
		})
	}
}

// The end-to-end scenario: Grace invites Ada for Ada's slot, Ada accepts.
func TestInviteAndAccept(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, requester := f.signIn(t, "grace@example.com")
	if err := requester.Open(ctx, f.ada.ID); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if requester.State() != invite.StateReady || len(requester.Slots()) != 1 {
		t.Fatalf("state = %s, slots = %+v", requester.State(), requester.Slots())
	}
	if requester.Target().Name != "Ada" {
		t.Errorf("target = %+v", requester.Target())
	}

	m, err := requester.Submit(ctx, invite.Proposal{SlotID: f.slot.ID, VenueID: f.venue.ID, Message: "coffee?"})
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if m.Status != models.MatchStatusPending || m.Message != "coffee?" || !m.ProposedTime.Equal(f.slot.StartTime) {
		t.Errorf("match = %+v", m)
	}
	if requester.State() != invite.StateClosed || requester.Target().ID != 0 || len(requester.Slots()) != 0 {
		t.Error("workflow not cleared after submit")
	}

	targetSess, target := f.signIn(t, "ada@example.com")
	received, _ := matches.BuildCards(targetSess.MatchView(), matches.FilterPending)
	if len(received) != 1 || !received[0].Actionable() || received[0].Counterpart != "Grace" {
		t.Fatalf("Ada's pending cards = %+v", received)
	}

	if _, err := target.Respond(ctx, m.ID, models.ActionAccept); err != nil {
		t.Fatalf("Respond(accept) failed: %v", err)
	}
	received, _ = matches.BuildCards(targetSess.MatchView(), matches.FilterPending)
	if len(received) != 0 {
		t.Errorf("accepted match still in pending view: %+v", received)
	}
	all, _ := matches.BuildCards(targetSess.MatchView(), matches.FilterAll)
	if len(all) != 1 || all[0].Match.Status != models.MatchStatusAccepted || all[0].Actionable() {
		t.Errorf("after accept = %+v", all)
	}
	if slots := targetSess.Snapshot().Slots; len(slots) != 1 || slots[0].Status != models.SlotStatusBooked {
		t.Errorf("own slots after accept = %+v", slots)
	}

	if _, err := target.Respond(ctx, m.ID, models.ActionAccept); !errors.IsValidation(err) {
		t.Errorf("second accept error = %v, want local validation", err)
	}
}

func TestRequesterCannotRespond(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	_, requester := f.signIn(t, "grace@example.com")
	if err := requester.Open(ctx, f.ada.ID); err != nil {
		t.Fatal(err)
	}
	m, err := requester.Submit(ctx, invite.Proposal{SlotID: f.slot.ID, VenueID: f.venue.ID})
	if err != nil {
		t.Fatal(err)
	}
	if m.Message != "" {
		t.Errorf("blank message sent as %q", m.Message)
	}

	if _, err := requester.Respond(ctx, m.ID, models.ActionAccept); !errors.IsValidation(err) {
		t.Errorf("requester Respond() error = %v, want validation", err)
	}

	// Bypassing the local guard still hits the server rule.
	_, err = f.env.Client.RespondToMatch(ctx, f.grace.ID, m.ID, models.MatchStatusAccepted)
	if err == nil || err.Error() != "Only the invited user can respond to this match" {
		t.Errorf("server requester accept error = %v", err)
	}
}

func TestOpenGuards(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	anon := invite.New(session.New(f.env.Client, session.Options{}), f.env.Client)
	if err := anon.Open(ctx, f.ada.ID); !errors.IsValidation(err) {
		t.Errorf("Open() without session error = %v, want validation", err)
	}

	_, w := f.signIn(t, "ada@example.com")
	if err := w.Open(ctx, f.ada.ID); !errors.IsValidation(err) {
		t.Errorf("Open(self) error = %v, want validation", err)
	}
	if w.State() != invite.StateClosed {
		t.Errorf("state after rejected open = %s", w.State())
	}
}

func TestOpenTargetWithoutSlotsDisablesSubmit(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	_, w := f.signIn(t, "ada@example.com")

	if err := w.Open(ctx, f.grace.ID); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if w.State() != invite.StateNoSlots || w.CanSubmit() {
		t.Errorf("state = %s, CanSubmit = %v", w.State(), w.CanSubmit())
	}
	if _, err := w.Submit(ctx, invite.Proposal{SlotID: f.slot.ID, VenueID: f.venue.ID}); !errors.IsValidation(err) {
		t.Errorf("Submit() with no slots error = %v, want validation", err)
	}
}

func TestOpenTargetWithOnlyBookedSlotsFallsBack(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	// Book Ada's only slot through an accepted match.
	_, requester := f.signIn(t, "grace@example.com")
	requester.Open(ctx, f.ada.ID)
	m, err := requester.Submit(ctx, invite.Proposal{SlotID: f.slot.ID, VenueID: f.venue.ID})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.env.Client.RespondToMatch(ctx, f.ada.ID, m.ID, models.MatchStatusAccepted); err != nil {
		t.Fatal(err)
	}

	if err := requester.Open(ctx, f.ada.ID); err != nil {
		t.Fatal(err)
	}
	slots := requester.Slots()
	if requester.State() != invite.StateReady || len(slots) != 1 || slots[0].Status != models.SlotStatusBooked {
		t.Errorf("fallback picker = %s %+v", requester.State(), slots)
	}

	// The server still refuses the booked slot and the workflow stays open.
	_, err = requester.Submit(ctx, invite.Proposal{SlotID: f.slot.ID, VenueID: f.venue.ID})
	if err == nil || err.Error() != "Time slot is already booked" {
		t.Errorf("Submit(booked) error = %v", err)
	}
	if requester.State() != invite.StateReady || requester.Target().ID != f.ada.ID {
		t.Error("failed submit must leave the workflow intact")
	}
}

func TestSubmitGuards(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	_, w := f.signIn(t, "grace@example.com")
	if err := w.Open(ctx, f.ada.ID); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		p    invite.Proposal
	}{
		{"missing slot", invite.Proposal{VenueID: f.venue.ID}},
		{"missing venue", invite.Proposal{SlotID: f.slot.ID}},
		{"slot not offered", invite.Proposal{SlotID: f.slot.ID + 100, VenueID: f.venue.ID}},
		{"venue not cached", invite.Proposal{SlotID: f.slot.ID, VenueID: f.venue.ID + 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := w.Submit(ctx, tt.p); !errors.IsValidation(err) {
				t.Errorf("Submit() error = %v, want validation", err)
			}
			if w.State() != invite.StateReady {
				t.Errorf("state = %s after rejected submit", w.State())
			}
		})
	}

	sent, err := f.env.Client.ListSent(ctx, f.grace.ID)
	if err != nil || len(sent) != 0 {
		t.Errorf("rejected submits reached the server: %+v", sent)
	}
}

func TestStaleSlotLoadIsDropped(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	carol, err := f.env.Client.Register(ctx, models.RegisterInput{Name: "Carol", Email: "carol@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	_, w := f.signIn(t, "grace@example.com")

	first, err := w.Begin(f.ada.ID)
	if err != nil {
		t.Fatal(err)
	}
	adaSlots, err := w.FetchSlots(ctx, f.ada.ID)
	if err != nil {
		t.Fatal(err)
	}

	second, err := w.Begin(carol.ID)
	if err != nil {
		t.Fatal(err)
	}
	if second <= first {
		t.Fatalf("generation did not advance: %d -> %d", first, second)
	}

	if w.ApplySlots(first, adaSlots, nil) {
		t.Error("ApplySlots() accepted a superseded generation")
	}
	if w.State() != invite.StateLoading || w.Target().ID != carol.ID {
		t.Errorf("stale load changed state: %s target %d", w.State(), w.Target().ID)
	}
	if !w.ApplySlots(second, nil, nil) || w.State() != invite.StateNoSlots {
		t.Errorf("current load not applied: %s", w.State())
	}
}

func TestFailedLoadDisablesPicker(t *testing.T) {
	f := setup(t)
	_, w := f.signIn(t, "grace@example.com")
	gen, err := w.Begin(f.ada.ID)
	if err != nil {
		t.Fatal(err)
	}
	boom := stderrors.New("Request failed.")
	w.ApplySlots(gen, nil, boom)
	if w.State() != invite.StateFailed || w.Err() != boom || w.CanSubmit() {
		t.Errorf("state = %s err = %v", w.State(), w.Err())
	}
}

func TestLogoutClosesWorkflow(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	s, w := f.signIn(t, "grace@example.com")

	gen, err := w.Begin(f.ada.ID)
	if err != nil {
		t.Fatal(err)
	}
	slots, _ := w.FetchSlots(ctx, f.ada.ID)

	s.Logout()
	if w.State() != invite.StateClosed {
		t.Errorf("state after logout = %s", w.State())
	}
	if w.ApplySlots(gen, slots, nil) {
		t.Error("slot load from before logout was applied")
	}
}

func TestReschedule(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, requester := f.signIn(t, "grace@example.com")
	requester.Open(ctx, f.ada.ID)
	m, err := requester.Submit(ctx, invite.Proposal{SlotID: f.slot.ID, VenueID: f.venue.ID, Message: "coffee?"})
	if err != nil {
		t.Fatal(err)
	}
	graceSlot, err := f.env.Client.CreateSlot(ctx, models.NewSlotInput(f.grace.ID, tomorrow10.Add(24*time.Hour)))
	if err != nil {
		t.Fatal(err)
	}

	targetSess, target := f.signIn(t, "ada@example.com")

	open, err := target.LoadRescheduleSlots(ctx, m.ID)
	if err != nil || len(open) != 1 || open[0].ID != graceSlot.ID {
		t.Fatalf("LoadRescheduleSlots() = %+v, %v", open, err)
	}
	if _, err := target.Reschedule(ctx, m.ID, f.slot.ID, 0); !errors.IsValidation(err) {
		t.Errorf("Reschedule(onto own slot) error = %v, want validation", err)
	}

	counter, err := target.Reschedule(ctx, m.ID, graceSlot.ID, 0)
	if err != nil {
		t.Fatalf("Reschedule() failed: %v", err)
	}
	if counter.RequesterID != f.ada.ID || counter.TargetID != f.grace.ID || counter.VenueID != f.venue.ID {
		t.Errorf("counter = %+v", counter)
	}

	snap := targetSess.Snapshot()
	if len(snap.Received) != 1 || snap.Received[0].Status != models.MatchStatusRescheduled {
		t.Errorf("Ada received after reschedule = %+v", snap.Received)
	}
	if len(snap.Sent) != 1 || snap.Sent[0].ID != counter.ID {
		t.Errorf("Ada sent after reschedule = %+v", snap.Sent)
	}

	if _, err := requester.Respond(ctx, m.ID, models.ActionReject); !errors.IsValidation(err) {
		t.Errorf("responding to own original proposal error = %v", err)
	}
}
