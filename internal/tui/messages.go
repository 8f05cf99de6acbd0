package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/coffeematch/internal/invite"
	"github.com/julianstephens/coffeematch/internal/models"
	"github.com/julianstephens/coffeematch/internal/session"
)

// Every network call runs inside a tea.Cmd and reports back with one of
// these. Update is the only place their results reach the model.

type enteredMsg struct {
	email string
	err   error
}

type directoryMsg struct {
	res session.Directory
	err error
}

type venuesMsg struct {
	res session.Venues
	err error
}

type slotsMsg struct {
	res session.Slots
	err error
}

type matchesMsg struct {
	res session.Matches
	err error
}

type inviteSlotsMsg struct {
	gen   uint64
	slots []models.TimeSlot
	err   error
}

type inviteSentMsg struct {
	match *models.Match
	err   error
}

type respondedMsg struct {
	match *models.Match
	err   error
}

type rescheduleSlotsMsg struct {
	matchID int64
	slots   []models.TimeSlot
	err     error
}

type rescheduledMsg struct {
	counter *models.Match
	err     error
}

type slotAddedMsg struct {
	slot *models.TimeSlot
	err  error
}

type venueAddedMsg struct {
	venue *models.Venue
	err   error
}

type profileSavedMsg struct {
	err error
}

type logoutMsg struct{}

func loginCmd(ctx context.Context, sess *session.Session, email string) tea.Cmd {
	return func() tea.Msg {
		err := sess.Login(ctx, email)
		return enteredMsg{email: email, err: err}
	}
}

func registerCmd(ctx context.Context, sess *session.Session, in models.RegisterInput) tea.Cmd {
	return func() tea.Msg {
		err := sess.Register(ctx, in)
		return enteredMsg{email: in.Email, err: err}
	}
}

func refreshCmd(ctx context.Context, sess *session.Session) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			res, err := sess.FetchDirectory(ctx)
			return directoryMsg{res, err}
		},
		func() tea.Msg {
			res, err := sess.FetchVenues(ctx)
			return venuesMsg{res, err}
		},
		func() tea.Msg {
			res, err := sess.FetchSlots(ctx)
			return slotsMsg{res, err}
		},
		func() tea.Msg {
			res, err := sess.FetchMatches(ctx)
			return matchesMsg{res, err}
		},
	)
}

func inviteSlotsCmd(ctx context.Context, wf *invite.Workflow, gen uint64, targetID int64) tea.Cmd {
	return func() tea.Msg {
		slots, err := wf.FetchSlots(ctx, targetID)
		return inviteSlotsMsg{gen: gen, slots: slots, err: err}
	}
}

func submitInviteCmd(ctx context.Context, wf *invite.Workflow, p invite.Proposal) tea.Cmd {
	return func() tea.Msg {
		m, err := wf.Submit(ctx, p)
		return inviteSentMsg{match: m, err: err}
	}
}

func respondCmd(ctx context.Context, wf *invite.Workflow, matchID int64, action models.ResponseAction) tea.Cmd {
	return func() tea.Msg {
		m, err := wf.Respond(ctx, matchID, action)
		return respondedMsg{match: m, err: err}
	}
}

func rescheduleSlotsCmd(ctx context.Context, wf *invite.Workflow, matchID int64) tea.Cmd {
	return func() tea.Msg {
		slots, err := wf.LoadRescheduleSlots(ctx, matchID)
		return rescheduleSlotsMsg{matchID: matchID, slots: slots, err: err}
	}
}

func rescheduleCmd(ctx context.Context, wf *invite.Workflow, matchID, slotID, venueID int64) tea.Cmd {
	return func() tea.Msg {
		counter, err := wf.Reschedule(ctx, matchID, slotID, venueID)
		return rescheduledMsg{counter: counter, err: err}
	}
}

func addSlotCmd(ctx context.Context, sess *session.Session) tea.Cmd {
	return func() tea.Msg {
		slot, err := sess.SubmitAvailability(ctx)
		return slotAddedMsg{slot: slot, err: err}
	}
}

func addVenueCmd(ctx context.Context, sess *session.Session, in models.VenueInput) tea.Cmd {
	return func() tea.Msg {
		v, err := sess.CreateVenue(ctx, in)
		return venueAddedMsg{venue: v, err: err}
	}
}

func saveProfileCmd(ctx context.Context, sess *session.Session, in models.ProfileUpdate) tea.Cmd {
	return func() tea.Msg {
		return profileSavedMsg{err: sess.UpdateProfile(ctx, in)}
	}
}
