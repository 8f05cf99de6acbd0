// Package invite drives a proposal from picking a target through the
// target's response.
package invite

import (
	"context"
	"strings"
	"sync"

	"github.com/julianstephens/coffeematch/internal/errors"
	"github.com/julianstephens/coffeematch/internal/logger"
	"github.com/julianstephens/coffeematch/internal/models"
	"github.com/julianstephens/coffeematch/internal/session"
)

// API is the slice of the backend client the workflow uses.
type API interface {
	ListSlots(ctx context.Context, userID int64) ([]models.TimeSlot, error)
	CreateMatch(ctx context.Context, in models.MatchInput) (*models.Match, error)
	RespondToMatch(ctx context.Context, actorID, matchID int64, status models.MatchStatus) (*models.Match, error)
	RescheduleMatch(ctx context.Context, actorID, matchID, newSlotID, newVenueID int64) (*models.Match, error)
}

type State int

const (
	StateClosed State = iota
	StateLoading
	StateReady
	// StateNoSlots means the target has no slots at all; submission is disabled.
	StateNoSlots
	// StateFailed means the slot fetch failed; reopen to retry.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateNoSlots:
		return "no slots"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// AvailableOrAll returns the available slots, or every slot when none is
// available, so the picker is never empty while any slot exists.
func AvailableOrAll(slots []models.TimeSlot) []models.TimeSlot {
	available := make([]models.TimeSlot, 0, len(slots))
	for _, s := range slots {
		if s.IsAvailable() {
			available = append(available, s)
		}
	}
	if len(available) == 0 {
		return slots
	}
	return available
}

// Proposal is what the requester composes once slots are loaded.
type Proposal struct {
	SlotID  int64
	VenueID int64
	Message string
}

type Workflow struct {
	sess *session.Session
	api  API

	mu     sync.Mutex
	gen    uint64
	state  State
	target models.User
	slots  []models.TimeSlot
	err    error
}

// New creates a closed workflow bound to sess. It closes itself whenever the
// session identity changes.
func New(sess *session.Session, api API) *Workflow {
	w := &Workflow{sess: sess, api: api}
	sess.OnReset(w.Close)
	return w
}

// Begin starts a new load for targetID and returns its generation. Results
// for older generations are ignored by ApplySlots.
func (w *Workflow) Begin(targetID int64) (uint64, error) {
	self := w.sess.UserID()
	if self == 0 {
		return 0, session.ErrNoSession
	}
	if targetID == 0 {
		return 0, errors.Validation("Choose someone to invite.")
	}
	if targetID == self {
		return 0, errors.Validation("You cannot invite yourself.")
	}

	target, ok := w.sess.DirectoryUser(targetID)
	if !ok {
		target = models.User{ID: targetID, Name: w.sess.UserName(targetID)}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.gen++
	w.state = StateLoading
	w.target = target
	w.slots = nil
	w.err = nil
	return w.gen, nil
}

// ApplySlots stores the result of the slot fetch for generation gen. It
// reports false if gen has been superseded.
func (w *Workflow) ApplySlots(gen uint64, slots []models.TimeSlot, err error) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.gen || w.state != StateLoading {
		logger.Debug("Dropping stale slot load", "generation", gen, "current", w.gen)
		return false
	}
	switch {
	case err != nil:
		w.state = StateFailed
		w.err = err
	case len(slots) == 0:
		w.state = StateNoSlots
	default:
		w.state = StateReady
		w.slots = AvailableOrAll(slots)
	}
	return true
}

// FetchSlots loads the target's slots for a generation returned by Begin.
func (w *Workflow) FetchSlots(ctx context.Context, targetID int64) ([]models.TimeSlot, error) {
	return w.api.ListSlots(ctx, targetID)
}

// Open begins a workflow for targetID and loads its slots synchronously.
func (w *Workflow) Open(ctx context.Context, targetID int64) error {
	gen, err := w.Begin(targetID)
	if err != nil {
		return err
	}
	slots, err := w.FetchSlots(ctx, targetID)
	w.ApplySlots(gen, slots, err)
	return err
}

// Close discards the target and loaded slots and invalidates in-flight loads.
func (w *Workflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.gen++
	w.state = StateClosed
	w.target = models.User{}
	w.slots = nil
	w.err = nil
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Workflow) Generation() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.gen
}

func (w *Workflow) Target() models.User {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.target
}

// Slots returns the slots offered in the picker.
func (w *Workflow) Slots() []models.TimeSlot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.TimeSlot(nil), w.slots...)
}

// Err is the load failure in StateFailed.
func (w *Workflow) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// CanSubmit reports whether a proposal can be sent.
func (w *Workflow) CanSubmit() bool {
	return w.State() == StateReady
}

// Submit sends p to the current target. On success the workflow closes and
// the session's matches are reloaded; on failure nothing changes.
func (w *Workflow) Submit(ctx context.Context, p Proposal) (*models.Match, error) {
	in, err := w.proposal(p)
	if err != nil {
		return nil, err
	}

	m, err := w.api.CreateMatch(ctx, in)
	if err != nil {
		return nil, err
	}
	logger.Info("Invitation sent", "match_id", m.ID, "target_id", m.TargetID)

	w.Close()
	return m, w.sess.RefreshMatches(ctx)
}

func (w *Workflow) proposal(p Proposal) (models.MatchInput, error) {
	self := w.sess.UserID()
	if self == 0 {
		return models.MatchInput{}, session.ErrNoSession
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateReady || w.target.ID == 0 {
		return models.MatchInput{}, errors.Validation("Choose someone with availability to invite.")
	}
	if p.SlotID == 0 || p.VenueID == 0 {
		return models.MatchInput{}, errors.Validation("Select a time slot and a venue.")
	}

	var slot *models.TimeSlot
	for i := range w.slots {
		if w.slots[i].ID == p.SlotID {
			slot = &w.slots[i]
			break
		}
	}
	if slot == nil {
		return models.MatchInput{}, errors.Validation("That time slot is no longer offered. Reopen the invite to refresh.")
	}
	if _, ok := w.sess.Venue(p.VenueID); !ok {
		return models.MatchInput{}, errors.Validation("That venue is no longer listed.")
	}

	return models.MatchInput{
		RequesterID:  self,
		TargetID:     w.target.ID,
		TimeSlotID:   slot.ID,
		ProposedTime: slot.StartTime,
		VenueID:      p.VenueID,
		Message:      strings.TrimSpace(p.Message),
	}, nil
}

// receivedFor returns the cached received match after checking that the
// signed-in user may apply action to it.
func (w *Workflow) receivedFor(matchID int64, action models.ResponseAction) (models.Match, int64, error) {
	self := w.sess.UserID()
	if self == 0 {
		return models.Match{}, 0, session.ErrNoSession
	}
	m, ok := w.sess.ReceivedMatch(matchID)
	if !ok {
		return models.Match{}, 0, errors.Validationf("Match #%d is not one of your invitations.", matchID)
	}
	if _, err := m.Respond(self, action); err != nil {
		if m.RoleOf(self) != models.RoleTarget {
			return models.Match{}, 0, errors.Validation("Only the invited user can respond to this match.")
		}
		return models.Match{}, 0, errors.Validationf("Match #%d is already %s.", matchID, m.Status)
	}
	return m, self, nil
}

// Respond accepts or rejects a received pending match, then reloads matches
// and own slots.
func (w *Workflow) Respond(ctx context.Context, matchID int64, action models.ResponseAction) (*models.Match, error) {
	to, err := action.Status()
	if err != nil || to == models.MatchStatusRescheduled {
		return nil, errors.Validation("Choose accept or reject.")
	}
	_, self, err := w.receivedFor(matchID, action)
	if err != nil {
		return nil, err
	}

	m, err := w.api.RespondToMatch(ctx, self, matchID, to)
	if err != nil {
		return nil, err
	}
	logger.Info("Responded to match", "match_id", matchID, "status", m.Status)

	if err := w.sess.RefreshMatches(ctx); err != nil {
		return m, err
	}
	return m, w.sess.RefreshSlots(ctx)
}

// LoadRescheduleSlots returns the requester's open slots a received pending
// match can be moved to.
func (w *Workflow) LoadRescheduleSlots(ctx context.Context, matchID int64) ([]models.TimeSlot, error) {
	m, _, err := w.receivedFor(matchID, models.ActionReschedule)
	if err != nil {
		return nil, err
	}
	slots, err := w.api.ListSlots(ctx, m.RequesterID)
	if err != nil {
		return nil, err
	}
	open := make([]models.TimeSlot, 0, len(slots))
	for _, s := range slots {
		if s.IsAvailable() {
			open = append(open, s)
		}
	}
	return open, nil
}

// Reschedule declines matchID in favour of a counter-proposal on slotID, one
// of the requester's open slots. A zero venueID keeps the original venue.
func (w *Workflow) Reschedule(ctx context.Context, matchID, slotID, venueID int64) (*models.Match, error) {
	if slotID == 0 {
		return nil, errors.Validation("Select a new time slot.")
	}
	if venueID != 0 {
		if _, ok := w.sess.Venue(venueID); !ok {
			return nil, errors.Validation("That venue is no longer listed.")
		}
	}

	open, err := w.LoadRescheduleSlots(ctx, matchID)
	if err != nil {
		return nil, err
	}
	found := false
	for _, s := range open {
		if s.ID == slotID {
			found = true
			break
		}
	}
	if !found {
		return nil, errors.Validation("That time slot is not open on the requester's calendar.")
	}

	counter, err := w.api.RescheduleMatch(ctx, w.sess.UserID(), matchID, slotID, venueID)
	if err != nil {
		return nil, err
	}
	logger.Info("Rescheduled match", "match_id", matchID, "counter_id", counter.ID)
	return counter, w.sess.RefreshMatches(ctx)
}
