package models

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// MatchStatus is the state of a proposed meetup.
type MatchStatus string

const (
	MatchStatusPending     MatchStatus = "pending"
	MatchStatusAccepted    MatchStatus = "accepted"
	MatchStatusRejected    MatchStatus = "rejected"
	MatchStatusRescheduled MatchStatus = "rescheduled"
	// MatchStatusUnknown stands in for anything a backend sends that is not
	// one of the statuses above. It never transitions.
	MatchStatusUnknown MatchStatus = "unknown"
)

// MatchStatuses lists the known statuses in lifecycle order.
var MatchStatuses = []MatchStatus{
	MatchStatusPending,
	MatchStatusAccepted,
	MatchStatusRejected,
	MatchStatusRescheduled,
}

// ErrInvalidTransition is returned for any status change outside the transition table.
var ErrInvalidTransition = stderrors.New("invalid match status transition")

// transitions is the complete table of legal status changes.
var transitions = map[MatchStatus][]MatchStatus{
	MatchStatusPending: {MatchStatusAccepted, MatchStatusRejected, MatchStatusRescheduled},
}

// ParseMatchStatus maps s case-insensitively onto a known status.
// An empty string is pending; anything unrecognised is MatchStatusUnknown.
func ParseMatchStatus(s string) MatchStatus {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return MatchStatusPending
	}
	for _, st := range MatchStatuses {
		if s == string(st) {
			return st
		}
	}
	return MatchStatusUnknown
}

func (s *MatchStatus) UnmarshalText(text []byte) error {
	*s = ParseMatchStatus(string(text))
	return nil
}

// Known reports whether s is one of the lifecycle statuses.
func (s MatchStatus) Known() bool {
	return s != MatchStatusUnknown && ParseMatchStatus(string(s)) == s
}

// Terminal reports whether no further transition is possible from s.
func (s MatchStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to MatchStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition returns to if from -> to is legal, or ErrInvalidTransition.
func Transition(from, to MatchStatus) (MatchStatus, error) {
	if !CanTransition(from, to) {
		return from, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return to, nil
}

// MatchRole is a user's relation to a match.
type MatchRole string

const (
	RoleNone      MatchRole = ""
	RoleRequester MatchRole = "requester"
	RoleTarget    MatchRole = "target"
)

// ResponseAction is what the target of a pending match can do with it.
type ResponseAction string

const (
	ActionAccept     ResponseAction = "accept"
	ActionReject     ResponseAction = "reject"
	ActionReschedule ResponseAction = "reschedule"
)

// ResponseActions lists the actions in display order.
var ResponseActions = []ResponseAction{ActionAccept, ActionReject, ActionReschedule}

// Status returns the status an action moves a pending match into.
func (a ResponseAction) Status() (MatchStatus, error) {
	switch ResponseAction(strings.ToLower(string(a))) {
	case ActionAccept:
		return MatchStatusAccepted, nil
	case ActionReject:
		return MatchStatusRejected, nil
	case ActionReschedule:
		return MatchStatusRescheduled, nil
	default:
		return MatchStatusUnknown, fmt.Errorf("unknown action: %s", a)
	}
}

type Match struct {
	ID           int64       `json:"id"`
	RequesterID  int64       `json:"requester_id"`
	TargetID     int64       `json:"target_id"`
	TimeSlotID   int64       `json:"time_slot_id"`
	ProposedTime Instant     `json:"proposed_time"`
	VenueID      int64       `json:"venue_id"`
	Message      string      `json:"message"`
	Status       MatchStatus `json:"status"`
	CreatedAt    Instant     `json:"created_at"`
}

// RoleOf returns how userID participates in the match.
func (m Match) RoleOf(userID int64) MatchRole {
	switch {
	case userID != 0 && userID == m.TargetID:
		return RoleTarget
	case userID != 0 && userID == m.RequesterID:
		return RoleRequester
	default:
		return RoleNone
	}
}

// OtherParty returns the id of the participant who is not userID.
func (m Match) OtherParty(userID int64) (int64, bool) {
	switch m.RoleOf(userID) {
	case RoleTarget:
		return m.RequesterID, true
	case RoleRequester:
		return m.TargetID, true
	default:
		return 0, false
	}
}

// CanRespond reports whether userID may accept, reject or reschedule the match.
func (m Match) CanRespond(userID int64) bool {
	return m.RoleOf(userID) == RoleTarget && !m.Status.Terminal()
}

// Respond validates that actor may apply action and returns the resulting status.
func (m Match) Respond(actorID int64, action ResponseAction) (MatchStatus, error) {
	to, err := action.Status()
	if err != nil {
		return m.Status, err
	}
	if m.RoleOf(actorID) != RoleTarget {
		return m.Status, ErrNotTarget
	}
	return Transition(m.Status, to)
}

// ErrNotTarget is returned when someone other than the target tries to respond.
var ErrNotTarget = stderrors.New("only the invited user can respond to this match")

// MatchInput is the body of POST /matches/.
type MatchInput struct {
	RequesterID  int64   `json:"requester_id"`
	TargetID     int64   `json:"target_id"`
	TimeSlotID   int64   `json:"time_slot_id"`
	ProposedTime Instant `json:"proposed_time"`
	VenueID      int64   `json:"venue_id"`
	Message      string  `json:"message"`
}

// MatchUpdate is the body of PUT /matches/{id}. Only Status is needed for
// accept and reject; a reschedule also names the replacement slot and venue.
type MatchUpdate struct {
	Status       MatchStatus `json:"status"`
	TimeSlotID   int64       `json:"time_slot_id,omitempty"`
	VenueID      int64       `json:"venue_id,omitempty"`
	ProposedTime *Instant    `json:"proposed_time,omitempty"`
}
