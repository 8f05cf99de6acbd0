package models

import (
	"encoding/json"
	stderrors "errors"
	"testing"
)

func TestParseMatchStatus(t *testing.T) {
	tests := []struct {
		in   string
		want MatchStatus
	}{
		{"pending", MatchStatusPending},
		{"PENDING", MatchStatusPending},
		{" Accepted ", MatchStatusAccepted},
		{"rejected", MatchStatusRejected},
		{"ReScheduled", MatchStatusRescheduled},
		{"", MatchStatusPending},
		{"cancelled", MatchStatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseMatchStatus(tt.in); got != tt.want {
				t.Errorf("ParseMatchStatus(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTransitionTable(t *testing.T) {
	all := append([]MatchStatus{MatchStatusUnknown}, MatchStatuses...)
	legal := map[[2]MatchStatus]bool{
		{MatchStatusPending, MatchStatusAccepted}:    true,
		{MatchStatusPending, MatchStatusRejected}:    true,
		{MatchStatusPending, MatchStatusRescheduled}: true,
	}

	for _, from := range all {
		for _, to := range all {
			want := legal[[2]MatchStatus{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}

			next, err := Transition(from, to)
			if want {
				if err != nil || next != to {
					t.Errorf("Transition(%s, %s) = %s, %v; want %s, nil", from, to, next, err, to)
				}
			} else {
				if !stderrors.Is(err, ErrInvalidTransition) {
					t.Errorf("Transition(%s, %s) error = %v, want ErrInvalidTransition", from, to, err)
				}
				if next != from {
					t.Errorf("Transition(%s, %s) changed status to %s on failure", from, to, next)
				}
			}
		}
	}
}

func TestTerminal(t *testing.T) {
	if MatchStatusPending.Terminal() {
		t.Error("pending should not be terminal")
	}
	for _, s := range []MatchStatus{MatchStatusAccepted, MatchStatusRejected, MatchStatusRescheduled, MatchStatusUnknown} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}

func TestMatchRoles(t *testing.T) {
	m := Match{ID: 1, RequesterID: 2, TargetID: 1, Status: MatchStatusPending}

	if got := m.RoleOf(1); got != RoleTarget {
		t.Errorf("RoleOf(target) = %q", got)
	}
	if got := m.RoleOf(2); got != RoleRequester {
		t.Errorf("RoleOf(requester) = %q", got)
	}
	if got := m.RoleOf(3); got != RoleNone {
		t.Errorf("RoleOf(stranger) = %q", got)
	}
	if got := m.RoleOf(0); got != RoleNone {
		t.Errorf("RoleOf(0) = %q", got)
	}

	if other, ok := m.OtherParty(1); !ok || other != 2 {
		t.Errorf("OtherParty(1) = %d, %v; want 2, true", other, ok)
	}
	if _, ok := m.OtherParty(9); ok {
		t.Error("OtherParty(stranger) should report false")
	}

	if !m.CanRespond(1) {
		t.Error("target should be able to respond to a pending match")
	}
	if m.CanRespond(2) {
		t.Error("requester must not be able to respond")
	}

	m.Status = MatchStatusAccepted
	if m.CanRespond(1) {
		t.Error("target must not respond to a resolved match")
	}
}

func TestMatchRespond(t *testing.T) {
	pending := Match{ID: 7, RequesterID: 2, TargetID: 1, Status: MatchStatusPending}

	tests := []struct {
		name    string
		match   Match
		actor   int64
		action  ResponseAction
		want    MatchStatus
		wantErr error
	}{
		{name: "target accepts", match: pending, actor: 1, action: ActionAccept, want: MatchStatusAccepted},
		{name: "target rejects", match: pending, actor: 1, action: ActionReject, want: MatchStatusRejected},
		{name: "target reschedules", match: pending, actor: 1, action: ActionReschedule, want: MatchStatusRescheduled},
		{name: "requester accepts own proposal", match: pending, actor: 2, action: ActionAccept, want: MatchStatusPending, wantErr: ErrNotTarget},
		{
			name:    "double accept",
			match:   Match{ID: 7, RequesterID: 2, TargetID: 1, Status: MatchStatusAccepted},
			actor:   1,
			action:  ActionAccept,
			want:    MatchStatusAccepted,
			wantErr: ErrInvalidTransition,
		},
		{
			name:    "reject after accept",
			match:   Match{ID: 7, RequesterID: 2, TargetID: 1, Status: MatchStatusAccepted},
			actor:   1,
			action:  ActionReject,
			want:    MatchStatusAccepted,
			wantErr: ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.match.Respond(tt.actor, tt.action)
			if tt.wantErr != nil {
				if !stderrors.Is(err, tt.wantErr) {
					t.Fatalf("Respond() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("Respond() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Respond() = %s, want %s", got, tt.want)
			}
		})
	}

	if _, err := pending.Respond(1, ResponseAction("ignore")); err == nil {
		t.Error("Respond() with unknown action should fail")
	}
}

func TestMatchDecodeStatusCaseInsensitive(t *testing.T) {
	body := `{"id": 3, "requester_id": 2, "target_id": 1, "time_slot_id": 4,
		"proposed_time": "2026-10-19T10:00:00", "venue_id": 5, "message": null, "status": "Pending",
		"created_at": "2026-10-18T08:12:44.123456"}`

	var m Match
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	if m.Status != MatchStatusPending {
		t.Errorf("Status = %q, want pending", m.Status)
	}
	if m.Message != "" {
		t.Errorf("Message = %q, want empty for null", m.Message)
	}
	if m.ProposedTime.UTC().Hour() != 10 {
		t.Errorf("ProposedTime = %v, want 10:00 UTC", m.ProposedTime)
	}
}
