package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/coffeematch/internal/constants"
)

type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available"
	SlotStatusBooked    SlotStatus = "booked"
)

// Is compares slot statuses case-insensitively.
func (s SlotStatus) Is(other SlotStatus) bool {
	return strings.EqualFold(string(s), string(other))
}

type TimeSlot struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	StartTime Instant    `json:"start_time"`
	EndTime   Instant    `json:"end_time"`
	Status    SlotStatus `json:"status"`
}

// IsAvailable reports whether the slot can still be proposed.
func (s TimeSlot) IsAvailable() bool {
	return s.Status.Is(SlotStatusAvailable)
}

// Duration returns the length of the slot.
func (s TimeSlot) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime.Time)
}

// SlotInput is the body of POST /timeslots/.
type SlotInput struct {
	UserID    int64      `json:"user_id"`
	StartTime Instant    `json:"start_time"`
	EndTime   Instant    `json:"end_time"`
	Status    SlotStatus `json:"status"`
}

// NewSlotInput builds an available slot of the fixed length starting at start.
func NewSlotInput(userID int64, start time.Time) SlotInput {
	begin := NewInstant(start)
	return SlotInput{
		UserID:    userID,
		StartTime: begin,
		EndTime:   NewInstant(begin.Add(constants.SlotDuration)),
		Status:    SlotStatusAvailable,
	}
}

func (in SlotInput) Validate() error {
	if in.UserID == 0 {
		return fmt.Errorf("user_id is required")
	}
	if in.StartTime.IsZero() {
		return fmt.Errorf("start_time is required")
	}
	if got := in.EndTime.Sub(in.StartTime.Time); got != constants.SlotDuration {
		return fmt.Errorf("slot must last exactly %s, got %s", constants.SlotDuration, got)
	}
	switch {
	case in.Status == "":
	case in.Status.Is(SlotStatusAvailable), in.Status.Is(SlotStatusBooked):
	default:
		return fmt.Errorf("invalid slot status: %s", in.Status)
	}
	return nil
}
