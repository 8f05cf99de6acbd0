// Package availability turns a picked day and half-hour mark into a new
// time slot.
package availability

import (
	"context"
	"slices"
	"time"

	"github.com/julianstephens/coffeematch/internal/constants"
	"github.com/julianstephens/coffeematch/internal/errors"
	"github.com/julianstephens/coffeematch/internal/models"
	"github.com/julianstephens/coffeematch/internal/utils"
)

// SlotCreator posts a new slot.
type SlotCreator interface {
	CreateSlot(ctx context.Context, in models.SlotInput) (*models.TimeSlot, error)
}

// Days returns n consecutive dates (YYYY-MM-DD) starting at now's date.
func Days(now time.Time, n int) []string {
	if n <= 0 {
		n = constants.DateRangeDays
	}
	days := make([]string, n)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for i := range days {
		days[i] = start.AddDate(0, 0, i).Format(constants.DateFormat)
	}
	return days
}

// Selector holds the day and time picks. It is not safe for concurrent use.
type Selector struct {
	loc  *time.Location
	days []string
	day  string
	time string
}

// NewSelector opens a window of n days from now, with today selected.
func NewSelector(now time.Time, n int, loc *time.Location) *Selector {
	if loc == nil {
		loc = time.Local
	}
	s := &Selector{loc: loc}
	s.Reset(now.In(loc), n)
	return s
}

// Reset reopens the window from now and clears the time.
func (s *Selector) Reset(now time.Time, n int) {
	s.days = Days(now, n)
	s.day = s.days[0]
	s.time = ""
}

func (s *Selector) Days() []string {
	return slices.Clone(s.days)
}

func (s *Selector) Times() []string {
	return slices.Clone(constants.TimeChoices)
}

func (s *Selector) Day() string  { return s.day }
func (s *Selector) Time() string { return s.time }

func (s *Selector) Location() *time.Location { return s.loc }

// SelectDay picks a day inside the window. Any picked time is cleared.
func (s *Selector) SelectDay(day string) error {
	if !slices.Contains(s.days, day) {
		return errors.Validationf("Pick a day between %s and %s.", s.days[0], s.days[len(s.days)-1])
	}
	s.day = day
	s.time = ""
	return nil
}

// SelectTime picks one of the half-hour marks.
func (s *Selector) SelectTime(hhmm string) error {
	if !slices.Contains(constants.TimeChoices, hhmm) {
		return errors.Validationf("Pick a time between %s and %s.", constants.FirstTimeChoice, constants.LastTimeChoice)
	}
	s.time = hhmm
	return nil
}

// Interval returns [start, start+30m) for the current picks.
func (s *Selector) Interval() (start, end time.Time, err error) {
	if s.day == "" || s.time == "" {
		return time.Time{}, time.Time{}, errors.Validation("Select a day and time.")
	}
	start, err = utils.CombineDateAndTime(s.day, s.time, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Validation("Invalid date or time selected.")
	}
	return start, start.Add(constants.SlotDuration), nil
}

// Submit creates an available slot for userID from the current picks. On
// success the time is cleared and the day is kept.
func (s *Selector) Submit(ctx context.Context, api SlotCreator, userID int64) (*models.TimeSlot, error) {
	if userID == 0 {
		return nil, errors.Validation("You need to log in first.")
	}
	start, _, err := s.Interval()
	if err != nil {
		return nil, err
	}
	in := models.NewSlotInput(userID, start)
	if err := in.Validate(); err != nil {
		return nil, errors.Validation(err.Error())
	}

	slot, err := api.CreateSlot(ctx, in)
	if err != nil {
		return nil, err
	}
	s.time = ""
	return slot, nil
}
