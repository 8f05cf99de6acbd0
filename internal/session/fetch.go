package session

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/coffeematch/internal/logger"
	"github.com/julianstephens/coffeematch/internal/models"
)

// Each fetch result carries the epoch it was issued under. Apply* returns
// false and leaves the caches alone when that epoch is stale.

type Directory struct {
	Epoch uint64
	Users []models.User
}

type Venues struct {
	Epoch  uint64
	Venues []models.Venue
}

type Slots struct {
	Epoch uint64
	Slots []models.TimeSlot
}

type Matches struct {
	Epoch    uint64
	Received []models.Match
	Sent     []models.Match
}

func (s *Session) stale(epoch uint64, what string) bool {
	if s.epoch != epoch {
		logger.Debug("Dropping stale response", "what", what, "epoch", epoch, "current", s.epoch)
		return true
	}
	return false
}

func (s *Session) FetchDirectory(ctx context.Context) (Directory, error) {
	epoch := s.Epoch()
	users, err := s.api.ListUsers(ctx)
	return Directory{Epoch: epoch, Users: users}, err
}

// ApplyDirectory stores the directory and refreshes the signed-in user's own
// record from it.
func (s *Session) ApplyDirectory(d Directory) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(d.Epoch, "directory") {
		return false
	}
	s.users = d.Users
	if s.user != nil {
		for _, u := range d.Users {
			if u.ID == s.user.ID {
				s.user = &u
				break
			}
		}
	}
	return true
}

func (s *Session) RefreshDirectory(ctx context.Context) error {
	d, err := s.FetchDirectory(ctx)
	if err != nil {
		return err
	}
	s.ApplyDirectory(d)
	return nil
}

func (s *Session) FetchVenues(ctx context.Context) (Venues, error) {
	epoch := s.Epoch()
	venues, err := s.api.ListVenues(ctx, "")
	return Venues{Epoch: epoch, Venues: venues}, err
}

func (s *Session) ApplyVenues(v Venues) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(v.Epoch, "venues") {
		return false
	}
	s.venues = v.Venues
	return true
}

func (s *Session) RefreshVenues(ctx context.Context) error {
	v, err := s.FetchVenues(ctx)
	if err != nil {
		return err
	}
	s.ApplyVenues(v)
	return nil
}

// FetchSlots loads the signed-in user's own slots.
func (s *Session) FetchSlots(ctx context.Context) (Slots, error) {
	epoch, userID, err := s.identity()
	if err != nil {
		return Slots{Epoch: epoch}, err
	}
	slots, err := s.api.ListSlots(ctx, userID)
	return Slots{Epoch: epoch, Slots: slots}, err
}

func (s *Session) ApplySlots(sl Slots) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(sl.Epoch, "slots") {
		return false
	}
	s.slots = sl.Slots
	return true
}

func (s *Session) RefreshSlots(ctx context.Context) error {
	sl, err := s.FetchSlots(ctx)
	if err != nil {
		return err
	}
	s.ApplySlots(sl)
	return nil
}

// FetchMatches loads received and sent matches concurrently.
func (s *Session) FetchMatches(ctx context.Context) (Matches, error) {
	epoch, userID, err := s.identity()
	if err != nil {
		return Matches{Epoch: epoch}, err
	}

	res := Matches{Epoch: epoch}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		res.Received, err = s.api.ListReceived(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		res.Sent, err = s.api.ListSent(gctx, userID)
		return err
	})
	return res, g.Wait()
}

func (s *Session) ApplyMatches(m Matches) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(m.Epoch, "matches") {
		return false
	}
	s.received = m.Received
	s.sent = m.Sent
	return true
}

func (s *Session) RefreshMatches(ctx context.Context) error {
	m, err := s.FetchMatches(ctx)
	if err != nil {
		return err
	}
	s.ApplyMatches(m)
	return nil
}
