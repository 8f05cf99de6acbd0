// Package session holds the signed-in identity and the read caches fetched
// for it.
//
// Every fetch records the session epoch before it goes to the network; its
// result is applied only if the epoch is unchanged. Logout and Enter bump the
// epoch, so a late response for a previous identity is dropped.
package session

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/coffeematch/internal/availability"
	"github.com/julianstephens/coffeematch/internal/constants"
	"github.com/julianstephens/coffeematch/internal/errors"
	"github.com/julianstephens/coffeematch/internal/logger"
	"github.com/julianstephens/coffeematch/internal/matches"
	"github.com/julianstephens/coffeematch/internal/models"
)

// ErrNoSession is returned by operations that need a signed-in user.
var ErrNoSession = errors.Validation("You need to log in first.")

// API is the slice of the backend client a session uses.
type API interface {
	Register(ctx context.Context, in models.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, in models.ProfileUpdate) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ListVenues(ctx context.Context, venueType string) ([]models.Venue, error)
	CreateVenue(ctx context.Context, in models.VenueInput) (*models.Venue, error)
	ListSlots(ctx context.Context, userID int64) ([]models.TimeSlot, error)
	CreateSlot(ctx context.Context, in models.SlotInput) (*models.TimeSlot, error)
	ListReceived(ctx context.Context, userID int64) ([]models.Match, error)
	ListSent(ctx context.Context, userID int64) ([]models.Match, error)
}

type Options struct {
	Location *time.Location
	// Days is the availability window length.
	Days int
	Now  func() time.Time
}

type Session struct {
	mu    sync.Mutex
	api   API
	opts  Options
	epoch uint64

	user     *models.User
	users    []models.User
	venues   []models.Venue
	slots    []models.TimeSlot
	received []models.Match
	sent     []models.Match
	filter   matches.Filter
	selector *availability.Selector

	onReset []func()
}

func New(api API, opts Options) *Session {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Days <= 0 {
		opts.Days = constants.DateRangeDays
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{
		api:      api,
		opts:     opts,
		filter:   matches.FilterAll,
		selector: availability.NewSelector(opts.Now(), opts.Days, opts.Location),
	}
}

// OnReset registers fn to run whenever the identity changes or is cleared.
// fn runs without the session lock held.
func (s *Session) OnReset(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReset = append(s.onReset, fn)
}

// Epoch identifies the current identity generation.
func (s *Session) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

func (s *Session) Location() *time.Location {
	return s.opts.Location
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// UserID returns the signed-in user's id, or 0.
func (s *Session) UserID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return 0
	}
	return s.user.ID
}

func (s *Session) Active() bool {
	return s.UserID() != 0
}

// identity returns the epoch and user id a fetch should be tagged with.
func (s *Session) identity() (uint64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return s.epoch, 0, ErrNoSession
	}
	return s.epoch, s.user.ID, nil
}

// resetLocked clears every cache and selection. Callers hold s.mu and must
// run the returned hooks after unlocking.
func (s *Session) resetLocked() []func() {
	s.epoch++
	s.users = nil
	s.venues = nil
	s.slots = nil
	s.received = nil
	s.sent = nil
	s.filter = matches.FilterAll
	s.selector.Reset(s.opts.Now().In(s.opts.Location), s.opts.Days)
	return slices.Clone(s.onReset)
}

func runHooks(hooks []func()) {
	for _, fn := range hooks {
		fn()
	}
}

// Login looks up email and bootstraps the session for that user.
func (s *Session) Login(ctx context.Context, email string) error {
	req := models.LoginRequest{Email: email}
	if err := req.Validate(); err != nil {
		return err
	}
	u, err := s.api.Login(ctx, req.Email)
	if err != nil {
		return err
	}
	return s.Enter(ctx, *u)
}

// Register creates the user and bootstraps the session for them.
func (s *Session) Register(ctx context.Context, in models.RegisterInput) error {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return err
	}
	u, err := s.api.Register(ctx, in)
	if err != nil {
		return err
	}
	return s.Enter(ctx, *u)
}

// Enter replaces the identity with user and loads the directory and venues
// concurrently, then own slots, then matches. If any load fails the session
// is left signed out so the login can be retried.
func (s *Session) Enter(ctx context.Context, user models.User) error {
	s.mu.Lock()
	hooks := s.resetLocked()
	s.user = &user
	epoch := s.epoch
	s.mu.Unlock()
	runHooks(hooks)

	logger.Debug("Bootstrapping session", "user_id", user.ID, "epoch", epoch)

	if err := s.bootstrap(ctx); err != nil {
		logger.Warn("Session bootstrap failed", "user_id", user.ID, "error", err)
		s.abandon(epoch)
		return err
	}
	return nil
}

func (s *Session) bootstrap(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	var dir Directory
	var venues Venues
	g.Go(func() (err error) {
		dir, err = s.FetchDirectory(gctx)
		return err
	})
	g.Go(func() (err error) {
		venues, err = s.FetchVenues(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	s.ApplyDirectory(dir)
	s.ApplyVenues(venues)

	if err := s.RefreshSlots(ctx); err != nil {
		return err
	}
	return s.RefreshMatches(ctx)
}

// abandon signs out an identity whose bootstrap failed. A newer identity is
// left alone.
func (s *Session) abandon(epoch uint64) {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return
	}
	hooks := s.resetLocked()
	s.user = nil
	s.mu.Unlock()
	runHooks(hooks)
}

// Logout clears the identity, every cache and selection, and closes any
// open workflow.
func (s *Session) Logout() {
	s.mu.Lock()
	hooks := s.resetLocked()
	s.user = nil
	s.mu.Unlock()
	runHooks(hooks)
	logger.Debug("Session cleared")
}

// UpdateProfile saves the signed-in user's profile.
func (s *Session) UpdateProfile(ctx context.Context, in models.ProfileUpdate) error {
	epoch, userID, err := s.identity()
	if err != nil {
		return err
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return err
	}
	u, err := s.api.UpdateProfile(ctx, userID, in)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return nil
	}
	s.user = u
	for i := range s.users {
		if s.users[i].ID == u.ID {
			s.users[i] = *u
		}
	}
	return nil
}

// CreateVenue suggests a venue as the signed-in user and reloads the catalog.
func (s *Session) CreateVenue(ctx context.Context, in models.VenueInput) (*models.Venue, error) {
	_, userID, err := s.identity()
	if err != nil {
		return nil, err
	}
	in.Normalize()
	in.CreatedByID = userID
	if err := in.Validate(); err != nil {
		return nil, err
	}
	v, err := s.api.CreateVenue(ctx, in)
	if err != nil {
		return nil, err
	}
	return v, s.RefreshVenues(ctx)
}

// SubmitAvailability posts the selector's interval as a new slot and reloads
// the slot cache.
func (s *Session) SubmitAvailability(ctx context.Context) (*models.TimeSlot, error) {
	_, userID, err := s.identity()
	if err != nil {
		return nil, err
	}
	slot, err := s.selector.Submit(ctx, s.api, userID)
	if err != nil {
		return nil, err
	}
	return slot, s.RefreshSlots(ctx)
}

// Selector exposes the day and time picks. It is owned by the controller
// goroutine.
func (s *Session) Selector() *availability.Selector {
	return s.selector
}

func (s *Session) Filter() matches.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

func (s *Session) SetFilter(f matches.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
}

// Snapshot is a copy of the caches for rendering.
type Snapshot struct {
	User     *models.User
	Users    []models.User
	Venues   []models.Venue
	Slots    []models.TimeSlot
	Received []models.Match
	Sent     []models.Match
	Filter   matches.Filter
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Users:    slices.Clone(s.users),
		Venues:   slices.Clone(s.venues),
		Slots:    slices.Clone(s.slots),
		Received: slices.Clone(s.received),
		Sent:     slices.Clone(s.sent),
		Filter:   s.filter,
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// MatchView builds the renderer input from the current caches.
func (s *Session) MatchView() matches.View {
	snap := s.Snapshot()
	v := matches.View{
		Received: snap.Received,
		Sent:     snap.Sent,
		Users:    snap.Users,
		Venues:   snap.Venues,
		Location: s.opts.Location,
	}
	if snap.User != nil {
		v.CurrentUserID = snap.User.ID
	}
	return v
}

// UserName resolves id against the directory cache.
func (s *Session) UserName(id int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id && u.Name != "" {
			return u.Name
		}
	}
	if s.user != nil && s.user.ID == id {
		return s.user.Name
	}
	return constants.UnknownUser
}

// VenueName resolves id against the venue cache.
func (s *Session) VenueName(id int64) string {
	if v, ok := s.Venue(id); ok && v.Name != "" {
		return v.Name
	}
	return constants.UnknownVenue
}

func (s *Session) Venue(id int64) (models.Venue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.venues {
		if v.ID == id {
			return v, true
		}
	}
	return models.Venue{}, false
}

func (s *Session) DirectoryUser(id int64) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

// ReceivedMatch finds id in the received cache.
func (s *Session) ReceivedMatch(id int64) (models.Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.received {
		if m.ID == id {
			return m, true
		}
	}
	return models.Match{}, false
}
