package storage

import (
	"context"

	"github.com/julianstephens/coffeematch/internal/models"
)

// Provider is the persistence contract of the reference backend.
type Provider interface {
	// Lifecycle
	Migrate(ctx context.Context) (int, error)
	SchemaStatus(ctx context.Context) (current, latest int, err error)
	Ping(ctx context.Context) error
	Close() error

	// Users
	CreateUser(ctx context.Context, in models.RegisterInput) (models.User, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id int64, in models.ProfileUpdate) (models.User, error)
	DeleteUser(ctx context.Context, id int64) error

	// Venues
	CreateVenue(ctx context.Context, in models.VenueInput) (models.Venue, error)
	GetVenue(ctx context.Context, id int64) (models.Venue, error)
	ListVenues(ctx context.Context, venueType string) ([]models.Venue, error)
	DeleteVenue(ctx context.Context, id int64) error

	// Time slots
	CreateSlot(ctx context.Context, in models.SlotInput) (models.TimeSlot, error)
	GetSlot(ctx context.Context, id int64) (models.TimeSlot, error)
	ListSlotsByUser(ctx context.Context, userID int64) ([]models.TimeSlot, error)
	ListAvailableSlots(ctx context.Context) ([]models.TimeSlot, error)
	DeleteSlot(ctx context.Context, id int64) error

	// Matches
	CreateMatch(ctx context.Context, in models.MatchInput) (models.Match, error)
	GetMatch(ctx context.Context, id int64) (models.Match, error)
	ListMatchesReceived(ctx context.Context, userID int64) ([]models.Match, error)
	ListMatchesSent(ctx context.Context, userID int64) ([]models.Match, error)
	RespondToMatch(ctx context.Context, matchID, actorID int64, to models.MatchStatus) (models.Match, error)
	RescheduleMatch(ctx context.Context, matchID, actorID, newSlotID, newVenueID int64) (models.Match, error)
	DeleteMatch(ctx context.Context, id int64) error

	// Preferences
	CreatePreference(ctx context.Context, in models.PreferenceInput) (models.Preference, error)
	GetPreference(ctx context.Context, id int64) (models.Preference, error)
	ListPreferences(ctx context.Context, userID int64) ([]models.Preference, error)
	DeletePreference(ctx context.Context, id int64) error
}
