package constants

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// SessionState represents the current screen of the TUI application
type SessionState int

// ConfirmationMsg is a message to trigger a confirmation dialog
type ConfirmationMsg struct {
	Message string
	Action  func() tea.Cmd
}

const (
	AppName            = "coffeematch"
	DefaultKeyringUser = "login-email"
	DefaultConfigDir   = "~/.config/coffeematch"
	DefaultAPIURL      = "http://localhost:8000/api/v1"
	APIPrefix          = "/api/v1"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// DisplayDateTimeFormat is used when rendering slot and match instants
	DisplayDateTimeFormat = "Mon Jan 2 15:04"

	// Availability constants
	SlotDuration      = 30 * time.Minute
	DateRangeDays     = 7
	FirstTimeChoice   = "09:00"
	LastTimeChoice    = "17:30"
	DefaultTimezone   = "Local"
	DefaultServerAddr = ":8000"
	DefaultDatabase   = "~/.config/coffeematch/server.db"

	// Server rate limiting (requests per second, burst)
	DefaultRateLimit = 5
	DefaultRateBurst = 30

	// Headers
	HeaderActorID   = "X-Actor-ID"
	HeaderRequestID = "X-Request-ID"

	// Rendering placeholders for ids missing from the local caches
	UnknownUser  = "Unknown user"
	UnknownVenue = "Unknown"
)

// Session states
const (
	StateAuth SessionState = iota
	StateDirectory
	StateAvailability
	StateMatches
	StateVenues
	StateProfile
	StateLogin
	StateRegister
	StateInvite
	StateAddVenue
	StateEditProfile
	StateReschedule
	StateConfirmation
)

// TimeChoices are the selectable half-hour marks for a new availability slot.
var TimeChoices = []string{
	"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"12:00", "12:30", "13:00", "13:30", "14:00", "14:30",
	"15:00", "15:30", "16:00", "16:30", "17:00", "17:30",
}

// MainStates are the tabbed screens cycled with tab/shift+tab.
var MainStates = []SessionState{StateDirectory, StateAvailability, StateMatches, StateVenues, StateProfile}
