// Package api is a typed client for the coffeematch REST surface.
package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/julianstephens/coffeematch/internal/models"
	"github.com/julianstephens/coffeematch/internal/transport"
)

// Caller is the transport contract the client needs.
type Caller interface {
	Call(ctx context.Context, method, path string, body, out any) error
	CallForm(ctx context.Context, method, path string, form url.Values, out any) error
}

type Client struct {
	t Caller
}

// New wraps a transport.
func New(t Caller) *Client {
	return &Client{t: t}
}

// NewHTTP builds a client talking to baseURL over HTTP.
func NewHTTP(baseURL string, opts ...transport.Option) *Client {
	return New(transport.New(baseURL, opts...))
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

// Users

func (c *Client) Register(ctx context.Context, in models.RegisterInput) (*models.User, error) {
	var u models.User
	if err := c.t.Call(ctx, http.MethodPost, "/users/", in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateProfile(ctx context.Context, userID int64, in models.ProfileUpdate) (*models.User, error) {
	var u models.User
	if err := c.t.Call(transport.WithActor(ctx, userID), http.MethodPut, "/users/"+id(userID), in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Login(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := c.t.Call(ctx, http.MethodPost, "/auth/login", models.LoginRequest{Email: email}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.t.Call(ctx, http.MethodGet, "/users/", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	var u models.User
	if err := c.t.Call(ctx, http.MethodGet, "/users/"+id(userID), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Venues

// ListVenues returns the catalog, optionally narrowed to one venue type.
func (c *Client) ListVenues(ctx context.Context, venueType string) ([]models.Venue, error) {
	path := "/venues/"
	if venueType != "" {
		path += "?" + url.Values{"venue_type": {venueType}}.Encode()
	}
	var venues []models.Venue
	if err := c.t.Call(ctx, http.MethodGet, path, nil, &venues); err != nil {
		return nil, err
	}
	return venues, nil
}

func (c *Client) CreateVenue(ctx context.Context, in models.VenueInput) (*models.Venue, error) {
	var v models.Venue
	if err := c.t.Call(transport.WithActor(ctx, in.CreatedByID), http.MethodPost, "/venues/", in, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Time slots

// ListSlots returns every slot owned by userID regardless of status.
func (c *Client) ListSlots(ctx context.Context, userID int64) ([]models.TimeSlot, error) {
	path := "/timeslots/?" + url.Values{"user_id": {id(userID)}}.Encode()
	var slots []models.TimeSlot
	if err := c.t.Call(ctx, http.MethodGet, path, nil, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// ListAvailableSlots returns every available slot across all users.
func (c *Client) ListAvailableSlots(ctx context.Context) ([]models.TimeSlot, error) {
	var slots []models.TimeSlot
	if err := c.t.Call(ctx, http.MethodGet, "/timeslots/", nil, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (c *Client) CreateSlot(ctx context.Context, in models.SlotInput) (*models.TimeSlot, error) {
	var s models.TimeSlot
	if err := c.t.Call(transport.WithActor(ctx, in.UserID), http.MethodPost, "/timeslots/", in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) DeleteSlot(ctx context.Context, actorID, slotID int64) error {
	return c.t.Call(transport.WithActor(ctx, actorID), http.MethodDelete, "/timeslots/"+id(slotID), nil, nil)
}

// Matches

func (c *Client) ListReceived(ctx context.Context, userID int64) ([]models.Match, error) {
	var matches []models.Match
	if err := c.t.Call(ctx, http.MethodGet, "/matches/received/"+id(userID), nil, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

func (c *Client) ListSent(ctx context.Context, userID int64) ([]models.Match, error) {
	var matches []models.Match
	if err := c.t.Call(ctx, http.MethodGet, "/matches/sent/"+id(userID), nil, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

func (c *Client) CreateMatch(ctx context.Context, in models.MatchInput) (*models.Match, error) {
	var m models.Match
	if err := c.t.Call(transport.WithActor(ctx, in.RequesterID), http.MethodPost, "/matches/", in, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// RespondToMatch accepts or rejects a match on behalf of actorID.
func (c *Client) RespondToMatch(ctx context.Context, actorID, matchID int64, status models.MatchStatus) (*models.Match, error) {
	if status != models.MatchStatusAccepted && status != models.MatchStatusRejected {
		return nil, fmt.Errorf("respond expects accepted or rejected, got %s", status)
	}
	var m models.Match
	body := models.MatchUpdate{Status: status}
	if err := c.t.Call(transport.WithActor(ctx, actorID), http.MethodPut, "/matches/"+id(matchID), body, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// RescheduleMatch declines a pending match in favour of a counter-proposal on
// newSlotID (owned by the original requester) at newVenueID. The server
// returns the new pending match.
func (c *Client) RescheduleMatch(ctx context.Context, actorID, matchID, newSlotID, newVenueID int64) (*models.Match, error) {
	form := url.Values{
		"action":           {string(models.ActionReschedule)},
		"new_time_slot_id": {id(newSlotID)},
		"new_venue_id":     {id(newVenueID)},
	}
	var m models.Match
	if err := c.t.CallForm(transport.WithActor(ctx, actorID), http.MethodPut, "/matches/"+id(matchID)+"/respond", form, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Preferences

func (c *Client) ListPreferences(ctx context.Context, userID int64) ([]models.Preference, error) {
	path := "/preferences/?" + url.Values{"user_id": {id(userID)}}.Encode()
	var prefs []models.Preference
	if err := c.t.Call(ctx, http.MethodGet, path, nil, &prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

func (c *Client) CreatePreference(ctx context.Context, in models.PreferenceInput) (*models.Preference, error) {
	var p models.Preference
	if err := c.t.Call(transport.WithActor(ctx, in.UserID), http.MethodPost, "/preferences/", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeletePreference(ctx context.Context, actorID, prefID int64) error {
	return c.t.Call(transport.WithActor(ctx, actorID), http.MethodDelete, "/preferences/"+id(prefID), nil, nil)
}

// Health returns the backend's health status text.
func (c *Client) Health(ctx context.Context) (string, error) {
	var status struct {
		Status string `json:"status"`
	}
	if err := c.t.Call(ctx, http.MethodGet, "/health", nil, &status); err != nil {
		return "", err
	}
	return status.Status, nil
}
