package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/coffeematch/internal/constants"
	"github.com/julianstephens/coffeematch/internal/models"
	"github.com/julianstephens/coffeematch/internal/server"
	"github.com/julianstephens/coffeematch/internal/testserver"
	"github.com/julianstephens/coffeematch/internal/transport"
)

type world struct {
	env        *testserver.Env
	alice, bob *models.User
	venue      *models.Venue
	slot       *models.TimeSlot
}

func setup(t *testing.T) world {
	t.Helper()
	ctx := context.Background()
	env := testserver.New(t)
	c := env.Client

	alice, err := c.Register(ctx, models.RegisterInput{Name: "Alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("Register(alice) failed: %v", err)
	}
	bob, err := c.Register(ctx, models.RegisterInput{Name: "Bob", Email: "bob@example.com"})
	if err != nil {
		t.Fatalf("Register(bob) failed: %v", err)
	}
	venue, err := c.CreateVenue(ctx, models.VenueInput{Name: "Ritual", Type: "coffee", CreatedByID: bob.ID})
	if err != nil {
		t.Fatalf("CreateVenue() failed: %v", err)
	}
	slot, err := c.CreateSlot(ctx, models.NewSlotInput(alice.ID, time.Date(2026, 10, 20, 9, 30, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("CreateSlot() failed: %v", err)
	}
	return world{env: env, alice: alice, bob: bob, venue: venue, slot: slot}
}

func (w world) propose(t *testing.T) *models.Match {
	t.Helper()
	m, err := w.env.Client.CreateMatch(context.Background(), models.MatchInput{
		RequesterID:  w.bob.ID,
		TargetID:     w.alice.ID,
		TimeSlotID:   w.slot.ID,
		ProposedTime: w.slot.StartTime,
		VenueID:      w.venue.ID,
		Message:      "flat white?",
	})
	if err != nil {
		t.Fatalf("CreateMatch() failed: %v", err)
	}
	return m
}

func requestError(t *testing.T, err error) *transport.RequestError {
	t.Helper()
	var re *transport.RequestError
	if !errors.As(err, &re) {
		t.Fatalf("error = %v (%T), want *transport.RequestError", err, err)
	}
	return re
}

func TestHealth(t *testing.T) {
	env := testserver.New(t)
	status, err := env.Client.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() failed: %v", err)
	}
	if status != "ok" {
		t.Errorf("Health() = %q, want ok", status)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	w := setup(t)
	c := w.env.Client

	_, err := c.Register(ctx, models.RegisterInput{Name: "Again", Email: "alice@example.com"})
	re := requestError(t, err)
	if re.Status != http.StatusBadRequest || re.Message != "Email already registered" {
		t.Errorf("duplicate register = %d %q", re.Status, re.Message)
	}

	_, err = c.Register(ctx, models.RegisterInput{Name: " ", Email: "x@example.com"})
	re = requestError(t, err)
	if re.Status != http.StatusBadRequest || re.Message != "Name and email are required to register." {
		t.Errorf("blank register = %d %q", re.Status, re.Message)
	}

	u, err := c.Login(ctx, "bob@example.com")
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	if u.ID != w.bob.ID {
		t.Errorf("Login() id = %d, want %d", u.ID, w.bob.ID)
	}

	_, err = c.Login(ctx, "nobody@example.com")
	re = requestError(t, err)
	if re.Status != http.StatusNotFound || re.Message != "User not found" {
		t.Errorf("unknown login = %d %q", re.Status, re.Message)
	}

	updated, err := c.UpdateProfile(ctx, w.alice.ID, models.ProfileUpdate{Name: "Alice", Bio: "pour-over"})
	if err != nil || updated.Bio != "pour-over" {
		t.Errorf("UpdateProfile() = %+v, %v", updated, err)
	}
	_, err = c.UpdateProfile(ctx, w.bob.ID, models.ProfileUpdate{Name: ""})
	if re := requestError(t, err); re.Status != http.StatusBadRequest {
		t.Errorf("blank profile status = %d", re.Status)
	}
}

func TestDirectoryListings(t *testing.T) {
	ctx := context.Background()
	w := setup(t)
	c := w.env.Client

	users, err := c.ListUsers(ctx)
	if err != nil || len(users) != 2 {
		t.Fatalf("ListUsers() = %d, %v", len(users), err)
	}
	venues, err := c.ListVenues(ctx, "coffee")
	if err != nil || len(venues) != 1 || venues[0].CreatedByID != w.bob.ID {
		t.Errorf("ListVenues(coffee) = %+v, %v", venues, err)
	}
	bars, err := c.ListVenues(ctx, "bar")
	if err != nil || len(bars) != 0 {
		t.Errorf("ListVenues(bar) = %+v, %v", bars, err)
	}

	slots, err := c.ListSlots(ctx, w.alice.ID)
	if err != nil || len(slots) != 1 || !slots[0].IsAvailable() {
		t.Errorf("ListSlots(alice) = %+v, %v", slots, err)
	}
	none, err := c.ListSlots(ctx, w.bob.ID)
	if err != nil || len(none) != 0 {
		t.Errorf("ListSlots(bob) = %+v, %v", none, err)
	}
}

func TestAcceptFlow(t *testing.T) {
	ctx := context.Background()
	w := setup(t)
	c := w.env.Client
	m := w.propose(t)

	if m.Status != models.MatchStatusPending {
		t.Fatalf("new match status = %s", m.Status)
	}

	_, err := c.RespondToMatch(ctx, w.bob.ID, m.ID, models.MatchStatusAccepted)
	if re := requestError(t, err); re.Status != http.StatusForbidden {
		t.Errorf("requester accept status = %d, want 403", re.Status)
	}

	accepted, err := c.RespondToMatch(ctx, w.alice.ID, m.ID, models.MatchStatusAccepted)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if accepted.Status != models.MatchStatusAccepted {
		t.Errorf("status = %s, want accepted", accepted.Status)
	}

	_, err = c.RespondToMatch(ctx, w.alice.ID, m.ID, models.MatchStatusAccepted)
	re := requestError(t, err)
	if re.Status != http.StatusConflict || re.Message != "Match is already accepted" {
		t.Errorf("double accept = %d %q", re.Status, re.Message)
	}

	slots, err := c.ListSlots(ctx, w.alice.ID)
	if err != nil || len(slots) != 1 || slots[0].Status != models.SlotStatusBooked {
		t.Errorf("slot after accept = %+v, %v", slots, err)
	}

	received, err := c.ListReceived(ctx, w.alice.ID)
	if err != nil || len(received) != 1 || received[0].Status != models.MatchStatusAccepted {
		t.Errorf("ListReceived() = %+v, %v", received, err)
	}
	sent, err := c.ListSent(ctx, w.bob.ID)
	if err != nil || len(sent) != 1 || sent[0].Message != "flat white?" {
		t.Errorf("ListSent() = %+v, %v", sent, err)
	}

	_, err = c.CreateMatch(ctx, models.MatchInput{
		RequesterID:  w.bob.ID,
		TargetID:     w.alice.ID,
		TimeSlotID:   w.slot.ID,
		ProposedTime: w.slot.StartTime,
		VenueID:      w.venue.ID,
	})
	if re := requestError(t, err); re.Status != http.StatusConflict {
		t.Errorf("proposal on booked slot status = %d, want 409", re.Status)
	}
}

func TestRescheduleFlow(t *testing.T) {
	ctx := context.Background()
	w := setup(t)
	c := w.env.Client
	m := w.propose(t)

	bobSlot, err := c.CreateSlot(ctx, models.NewSlotInput(w.bob.ID, time.Date(2026, 10, 21, 14, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatal(err)
	}

	counter, err := c.RescheduleMatch(ctx, w.alice.ID, m.ID, bobSlot.ID, 0)
	if err != nil {
		t.Fatalf("RescheduleMatch() failed: %v", err)
	}
	if counter.RequesterID != w.alice.ID || counter.TargetID != w.bob.ID || counter.TimeSlotID != bobSlot.ID {
		t.Errorf("counter = %+v", counter)
	}

	sent, err := c.ListSent(ctx, w.bob.ID)
	if err != nil || len(sent) != 1 || sent[0].Status != models.MatchStatusRescheduled {
		t.Errorf("original after reschedule = %+v, %v", sent, err)
	}

	if _, err := c.RespondToMatch(ctx, w.bob.ID, counter.ID, models.MatchStatusAccepted); err != nil {
		t.Errorf("accepting counter-proposal failed: %v", err)
	}
}

func TestUpdateMatchJSONReschedule(t *testing.T) {
	ctx := context.Background()
	w := setup(t)
	m := w.propose(t)

	bobSlot, err := w.env.Client.CreateSlot(ctx, models.NewSlotInput(w.bob.ID, time.Date(2026, 10, 22, 11, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatal(err)
	}

	tp := transport.New(w.env.BaseURL)
	var counter models.Match
	body := models.MatchUpdate{Status: models.MatchStatusRescheduled, TimeSlotID: bobSlot.ID}
	err = tp.Call(transport.WithActor(ctx, w.alice.ID), http.MethodPut, "/matches/"+itoa(m.ID), body, &counter)
	if err != nil {
		t.Fatalf("PUT reschedule failed: %v", err)
	}
	if counter.Status != models.MatchStatusPending || counter.VenueID != w.venue.ID {
		t.Errorf("counter = %+v", counter)
	}
}

func TestMatchUpdateRequiresActor(t *testing.T) {
	w := setup(t)
	m := w.propose(t)

	tests := []struct {
		name    string
		actor   string
		path    string
		ctype   string
		body    string
		status  int
		message string
	}{
		{"json without actor", "", "/matches/" + itoa(m.ID), "application/json", `{"status":"accepted"}`, http.StatusUnauthorized, "X-Actor-ID header required"},
		{"form without actor", "", "/matches/" + itoa(m.ID) + "/respond", "application/x-www-form-urlencoded", "action=accept", http.StatusUnauthorized, "X-Actor-ID header required"},
		{"malformed actor", "abc", "/matches/" + itoa(m.ID), "application/json", `{"status":"accepted"}`, http.StatusUnauthorized, "X-Actor-ID header required"},
		{"unknown status", itoa(w.alice.ID), "/matches/" + itoa(m.ID), "application/json", `{"status":"maybe"}`, http.StatusBadRequest, "Status must be accepted, rejected or rescheduled"},
		{"unknown action", itoa(w.alice.ID), "/matches/" + itoa(m.ID) + "/respond", "application/x-www-form-urlencoded", "action=snooze", http.StatusBadRequest, "Invalid action"},
		{"missing match", itoa(w.alice.ID), "/matches/999", "application/json", `{"status":"rejected"}`, http.StatusNotFound, "Match request not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPut, w.env.BaseURL+tt.path, strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			req.Header.Set("Content-Type", tt.ctype)
			if tt.actor != "" {
				req.Header.Set(constants.HeaderActorID, tt.actor)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			var body server.ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode error body: %v", err)
			}
			if body.Detail != tt.message {
				t.Errorf("detail = %q, want %q", body.Detail, tt.message)
			}
		})
	}
}

func TestFormRespondReject(t *testing.T) {
	w := setup(t)
	m := w.propose(t)

	tp := transport.New(w.env.BaseURL)
	var got models.Match
	form := url.Values{"action": {"REJECT"}}
	err := tp.CallForm(transport.WithActor(context.Background(), w.alice.ID), http.MethodPut, "/matches/"+itoa(m.ID)+"/respond", form, &got)
	if err != nil {
		t.Fatalf("form reject failed: %v", err)
	}
	if got.Status != models.MatchStatusRejected {
		t.Errorf("status = %s, want rejected", got.Status)
	}
}

func TestActorMismatchOnOwnedRecords(t *testing.T) {
	ctx := context.Background()
	w := setup(t)
	c := w.env.Client

	err := c.DeleteSlot(ctx, w.bob.ID, w.slot.ID)
	if re := requestError(t, err); re.Status != http.StatusForbidden {
		t.Errorf("deleting another user's slot = %d, want 403", re.Status)
	}
	if err := c.DeleteSlot(ctx, w.alice.ID, w.slot.ID); err != nil {
		t.Errorf("deleting own slot failed: %v", err)
	}
	err = c.DeleteSlot(ctx, w.alice.ID, w.slot.ID)
	if re := requestError(t, err); re.Status != http.StatusNotFound {
		t.Errorf("deleting missing slot = %d, want 404", re.Status)
	}
}

func TestPreferencesEndpoints(t *testing.T) {
	ctx := context.Background()
	w := setup(t)
	c := w.env.Client

	p, err := c.CreatePreference(ctx, models.PreferenceInput{UserID: w.alice.ID, PreferenceType: "venue_type", PreferenceValue: "coffee", Confidence: 3})
	if err != nil {
		t.Fatalf("CreatePreference() failed: %v", err)
	}
	prefs, err := c.ListPreferences(ctx, w.alice.ID)
	if err != nil || len(prefs) != 1 || prefs[0].Confidence != 3 {
		t.Errorf("ListPreferences() = %+v, %v", prefs, err)
	}
	if err := c.DeletePreference(ctx, w.bob.ID, p.ID); requestError(t, err).Status != http.StatusForbidden {
		t.Errorf("deleting another user's preference should be forbidden")
	}
	if err := c.DeletePreference(ctx, w.alice.ID, p.ID); err != nil {
		t.Errorf("DeletePreference() failed: %v", err)
	}
}

func TestUnknownRouteReturnsDetail(t *testing.T) {
	env := testserver.New(t)
	resp, err := http.Get(env.BaseURL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	data, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(data, []byte(`"detail"`)) {
		t.Errorf("body = %s, want a detail field", data)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ctx := context.Background()
	env := testserver.New(t)
	ada, err := env.Client.Register(ctx, models.RegisterInput{Name: "Ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.Client.ListUsers(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Client.GetUser(ctx, ada.ID); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(env.Server.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)

	tests := []string{
		`http_requests_total{method="GET",path="/api/v1/users",status="200"} 1`,
		`http_requests_total{method="GET",path="/api/v1/users/{id}",status="200"} 1`,
	}
	for _, want := range tests {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("metrics output missing %s:\n%s", want, data)
		}
	}
	if bytes.Contains(data, []byte(`path="/api/v1/users/"`)) {
		t.Error("index route label kept its trailing slash")
	}
}

func TestRateLimit(t *testing.T) {
	env := testserver.New(t)
	h := server.New(env.Store, server.Options{RateLimit: 1, RateBurst: 2})

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, constants.APIPrefix+"/users/", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}

	req := httptest.NewRequest(http.MethodGet, constants.APIPrefix+"/users/", nil)
	req.RemoteAddr = "198.51.100.1:4444"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("other client code = %d, want 200", rec.Code)
	}
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := server.NewLogger("warn", &buf)
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("log output = %q", buf.String())
	}

	buf.Reset()
	log = server.NewLogger("bogus", &buf)
	log.Debug().Msg("debug")
	log.Info().Msg("info")
	if strings.Contains(buf.String(), "debug") || !strings.Contains(buf.String(), `"info"`) {
		t.Errorf("fallback log output = %q", buf.String())
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
