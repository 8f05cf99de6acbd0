package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/julianstephens/coffeematch/internal/models"
)

// Users

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterInput
	if !decode(w, r, &in) {
		return
	}
	u, err := s.store.CreateUser(r.Context(), in)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	s.log.Info().Int64("user_id", u.ID).Msg("User registered")
	respondJSON(w, http.StatusOK, u)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	u, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok || !actingAs(w, r, id) {
		return
	}
	var in models.ProfileUpdate
	if !decode(w, r, &in) {
		return
	}
	u, err := s.store.UpdateUser(r.Context(), id, in)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok || !actingAs(w, r, id) {
		return
	}
	if err := s.store.DeleteUser(r.Context(), id); err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in models.LoginRequest
	if !decode(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	u, err := s.store.GetUserByEmail(r.Context(), in.Email)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

// Venues

func (s *Server) listVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := s.store.ListVenues(r.Context(), r.URL.Query().Get("venue_type"))
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, venues)
}

func (s *Server) createVenue(w http.ResponseWriter, r *http.Request) {
	var in models.VenueInput
	if !decode(w, r, &in) {
		return
	}
	if in.CreatedByID != 0 && !actingAs(w, r, in.CreatedByID) {
		return
	}
	v, err := s.store.CreateVenue(r.Context(), in)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

func (s *Server) getVenue(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	v, err := s.store.GetVenue(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

func (s *Server) deleteVenue(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	v, err := s.store.GetVenue(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	if v.CreatedByID != 0 && !actingAs(w, r, v.CreatedByID) {
		return
	}
	if err := s.store.DeleteVenue(r.Context(), id); err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Time slots

// listSlots returns one user's slots when user_id is given, otherwise every
// available slot.
func (s *Server) listSlots(w http.ResponseWriter, r *http.Request) {
	userID, set, err := queryID(r, "user_id")
	if err != nil {
		respondError(w, "Invalid user_id", http.StatusBadRequest)
		return
	}

	var slots []models.TimeSlot
	if set {
		slots, err = s.store.ListSlotsByUser(r.Context(), userID)
	} else {
		slots, err = s.store.ListAvailableSlots(r.Context())
	}
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, slots)
}

func (s *Server) createSlot(w http.ResponseWriter, r *http.Request) {
	var in models.SlotInput
	if !decode(w, r, &in) {
		return
	}
	if !actingAs(w, r, in.UserID) {
		return
	}
	slot, err := s.store.CreateSlot(r.Context(), in)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, slot)
}

func (s *Server) getSlot(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	slot, err := s.store.GetSlot(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, slot)
}

func (s *Server) deleteSlot(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	slot, err := s.store.GetSlot(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	if !actingAs(w, r, slot.UserID) {
		return
	}
	if err := s.store.DeleteSlot(r.Context(), id); err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Matches

func (s *Server) createMatch(w http.ResponseWriter, r *http.Request) {
	var in models.MatchInput
	if !decode(w, r, &in) {
		return
	}
	if !actingAs(w, r, in.RequesterID) {
		return
	}
	m, err := s.store.CreateMatch(r.Context(), in)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	s.log.Info().
		Int64("match_id", m.ID).
		Int64("requester_id", m.RequesterID).
		Int64("target_id", m.TargetID).
		Int64("time_slot_id", m.TimeSlotID).
		Msg("Match proposed")
	respondJSON(w, http.StatusOK, m)
}

func (s *Server) getMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	m, err := s.store.GetMatch(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (s *Server) listReceived(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	matches, err := s.store.ListMatchesReceived(r.Context(), userID)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, matches)
}

func (s *Server) listSent(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	matches, err := s.store.ListMatchesSent(r.Context(), userID)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, matches)
}

// updateMatch handles PUT /matches/{id} with a JSON MatchUpdate body.
func (s *Server) updateMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var in models.MatchUpdate
	if !decode(w, r, &in) {
		return
	}

	switch in.Status {
	case models.MatchStatusAccepted, models.MatchStatusRejected:
		s.respond(w, r, id, actor, in.Status)
	case models.MatchStatusRescheduled:
		if in.TimeSlotID == 0 {
			respondError(w, "time_slot_id is required to reschedule", http.StatusBadRequest)
			return
		}
		s.reschedule(w, r, id, actor, in.TimeSlotID, in.VenueID)
	default:
		respondError(w, "Status must be accepted, rejected or rescheduled", http.StatusBadRequest)
	}
}

// respondForm handles the form-encoded PUT /matches/{id}/respond.
func (s *Server) respondForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		respondError(w, "Invalid form body", http.StatusBadRequest)
		return
	}

	action := models.ResponseAction(strings.ToLower(strings.TrimSpace(r.PostForm.Get("action"))))
	to, err := action.Status()
	if err != nil {
		respondError(w, "Invalid action", http.StatusBadRequest)
		return
	}
	if to != models.MatchStatusRescheduled {
		s.respond(w, r, id, actor, to)
		return
	}

	slotID, err := formID(r, "new_time_slot_id")
	if err != nil || slotID == 0 {
		respondError(w, "new_time_slot_id is required to reschedule", http.StatusBadRequest)
		return
	}
	venueID, err := formID(r, "new_venue_id")
	if err != nil {
		respondError(w, "Invalid new_venue_id", http.StatusBadRequest)
		return
	}
	s.reschedule(w, r, id, actor, slotID, venueID)
}

func formID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.PostForm.Get(name))
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, matchID, actor int64, to models.MatchStatus) {
	m, err := s.store.RespondToMatch(r.Context(), matchID, actor, to)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	s.log.Info().
		Int64("match_id", m.ID).
		Int64("actor_id", actor).
		Str("status", string(m.Status)).
		Msg("Match updated")
	respondJSON(w, http.StatusOK, m)
}

func (s *Server) reschedule(w http.ResponseWriter, r *http.Request, matchID, actor, slotID, venueID int64) {
	counter, err := s.store.RescheduleMatch(r.Context(), matchID, actor, slotID, venueID)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	s.log.Info().
		Int64("match_id", matchID).
		Int64("counter_id", counter.ID).
		Int64("actor_id", actor).
		Msg("Match rescheduled")
	respondJSON(w, http.StatusOK, counter)
}

func (s *Server) deleteMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	m, err := s.store.GetMatch(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	if !actingAs(w, r, m.RequesterID) {
		return
	}
	if err := s.store.DeleteMatch(r.Context(), id); err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Preferences

func (s *Server) listPreferences(w http.ResponseWriter, r *http.Request) {
	userID, set, err := queryID(r, "user_id")
	if err != nil || !set {
		respondError(w, "user_id is required", http.StatusBadRequest)
		return
	}
	prefs, err := s.store.ListPreferences(r.Context(), userID)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, prefs)
}

func (s *Server) createPreference(w http.ResponseWriter, r *http.Request) {
	var in models.PreferenceInput
	if !decode(w, r, &in) {
		return
	}
	if !actingAs(w, r, in.UserID) {
		return
	}
	p, err := s.store.CreatePreference(r.Context(), in)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) deletePreference(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := s.store.GetPreference(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	if !actingAs(w, r, p.UserID) {
		return
	}
	if err := s.store.DeletePreference(r.Context(), id); err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
