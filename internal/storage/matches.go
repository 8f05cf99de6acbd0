package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/coffeematch/internal/models"
)

const matchColumns = "id, requester_id, target_id, time_slot_id, proposed_time, venue_id, message, status, created_at"

func scanMatch(row interface{ Scan(...any) error }) (models.Match, error) {
	var m models.Match
	var slotID, venueID sql.NullInt64
	var status string
	err := row.Scan(&m.ID, &m.RequesterID, &m.TargetID, &slotID, &m.ProposedTime, &venueID, &m.Message, &status, &m.CreatedAt)
	m.TimeSlotID = slotID.Int64
	m.VenueID = venueID.Int64
	m.Status = models.ParseMatchStatus(status)
	return m, err
}

// CreateMatch records a pending proposal after checking that both users and
// the venue exist, the slot belongs to the target and is still open, and
// proposed_time is the slot's start.
func (s *Store) CreateMatch(ctx context.Context, in models.MatchInput) (models.Match, error) {
	var match models.Match
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if in.RequesterID == in.TargetID {
			return invalid("You cannot invite yourself")
		}
		if _, err := s.getUser(ctx, tx, in.RequesterID); err != nil {
			return userLookup(err)
		}
		if _, err := s.getUser(ctx, tx, in.TargetID); err != nil {
			return userLookup(err)
		}
		if _, err := s.getVenue(ctx, tx, in.VenueID); err != nil {
			return err
		}

		slot, err := s.getSlot(ctx, tx, in.TimeSlotID, true)
		if err != nil || slot.UserID != in.TargetID {
			if err != nil && !IsNotFound(err) {
				return err
			}
			return invalid("Invalid time slot for target user")
		}
		if !in.ProposedTime.Equal(slot.StartTime) {
			return invalid("Proposed time must match the selected time slot start")
		}
		if !slot.IsAvailable() {
			return conflict("Time slot is already booked")
		}

		match = models.Match{
			RequesterID:  in.RequesterID,
			TargetID:     in.TargetID,
			TimeSlotID:   slot.ID,
			ProposedTime: slot.StartTime,
			VenueID:      in.VenueID,
			Message:      strings.TrimSpace(in.Message),
			Status:       models.MatchStatusPending,
			CreatedAt:    s.timestamp(),
		}
		match.ID, err = s.insertMatch(ctx, tx, match)
		return err
	})
	return match, err
}

func userLookup(err error) error {
	if IsNotFound(err) {
		return notFound("Requester or target user not found")
	}
	return err
}

func (s *Store) insertMatch(ctx context.Context, q querier, m models.Match) (int64, error) {
	id, err := s.insert(ctx, q,
		"INSERT INTO matches (requester_id, target_id, time_slot_id, proposed_time, venue_id, message, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		m.RequesterID, m.TargetID, nullID(m.TimeSlotID), m.ProposedTime, nullID(m.VenueID), m.Message, string(m.Status), m.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert match: %w", err)
	}
	return id, nil
}

func (s *Store) getMatch(ctx context.Context, q querier, id int64, lock bool) (models.Match, error) {
	query := "SELECT " + matchColumns + " FROM matches WHERE id = ?"
	if lock {
		query += s.forUpdate()
	}
	m, err := scanMatch(s.queryRow(ctx, q, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Match{}, notFound("Match request not found")
	}
	if err != nil {
		return models.Match{}, fmt.Errorf("failed to get match: %w", err)
	}
	return m, nil
}

func (s *Store) GetMatch(ctx context.Context, id int64) (models.Match, error) {
	return s.getMatch(ctx, s.db, id, false)
}

// ListMatchesReceived returns every match targeting userID, newest first.
func (s *Store) ListMatchesReceived(ctx context.Context, userID int64) ([]models.Match, error) {
	return s.listMatches(ctx, "SELECT "+matchColumns+" FROM matches WHERE target_id = ? ORDER BY created_at DESC, id DESC", userID)
}

// ListMatchesSent returns every match requested by userID, newest first.
func (s *Store) ListMatchesSent(ctx context.Context, userID int64) ([]models.Match, error) {
	return s.listMatches(ctx, "SELECT "+matchColumns+" FROM matches WHERE requester_id = ? ORDER BY created_at DESC, id DESC", userID)
}

func (s *Store) listMatches(ctx context.Context, query string, args ...any) ([]models.Match, error) {
	rows, err := s.query(ctx, s.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	matches := []models.Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// loadForResponse locks the match and checks that actorID may move it to `to`.
func (s *Store) loadForResponse(ctx context.Context, tx *sql.Tx, matchID, actorID int64, to models.MatchStatus) (models.Match, error) {
	m, err := s.getMatch(ctx, tx, matchID, true)
	if err != nil {
		return models.Match{}, err
	}
	if m.RoleOf(actorID) != models.RoleTarget {
		return models.Match{}, forbidden("Only the invited user can respond to this match")
	}
	if _, err := models.Transition(m.Status, to); err != nil {
		return models.Match{}, conflict(fmt.Sprintf("Match is already %s", m.Status))
	}
	return m, nil
}

func (s *Store) setMatchStatus(ctx context.Context, q querier, id int64, status models.MatchStatus) error {
	if _, err := s.exec(ctx, q, "UPDATE matches SET status = ? WHERE id = ?", string(status), id); err != nil {
		return fmt.Errorf("failed to update match: %w", err)
	}
	return nil
}

// RespondToMatch applies accept or reject for the target. Accepting books the
// referenced slot in the same transaction and fails if it is already booked.
func (s *Store) RespondToMatch(ctx context.Context, matchID, actorID int64, to models.MatchStatus) (models.Match, error) {
	if to != models.MatchStatusAccepted && to != models.MatchStatusRejected {
		return models.Match{}, invalid("Status must be accepted or rejected")
	}

	var match models.Match
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		m, err := s.loadForResponse(ctx, tx, matchID, actorID, to)
		if err != nil {
			return err
		}

		if to == models.MatchStatusAccepted && m.TimeSlotID != 0 {
			slot, err := s.getSlot(ctx, tx, m.TimeSlotID, true)
			switch {
			case IsNotFound(err):
			case err != nil:
				return err
			case !slot.IsAvailable():
				return conflict("Time slot is already booked")
			default:
				if err := s.bookSlot(ctx, tx, slot.ID); err != nil {
					return err
				}
			}
		}

		if err := s.setMatchStatus(ctx, tx, m.ID, to); err != nil {
			return err
		}
		m.Status = to
		match = m
		return nil
	})
	return match, err
}

// RescheduleMatch closes a pending match as rescheduled and opens a
// counter-proposal from the original target to the original requester on
// newSlotID, which must be an open slot of the original requester. A zero
// newVenueID keeps the original venue. The new match is returned.
func (s *Store) RescheduleMatch(ctx context.Context, matchID, actorID, newSlotID, newVenueID int64) (models.Match, error) {
	var counter models.Match
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		m, err := s.loadForResponse(ctx, tx, matchID, actorID, models.MatchStatusRescheduled)
		if err != nil {
			return err
		}

		slot, err := s.getSlot(ctx, tx, newSlotID, true)
		if err != nil || slot.UserID != m.RequesterID {
			if err != nil && !IsNotFound(err) {
				return err
			}
			return invalid("Invalid time slot for requester")
		}
		if !slot.IsAvailable() {
			return conflict("Time slot is already booked")
		}

		venueID := newVenueID
		if venueID == 0 {
			venueID = m.VenueID
		}
		if _, err := s.getVenue(ctx, tx, venueID); err != nil {
			return err
		}

		if err := s.setMatchStatus(ctx, tx, m.ID, models.MatchStatusRescheduled); err != nil {
			return err
		}

		counter = models.Match{
			RequesterID:  m.TargetID,
			TargetID:     m.RequesterID,
			TimeSlotID:   slot.ID,
			ProposedTime: slot.StartTime,
			VenueID:      venueID,
			Message:      m.Message,
			Status:       models.MatchStatusPending,
			CreatedAt:    s.timestamp(),
		}
		counter.ID, err = s.insertMatch(ctx, tx, counter)
		return err
	})
	return counter, err
}

func (s *Store) DeleteMatch(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "matches", "Match request", id)
}
