package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/coffeematch/internal/models"
)

const slotColumns = "id, user_id, start_time, end_time, status"

func scanSlot(row interface{ Scan(...any) error }) (models.TimeSlot, error) {
	var ts models.TimeSlot
	var status string
	err := row.Scan(&ts.ID, &ts.UserID, &ts.StartTime, &ts.EndTime, &status)
	ts.Status = models.SlotStatus(status)
	return ts, err
}

func (s *Store) CreateSlot(ctx context.Context, in models.SlotInput) (models.TimeSlot, error) {
	in.Status = models.SlotStatus(strings.ToLower(string(in.Status)))
	if in.Status == "" {
		in.Status = models.SlotStatusAvailable
	}
	if err := in.Validate(); err != nil {
		return models.TimeSlot{}, invalid(err.Error())
	}
	if _, err := s.GetUser(ctx, in.UserID); err != nil {
		return models.TimeSlot{}, err
	}

	id, err := s.insert(ctx, s.db,
		"INSERT INTO time_slots (user_id, start_time, end_time, status) VALUES (?, ?, ?, ?)",
		in.UserID, in.StartTime, in.EndTime, string(in.Status))
	if err != nil {
		return models.TimeSlot{}, fmt.Errorf("failed to insert time slot: %w", err)
	}
	return models.TimeSlot{
		ID:        id,
		UserID:    in.UserID,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Status:    in.Status,
	}, nil
}

func (s *Store) getSlot(ctx context.Context, q querier, id int64, lock bool) (models.TimeSlot, error) {
	query := "SELECT " + slotColumns + " FROM time_slots WHERE id = ?"
	if lock {
		query += s.forUpdate()
	}
	ts, err := scanSlot(s.queryRow(ctx, q, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.TimeSlot{}, notFound("Time slot not found")
	}
	if err != nil {
		return models.TimeSlot{}, fmt.Errorf("failed to get time slot: %w", err)
	}
	return ts, nil
}

func (s *Store) GetSlot(ctx context.Context, id int64) (models.TimeSlot, error) {
	return s.getSlot(ctx, s.db, id, false)
}

// ListSlotsByUser returns every slot owned by userID, earliest first.
func (s *Store) ListSlotsByUser(ctx context.Context, userID int64) ([]models.TimeSlot, error) {
	return s.listSlots(ctx, "SELECT "+slotColumns+" FROM time_slots WHERE user_id = ? ORDER BY start_time, id", userID)
}

// ListAvailableSlots returns every available slot across all users, earliest first.
func (s *Store) ListAvailableSlots(ctx context.Context) ([]models.TimeSlot, error) {
	return s.listSlots(ctx, "SELECT "+slotColumns+" FROM time_slots WHERE status = ? ORDER BY start_time, id", string(models.SlotStatusAvailable))
}

func (s *Store) listSlots(ctx context.Context, query string, args ...any) ([]models.TimeSlot, error) {
	rows, err := s.query(ctx, s.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list time slots: %w", err)
	}
	defer rows.Close()

	slots := []models.TimeSlot{}
	for rows.Next() {
		ts, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time slot: %w", err)
		}
		slots = append(slots, ts)
	}
	return slots, rows.Err()
}

func (s *Store) bookSlot(ctx context.Context, q querier, id int64) error {
	_, err := s.exec(ctx, q, "UPDATE time_slots SET status = ? WHERE id = ?", string(models.SlotStatusBooked), id)
	if err != nil {
		return fmt.Errorf("failed to book time slot: %w", err)
	}
	return nil
}

func (s *Store) DeleteSlot(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "time_slots", "Time slot", id)
}
