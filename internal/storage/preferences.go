package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/coffeematch/internal/models"
)

const preferenceColumns = "id, user_id, preference_type, preference_value, confidence"

func scanPreference(row interface{ Scan(...any) error }) (models.Preference, error) {
	var p models.Preference
	err := row.Scan(&p.ID, &p.UserID, &p.PreferenceType, &p.PreferenceValue, &p.Confidence)
	return p, err
}

func (s *Store) CreatePreference(ctx context.Context, in models.PreferenceInput) (models.Preference, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return models.Preference{}, invalid(err.Error())
	}
	if _, err := s.GetUser(ctx, in.UserID); err != nil {
		return models.Preference{}, err
	}

	id, err := s.insert(ctx, s.db,
		"INSERT INTO preferences (user_id, preference_type, preference_value, confidence) VALUES (?, ?, ?, ?)",
		in.UserID, in.PreferenceType, in.PreferenceValue, in.Confidence)
	if err != nil {
		return models.Preference{}, fmt.Errorf("failed to insert preference: %w", err)
	}
	return models.Preference{
		ID:              id,
		UserID:          in.UserID,
		PreferenceType:  in.PreferenceType,
		PreferenceValue: in.PreferenceValue,
		Confidence:      in.Confidence,
	}, nil
}

func (s *Store) GetPreference(ctx context.Context, id int64) (models.Preference, error) {
	p, err := scanPreference(s.queryRow(ctx, s.db, "SELECT "+preferenceColumns+" FROM preferences WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Preference{}, notFound("Preference not found")
	}
	if err != nil {
		return models.Preference{}, fmt.Errorf("failed to get preference: %w", err)
	}
	return p, nil
}

func (s *Store) ListPreferences(ctx context.Context, userID int64) ([]models.Preference, error) {
	rows, err := s.query(ctx, s.db, "SELECT "+preferenceColumns+" FROM preferences WHERE user_id = ? ORDER BY id", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}
	defer rows.Close()

	prefs := []models.Preference{}
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}

func (s *Store) DeletePreference(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "preferences", "Preference", id)
}
