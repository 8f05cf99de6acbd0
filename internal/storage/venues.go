package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/coffeematch/internal/models"
)

const venueColumns = "id, name, type, price_range, location, description, created_by_id"

func scanVenue(row interface{ Scan(...any) error }) (models.Venue, error) {
	var v models.Venue
	var createdBy sql.NullInt64
	err := row.Scan(&v.ID, &v.Name, &v.Type, &v.PriceRange, &v.Location, &v.Description, &createdBy)
	v.CreatedByID = createdBy.Int64
	return v, err
}

func (s *Store) CreateVenue(ctx context.Context, in models.VenueInput) (models.Venue, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return models.Venue{}, invalid(err.Error())
	}
	if in.CreatedByID != 0 {
		if _, err := s.GetUser(ctx, in.CreatedByID); err != nil {
			return models.Venue{}, err
		}
	}

	id, err := s.insert(ctx, s.db,
		"INSERT INTO venues (name, type, price_range, location, description, created_by_id) VALUES (?, ?, ?, ?, ?, ?)",
		in.Name, in.Type, in.PriceRange, in.Location, in.Description, nullID(in.CreatedByID))
	if err != nil {
		return models.Venue{}, fmt.Errorf("failed to insert venue: %w", err)
	}
	return models.Venue{
		ID:          id,
		Name:        in.Name,
		Type:        in.Type,
		PriceRange:  in.PriceRange,
		Location:    in.Location,
		Description: in.Description,
		CreatedByID: in.CreatedByID,
	}, nil
}

func (s *Store) getVenue(ctx context.Context, q querier, id int64) (models.Venue, error) {
	v, err := scanVenue(s.queryRow(ctx, q, "SELECT "+venueColumns+" FROM venues WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Venue{}, notFound("Venue not found")
	}
	if err != nil {
		return models.Venue{}, fmt.Errorf("failed to get venue: %w", err)
	}
	return v, nil
}

func (s *Store) GetVenue(ctx context.Context, id int64) (models.Venue, error) {
	return s.getVenue(ctx, s.db, id)
}

// ListVenues returns all venues, or only those of venueType when it is set.
func (s *Store) ListVenues(ctx context.Context, venueType string) ([]models.Venue, error) {
	query := "SELECT " + venueColumns + " FROM venues"
	var args []any
	if venueType != "" {
		query += " WHERE lower(type) = lower(?)"
		args = append(args, venueType)
	}
	query += " ORDER BY id"

	rows, err := s.query(ctx, s.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}
	defer rows.Close()

	venues := []models.Venue{}
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan venue: %w", err)
		}
		venues = append(venues, v)
	}
	return venues, rows.Err()
}

func (s *Store) DeleteVenue(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "venues", "Venue", id)
}
