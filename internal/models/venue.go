package models

import (
	"strings"

	"github.com/julianstephens/coffeematch/internal/errors"
)

// Common venue types. Backends may return others.
const (
	VenueTypeCoffee     = "coffee"
	VenueTypeRestaurant = "restaurant"
	VenueTypeBar        = "bar"
	VenueTypeOther      = "other"
)

// VenueTypes lists the types offered when suggesting a venue.
var VenueTypes = []string{VenueTypeCoffee, VenueTypeRestaurant, VenueTypeBar, VenueTypeOther}

type Venue struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	PriceRange  string `json:"price_range"`
	Location    string `json:"location"`
	Description string `json:"description"`
	CreatedByID int64  `json:"created_by_id"`
}

// VenueInput is the body of POST /venues/.
type VenueInput struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	PriceRange  string `json:"price_range"`
	Location    string `json:"location"`
	Description string `json:"description"`
	CreatedByID int64  `json:"created_by_id"`
}

func (in *VenueInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Type = strings.TrimSpace(in.Type)
	in.PriceRange = strings.TrimSpace(in.PriceRange)
	in.Location = strings.TrimSpace(in.Location)
	in.Description = strings.TrimSpace(in.Description)
}

func (in VenueInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Type) == "" {
		return errors.Validation("Venue name and type are required.")
	}
	return nil
}
