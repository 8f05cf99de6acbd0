package models

import (
	"strings"

	"github.com/julianstephens/coffeematch/internal/errors"
)

type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Location string `json:"location"`
	Bio      string `json:"bio"`
}

// RegisterInput is the body of POST /users/.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Location string `json:"location,omitempty"`
	Bio      string `json:"bio,omitempty"`
}

// Normalize trims every field in place.
func (in *RegisterInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Location = strings.TrimSpace(in.Location)
	in.Bio = strings.TrimSpace(in.Bio)
}

func (in RegisterInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" {
		return errors.Validation("Name and email are required to register.")
	}
	return nil
}

// ProfileUpdate is the body of PUT /users/{id}.
type ProfileUpdate struct {
	Name     string `json:"name"`
	Bio      string `json:"bio"`
	Location string `json:"location"`
}

func (in *ProfileUpdate) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Bio = strings.TrimSpace(in.Bio)
	in.Location = strings.TrimSpace(in.Location)
}

func (in ProfileUpdate) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.Validation("Name is required.")
	}
	return nil
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email string `json:"email"`
}

func (in LoginRequest) Validate() error {
	if strings.TrimSpace(in.Email) == "" {
		return errors.Validation("Enter your email to log in.")
	}
	return nil
}
