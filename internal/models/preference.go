package models

import (
	"strings"

	"github.com/julianstephens/coffeematch/internal/errors"
)

// Preference is a free-form hint about what a user likes (venue type, area, time of day).
type Preference struct {
	ID              int64  `json:"id"`
	UserID          int64  `json:"user_id"`
	PreferenceType  string `json:"preference_type"`
	PreferenceValue string `json:"preference_value"`
	Confidence      int    `json:"confidence"`
}

// PreferenceInput is the body of POST /preferences/.
type PreferenceInput struct {
	UserID          int64  `json:"user_id"`
	PreferenceType  string `json:"preference_type"`
	PreferenceValue string `json:"preference_value"`
	Confidence      int    `json:"confidence"`
}

func (in *PreferenceInput) Normalize() {
	in.PreferenceType = strings.TrimSpace(in.PreferenceType)
	in.PreferenceValue = strings.TrimSpace(in.PreferenceValue)
	if in.Confidence == 0 {
		in.Confidence = 1
	}
}

func (in PreferenceInput) Validate() error {
	if strings.TrimSpace(in.PreferenceType) == "" || strings.TrimSpace(in.PreferenceValue) == "" {
		return errors.Validation("Preference type and value are required.")
	}
	if in.Confidence < 0 || in.Confidence > 5 {
		return errors.Validationf("Confidence must be between 0 and 5, got %d.", in.Confidence)
	}
	return nil
}
