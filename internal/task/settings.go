package task

import (
	"errors"
	"fmt"
	"time"

	"github.com/javiermolinar/daybook/internal/availability"
)

// ErrSettingsNotFound is returned when a user has no stored settings.
var ErrSettingsNotFound = errors.New("user settings not found")

// Settings holds a user's scheduling preferences.
// A nil AwakeHours means the user never configured availability.
type Settings struct {
	UserID     string                  `json:"user_id"`
	Timezone   string                  `json:"timezone"`
	AwakeHours availability.AwakeHours `json:"awake_hours,omitempty"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

// Validate checks the timezone and the awake hours.
func (s *Settings) Validate() error {
	if s.UserID == "" {
		return ErrMissingUserID
	}
	if _, err := availability.LoadLocation(s.Timezone); err != nil {
		return err
	}
	if err := s.AwakeHours.Validate(); err != nil {
		return fmt.Errorf("awake_hours: %w", err)
	}
	return nil
}
