package keyring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/coffeematch/internal/constants"
)

var (
	// ErrNotFound is returned when no identity is remembered in the keyring
	ErrNotFound = errors.New("no remembered login in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// account scopes the remembered login to one backend so switching
// --api-url does not resume an identity from another server.
func account(apiURL string) string {
	return constants.DefaultKeyringUser + "@" + strings.TrimRight(apiURL, "/")
}

// GetLoginEmail retrieves the remembered login email for the given backend.
// Returns ErrNotFound if nobody is logged in.
func GetLoginEmail(apiURL string) (string, error) {
	email, err := keyring.Get(constants.AppName, account(apiURL))
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return email, nil
}

// SetLoginEmail remembers the login email for the given backend.
func SetLoginEmail(apiURL, email string) error {
	if strings.TrimSpace(email) == "" {
		return errors.New("login email cannot be empty")
	}
	if err := keyring.Set(constants.AppName, account(apiURL), email); err != nil {
		return fmt.Errorf("failed to store login in keyring: %w", err)
	}
	return nil
}

// DeleteLoginEmail forgets the remembered login for the given backend.
func DeleteLoginEmail(apiURL string) error {
	err := keyring.Delete(constants.AppName, account(apiURL))
	if err != nil {
		if err == keyring.ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete login from keyring: %w", err)
	}
	return nil
}

// IsAvailable checks if the OS keyring is available on the current system.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || err == keyring.ErrNotFound
}
