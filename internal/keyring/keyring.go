// Package keyring keeps the PostgreSQL connection string in the OS keyring
// so it never has to live in the config file.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/momentum/internal/constants"
)

// Reference is the config value that means "read the connection string from
// the keyring".
const Reference = "keyring"

var (
	// ErrNotFound is returned when no credentials are stored
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring cannot be reached
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Credentials addresses one keyring entry under the application's service.
type Credentials struct {
	service string
	user    string
}

// New returns the entry for user, or the default database entry when user
// is empty.
func New(user string) Credentials {
	if user == "" {
		user = constants.DefaultKeyringUser
	}
	return Credentials{service: constants.AppName, user: user}
}

// Get returns the stored connection string.
func (c Credentials) Get() (string, error) {
	connStr, err := keyring.Get(c.service, c.user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return connStr, nil
}

// Set stores connStr, replacing any previous value.
func (c Credentials) Set(connStr string) error {
	if connStr == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := keyring.Set(c.service, c.user, connStr); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

// Delete removes the stored connection string.
func (c Credentials) Delete() error {
	if err := keyring.Delete(c.service, c.user); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// Available is a best-effort probe of the OS keyring.
func (c Credentials) Available() bool {
	_, err := keyring.Get(c.service, "availability-probe")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

// Resolve swaps the keyring reference for the stored connection string and
// returns any other database target unchanged.
func Resolve(target string) (string, error) {
	if target != Reference {
		return target, nil
	}
	connStr, err := New("").Get()
	if err != nil {
		return "", fmt.Errorf("database is set to %q: %w", Reference, err)
	}
	return connStr, nil
}
