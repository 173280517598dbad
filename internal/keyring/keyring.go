package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/innerlevel/internal/constants"
)

var (
	// ErrNotFound is returned when no secret is stored under the requested entry
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Entry names a secret kept under the application's keyring service.
type Entry string

const (
	// ConnectionString is the PostgreSQL connection string
	ConnectionString Entry = constants.DefaultKeyringUser
	// InsightToken is the optional bearer token for the generation endpoint
	InsightToken Entry = constants.InsightKeyringUser
)

// Entries lists every entry the application manages.
var Entries = []Entry{ConnectionString, InsightToken}

// ParseEntry maps a user-supplied name to an Entry. Both the full entry
// name and the short forms "db" and "insight" are accepted.
func ParseEntry(s string) (Entry, error) {
	switch s {
	case "db", "database", string(ConnectionString):
		return ConnectionString, nil
	case "insight", "token", string(InsightToken):
		return InsightToken, nil
	}
	return "", fmt.Errorf("unknown keyring entry %q (want db or insight)", s)
}

// Get retrieves a secret. Returns ErrNotFound if nothing is stored.
func Get(e Entry) (string, error) {
	v, err := keyring.Get(constants.AppName, string(e))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return v, nil
}

// Set stores a secret, replacing any previous value.
func Set(e Entry, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", e)
	}
	if err := keyring.Set(constants.AppName, string(e), value); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", e, err)
	}
	return nil
}

// Delete removes a secret.
func Delete(e Entry) error {
	err := keyring.Delete(constants.AppName, string(e))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", e, err)
	}
	return nil
}

// GetConnectionString retrieves the database connection string.
func GetConnectionString() (string, error) {
	return Get(ConnectionString)
}

// SetConnectionString stores the database connection string.
func SetConnectionString(connStr string) error {
	return Set(ConnectionString, connStr)
}

// DeleteConnectionString removes the database connection string.
func DeleteConnectionString() error {
	return Delete(ConnectionString)
}

// GetInsightToken retrieves the generation endpoint token.
func GetInsightToken() (string, error) {
	return Get(InsightToken)
}

// IsAvailable reports whether the OS keyring answers at all. A lookup of a
// key that never exists returns ErrNotFound on a working keyring.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
