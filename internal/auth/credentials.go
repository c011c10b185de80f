package auth

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// CredentialStore verifies user names and passwords against bcrypt hashes.
type CredentialStore struct {
	users map[string]string // username -> bcrypt hash
}

// NewCredentialStore creates a credential store from entries in the format
// "user:hash". Each entry must contain a colon separating the username from
// the bcrypt hash.
func NewCredentialStore(entries []string) (*CredentialStore, error) {
	users := make(map[string]string)

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		// Bcrypt hashes contain '$' but no colons, so the first colon
		// separates the username.
		username, hash, found := strings.Cut(entry, ":")
		if !found {
			return nil, fmt.Errorf(
				"credentials: invalid entry format, expected user:hash",
			)
		}

		if username == "" || hash == "" {
			return nil, fmt.Errorf(
				"credentials: username and hash must not be empty",
			)
		}

		users[username] = hash
	}

	if len(users) == 0 {
		return nil, fmt.Errorf(
			"credentials: no valid user entries found",
		)
	}

	return &CredentialStore{users: users}, nil
}

// NewDemoCredentialStore hashes a single plaintext credential pair at the
// given bcrypt cost.
func NewDemoCredentialStore(username, password string, cost int) (*CredentialStore, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("credentials: hashing demo password: %w", err)
	}

	return &CredentialStore{
		users: map[string]string{username: string(hash)},
	}, nil
}

// Verify checks the password of the given user.
func (s *CredentialStore) Verify(username, password string) error {
	hash, exists := s.users[username]
	if !exists {
		return fmt.Errorf("%w: unknown user", ErrInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword(
		[]byte(hash), []byte(password),
	); err != nil {
		return fmt.Errorf("%w: wrong password", ErrInvalidCredentials)
	}

	return nil
}

// Len returns the number of known users.
func (s *CredentialStore) Len() int {
	return len(s.users)
}
