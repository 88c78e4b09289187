// Package session holds the client-side proof of authentication: the token
// and role handed out by the login endpoint. The session is an explicit
// object created at login and torn down at logout, never ambient state.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"itrack/internal/models"
)

const (
	sessionFileName = ".itrack-session.json"
	configDirEnvKey = "ITRACK_CONFIG_DIR"
)

// ErrNotAuthenticated is returned when a protected operation is attempted
// without a stored session.
var ErrNotAuthenticated = errors.New("no access: not logged in")

// Session is the stored login state. Presence of a non-empty token means
// "authenticated"; validity is only established by the backend on use.
type Session struct {
	Token   string      `json:"token"`
	Role    models.Role `json:"role"`
	Name    string      `json:"name,omitempty"`
	LoginID string      `json:"loginId,omitempty"`
}

// Store persists one session as a JSON file.
type Store struct {
	path string
}

// NewStore creates a session store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath returns the session file location, honoring the config dir
// override used by the rest of the CLI.
func DefaultPath() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(configDirEnvKey)); dir != "" {
		return filepath.Join(dir, sessionFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, sessionFileName), nil
}

// Current returns the stored session, or nil when no session exists.
func (s *Store) Current() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("corrupt session file %s: %w", s.path, err)
	}
	if strings.TrimSpace(sess.Token) == "" {
		return nil, nil
	}
	return &sess, nil
}

// IsAuthenticated reports whether a session with a non-empty token is
// stored. It never calls the backend; an expired token still counts and is
// rejected downstream on first use.
func (s *Store) IsAuthenticated() bool {
	sess, err := s.Current()
	return err == nil && sess != nil
}

// Save persists the session with owner-only permissions.
func (s *Store) Save(sess *Session) error {
	if sess == nil || strings.TrimSpace(sess.Token) == "" {
		return fmt.Errorf("session token is required")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Clear removes the stored session. Clearing an absent session is not an
// error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Require returns the stored session or ErrNotAuthenticated. This is the
// guard every protected command passes through before any network call.
func (s *Store) Require() (*Session, error) {
	sess, err := s.Current()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNotAuthenticated
	}
	return sess, nil
}
