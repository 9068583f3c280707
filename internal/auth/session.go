package auth

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Session is what `courier login` stores locally: where to talk and the
// bearer token to talk with. Everything else is decoded from the token.
type Session struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

// Dir returns the courier config directory (~/.courier).
func Dir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".courier")
}

func sessionPath() string {
	return filepath.Join(Dir(), "session.yml")
}

// SaveSession writes the session file with owner-only permissions.
func SaveSession(s Session) error {
	if s.Token == "" {
		return fmt.Errorf("session token cannot be empty")
	}
	if err := os.MkdirAll(Dir(), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(&s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(sessionPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// LoadSession reads the stored session. A missing file means the user
// has not signed in.
func LoadSession() (*Session, error) {
	data, err := os.ReadFile(sessionPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("not signed in: run `courier login`")
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	if s.Token == "" {
		return nil, fmt.Errorf("session file has no token: run `courier login`")
	}
	return &s, nil
}

// ClearSession deletes the session file. Already-absent is fine.
func ClearSession() error {
	if err := os.Remove(sessionPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
