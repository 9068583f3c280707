package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := LoadSession()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")

	want := Session{BaseURL: "https://portal.example.org", Token: "tok-123"}
	require.NoError(t, SaveSession(want))

	got, err := LoadSession()
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	info, err := os.Stat(filepath.Join(Dir(), "session.yml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	require.NoError(t, ClearSession())
	_, err = LoadSession()
	assert.Error(t, err)

	// Clearing twice is fine.
	assert.NoError(t, ClearSession())
}

func TestSaveSessionRejectsEmptyToken(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	assert.Error(t, SaveSession(Session{BaseURL: "https://x"}))
}
