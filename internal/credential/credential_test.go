// ABOUTME: Tests for the credential store backends and token inspection
// ABOUTME: Every backend runs the same overwrite/clear/absent contract

package credential

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()

	sqlStore, err := NewSQLiteStore(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlStore.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(filepath.Join(t.TempDir(), "itemdesk", "credentials.yaml")),
		"sqlite": sqlStore,
	}
}

func TestStore_EmptyIsAbsent(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			c, ok := s.Get()
			assert.False(t, ok)
			assert.True(t, c.IsZero())
		})
	}
}

func TestStore_SetOverwrites(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set(Credential{Token: "first", TokenType: "bearer"}))
			require.NoError(t, s.Set(Credential{Token: "second", TokenType: "Bearer"}))

			c, ok := s.Get()
			require.True(t, ok)
			assert.Equal(t, Credential{Token: "second", TokenType: "Bearer"}, c)
		})
	}
}

func TestStore_Clear(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set(Credential{Token: "tok", TokenType: "bearer"}))
			require.NoError(t, s.Clear())

			_, ok := s.Get()
			assert.False(t, ok)

			// Clearing twice is fine
			assert.NoError(t, s.Clear())
		})
	}
}

func TestStore_BlankTokenIsAbsent(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, tok := range []string{"", "   "} {
				require.NoError(t, s.Set(Credential{Token: tok, TokenType: "bearer"}))
				c, ok := s.Get()
				assert.False(t, ok, "token %q", tok)
				assert.True(t, c.IsZero())
			}
		})
	}
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")

	require.NoError(t, NewFileStore(path).Set(Credential{Token: "persisted", TokenType: "bearer"}))

	c, ok := NewFileStore(path).Get()
	require.True(t, ok)
	assert.Equal(t, "persisted", c.Token)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "access_token: persisted")
	assert.Contains(t, string(data), "token_type: bearer")
}

func TestFileStore_CorruptFileIsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	require.NoError(t, os.WriteFile(path, []byte("access_token: [unterminated"), 0600))

	_, ok := NewFileStore(path).Get()
	assert.False(t, ok)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	s1, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s1.Set(Credential{Token: "persisted", TokenType: "bearer"}))
	require.NoError(t, s1.Close())

	s2, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer s2.Close()

	c, ok := s2.Get()
	require.True(t, ok)
	assert.Equal(t, Credential{Token: "persisted", TokenType: "bearer"}, c)
}

func TestMemoryStore_SetCount(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Set(Credential{Token: "a"}))
	require.NoError(t, s.Set(Credential{Token: "b"}))
	assert.Equal(t, 2, s.SetCount())
}

func TestInspect(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": exp.Unix(),
	}).SignedString([]byte("any-secret"))
	require.NoError(t, err)

	claims, err := Inspect(Credential{Token: signed, TokenType: "bearer"})
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.True(t, claims.ExpiresAt.Equal(exp))
	assert.False(t, claims.Expired(time.Now()))
	assert.True(t, claims.Expired(exp.Add(time.Second)))
}

func TestInspect_Errors(t *testing.T) {
	_, err := Inspect(Credential{})
	assert.ErrorIs(t, err, ErrNoCredential)

	_, err = Inspect(Credential{Token: "not-a-jwt"})
	assert.Error(t, err)
}
