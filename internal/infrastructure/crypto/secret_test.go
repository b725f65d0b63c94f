package crypto_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multidom/domainsync/internal/infrastructure/crypto"
)

func TestSecretProvider_OverrideTakesPrecedence(t *testing.T) {
	dir := t.TempDir()
	override := "0123456789abcdef0123456789abcdef"

	withOverride := crypto.NewSecretProvider(override, filepath.Join(dir, "secret.key"), "ms_session")
	key, err := withOverride.Resolve()
	require.NoError(t, err)
	require.NotEmpty(t, key)

	// The file path is untouched when the override is long enough.
	_, statErr := os.Stat(filepath.Join(dir, "secret.key"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestSecretProvider_ShortOverrideFallsBackToFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "secret.key")

	provider := crypto.NewSecretProvider("too-short", file, "ms_session")
	key, err := provider.Resolve()
	require.NoError(t, err)
	require.NotEmpty(t, key)

	raw, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Len(t, raw, 64) // hex of 32 random bytes
}

func TestSecretProvider_FilePersistsAcrossProviders(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "nested", "secret.key")

	first, err := crypto.NewSecretProvider("", file, "ms_session").Resolve()
	require.NoError(t, err)

	second, err := crypto.NewSecretProvider("", file, "ms_session").Resolve()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSecretProvider_ResolveIsMemoized(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "secret.key")

	provider := crypto.NewSecretProvider("", file, "ms_session")
	first, err := provider.Resolve()
	require.NoError(t, err)

	// Replacing the file contents does not change an already resolved key.
	require.NoError(t, os.WriteFile(file, []byte("different-secret-material-here!!"), 0o600))

	again, err := provider.Resolve()
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestSecretProvider_KeyVariesByCookieName(t *testing.T) {
	override := "0123456789abcdef0123456789abcdef"

	a, err := crypto.NewSecretProvider(override, "", "ms_session").Resolve()
	require.NoError(t, err)

	b, err := crypto.NewSecretProvider(override, "", "other_cookie").Resolve()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestIDGenerator_RunID(t *testing.T) {
	gen := crypto.NewIDGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := gen.RunID()
		require.NoError(t, err)
		require.NotEmpty(t, id)
		assert.False(t, seen[id], "duplicate run id %q", id)
		seen[id] = true
	}
}
