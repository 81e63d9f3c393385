package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveStatic(t *testing.T) {
	cred, err := Resolve(Static("sk-test-123456789"))
	require.NoError(t, err)
	assert.Equal(t, "sk-test-123456789", cred.Value)
	assert.Equal(t, OriginStatic, cred.Origin)
}

func TestResolveEmptyStaticFallsThrough(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env-123456")
	cred, err := Resolve(Static(""), Env())
	require.NoError(t, err)
	assert.Equal(t, "from-env-123456", cred.Value)
	assert.Equal(t, OriginEnv, cred.Origin)
}

func TestResolveEnvPrecedence(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "primary")
	t.Setenv("GOOGLE_API_KEY", "fallback")
	cred, err := Resolve(Env())
	require.NoError(t, err)
	assert.Equal(t, "primary", cred.Value)
}

func TestResolveEnvFallbackName(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "fallback")
	cred, err := Resolve(Env())
	require.NoError(t, err)
	assert.Equal(t, "fallback", cred.Value)
}

func TestResolveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.env")
	require.NoError(t, os.WriteFile(path, []byte("GEMINI_API_KEY=from-file-9876\n"), 0o600))

	cred, err := Resolve(File(path))
	require.NoError(t, err)
	assert.Equal(t, "from-file-9876", cred.Value)
	assert.Equal(t, OriginFile, cred.Origin)
}

func TestResolveFileWinsOverEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")
	path := filepath.Join(t.TempDir(), "secrets.env")
	require.NoError(t, os.WriteFile(path, []byte("GEMINI_API_KEY=from-file\n"), 0o600))

	cred, err := Resolve(File(path), Env())
	require.NoError(t, err)
	assert.Equal(t, "from-file", cred.Value)
	assert.Equal(t, OriginFile, cred.Origin)
}

func TestResolveMissingFileIsAMiss(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")
	cred, err := Resolve(File(filepath.Join(t.TempDir(), "absent.env")), Env())
	require.NoError(t, err)
	assert.Equal(t, OriginEnv, cred.Origin)
}

func TestResolveCustomName(t *testing.T) {
	t.Setenv("MY_SERVICE_KEY", "custom")
	cred, err := Resolve(Env("MY_SERVICE_KEY"))
	require.NoError(t, err)
	assert.Equal(t, "custom", cred.Value)
}

func TestResolveNotFound(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	_, err := Resolve(Env())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "AIza...wXyZ", Redact("AIzaSyD-abcdefg-wXyZ"))
	assert.Equal(t, "****", Redact("short"))
	assert.Equal(t, "****", Redact(""))
}
