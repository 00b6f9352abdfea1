package repo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const packJSON = `{
  "version": "2024.06",
  "releaseNotes": "unknown fields must be ignored",
  "intents": [
    {"intent": "GenerateOTP", "diagnosis": "OTP seed is out of sync.", "actions": ["Check OTP seed", "Resync clock"], "owner": "auth-team"},
    {"intent": "BiometricLockout", "diagnosis": "Too many failed biometric attempts.", "actions": ["Wait 30 seconds"]}
  ]
}`

func writePack(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "response_pack.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileCatalog_LookupCaseInsensitive(t *testing.T) {
	cat := NewFileCatalog(writePack(t, packJSON))
	ctx := context.Background()

	entry, err := cat.Lookup(ctx, "generateotp")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "GenerateOTP", entry.Intent)
	assert.Equal(t, []string{"Check OTP seed", "Resync clock"}, entry.Actions)
}

func TestFileCatalog_UnknownIntentReturnsNil(t *testing.T) {
	cat := NewFileCatalog(writePack(t, packJSON))

	entry, err := cat.Lookup(context.Background(), "PasskeyRegistrationFailure")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestFileCatalog_LoadIsMemoized(t *testing.T) {
	path := writePack(t, packJSON)
	cat := NewFileCatalog(path)
	ctx := context.Background()

	_, err := cat.Lookup(ctx, "GenerateOTP")
	require.NoError(t, err)

	// Deleting the file after the first load must not affect lookups.
	require.NoError(t, os.Remove(path))
	entry, err := cat.Lookup(ctx, "BiometricLockout")
	require.NoError(t, err)
	assert.NotNil(t, entry)
}

func TestFileCatalog_LoadFailureIsStickyUntilReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	cat := NewFileCatalog(path)
	ctx := context.Background()

	_, err := cat.Lookup(ctx, "GenerateOTP")
	require.Error(t, err)

	// Fix the underlying resource; without Reload the failure persists.
	require.NoError(t, os.WriteFile(path, []byte(packJSON), 0o600))
	_, err = cat.Lookup(ctx, "GenerateOTP")
	require.Error(t, err)

	require.NoError(t, cat.Reload(ctx))
	entry, err := cat.Lookup(ctx, "GenerateOTP")
	require.NoError(t, err)
	assert.NotNil(t, entry)
}

func TestFileCatalog_MalformedPack(t *testing.T) {
	cat := NewFileCatalog(writePack(t, "{not json"))

	_, err := cat.Lookup(context.Background(), "GenerateOTP")
	assert.Error(t, err)
}
