package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrs "github.com/mastokit/masto/pkg/errors"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestResolveCredentialsLiterals(t *testing.T) {
	creds, err := ResolveCredentials("id", "secret", "token")
	require.NoError(t, err)

	assert.Equal(t, "id", creds.ClientID)
	assert.Equal(t, "secret", creds.ClientSecret)
	assert.Equal(t, "token", creds.AccessToken)
}

func TestResolveCredentialsClientIDFile(t *testing.T) {
	path := writeTempFile(t, "clientcred.txt", "abc\nxyz\n")

	creds, err := ResolveCredentials(path, "ignored-secret", "")
	require.NoError(t, err)

	assert.Equal(t, "abc", creds.ClientID)
	assert.Equal(t, "xyz", creds.ClientSecret, "secret from the file wins over the explicitly passed one")
}

func TestResolveCredentialsTokenFile(t *testing.T) {
	path := writeTempFile(t, "usercred.txt", "sekrit-token\n")

	creds, err := ResolveCredentials("id", "secret", path)
	require.NoError(t, err)

	assert.Equal(t, "sekrit-token", creds.AccessToken)
}

func TestResolveCredentialsLiteralIDWithoutSecret(t *testing.T) {
	_, err := ResolveCredentials("id", "", "")
	require.Error(t, err)

	var illegal *pkgerrs.IllegalArgumentError
	assert.True(t, errors.As(err, &illegal))
}

func TestResolveCredentialsShortClientFile(t *testing.T) {
	path := writeTempFile(t, "clientcred.txt", "only-one-line\n")

	_, err := ResolveCredentials(path, "", "")
	require.Error(t, err)

	var illegal *pkgerrs.IllegalArgumentError
	assert.True(t, errors.As(err, &illegal))
}

func TestSaveAppCredentialsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clientcred.txt")
	require.NoError(t, SaveAppCredentials(path, "abc", "xyz"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abc\nxyz\n", string(raw))

	creds, err := ResolveCredentials(path, "", "")
	require.NoError(t, err)
	assert.Equal(t, "abc", creds.ClientID)
	assert.Equal(t, "xyz", creds.ClientSecret)
}

func TestSaveAccessTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usercred.txt")
	require.NoError(t, SaveAccessToken(path, "sekrit-token"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sekrit-token\n", string(raw))

	creds, err := ResolveCredentials("id", "secret", path)
	require.NoError(t, err)
	assert.Equal(t, "sekrit-token", creds.AccessToken)
}
