package masto

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrs "github.com/mastokit/masto/pkg/errors"
)

func TestNewClientRequiresSecretForLiteralID(t *testing.T) {
	_, err := NewClient(&Config{ClientID: "literal-id"})
	require.Error(t, err)

	var illegal *pkgerrs.IllegalArgumentError
	assert.True(t, errors.As(err, &illegal))
}

func TestNewClientResolvesCredentialFiles(t *testing.T) {
	dir := t.TempDir()
	clientFile := filepath.Join(dir, "clientcred.txt")
	tokenFile := filepath.Join(dir, "usercred.txt")
	require.NoError(t, os.WriteFile(clientFile, []byte("abc\nxyz\n"), 0o600))
	require.NoError(t, os.WriteFile(tokenFile, []byte("sekrit-token\n"), 0o600))

	client, err := NewClient(&Config{
		ClientID:     clientFile,
		ClientSecret: "ignored",
		AccessToken:  tokenFile,
	})
	require.NoError(t, err)

	assert.Equal(t, "abc", client.creds.ClientID)
	assert.Equal(t, "xyz", client.creds.ClientSecret)
	assert.Equal(t, "sekrit-token", client.AccessToken())
}

func TestNewClientRejectsBadRatelimitMethod(t *testing.T) {
	_, err := NewClient(&Config{
		ClientID:        "id",
		ClientSecret:    "secret",
		RatelimitMethod: "hope",
	})
	require.Error(t, err)

	var illegal *pkgerrs.IllegalArgumentError
	assert.True(t, errors.As(err, &illegal))
}

func TestNewClientRejectsBadPaceFactor(t *testing.T) {
	_, err := NewClient(&Config{
		ClientID:            "id",
		ClientSecret:        "secret",
		RatelimitPaceFactor: 1.5,
	})
	require.Error(t, err)

	var illegal *pkgerrs.IllegalArgumentError
	assert.True(t, errors.As(err, &illegal))
}

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient(&Config{
		ClientID:     "id",
		ClientSecret: "secret",
	})
	require.NoError(t, err)
	assert.Empty(t, client.AccessToken())
}
