package masto

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrs "github.com/mastokit/masto/pkg/errors"
)

func writeRatelimitHeaders(w http.ResponseWriter) {
	w.Header().Set("X-RateLimit-Limit", "300")
	w.Header().Set("X-RateLimit-Remaining", "299")
	w.Header().Set("X-RateLimit-Reset", time.Now().Add(5*time.Minute).UTC().Format("2006-01-02T15:04:05.000000Z"))
}

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	client, err := NewClient(&Config{
		Server:       serverURL,
		ClientID:     "the-client-id",
		ClientSecret: "the-client-secret",
	})
	require.NoError(t, err)
	return client
}

func TestRegisterApp(t *testing.T) {
	var gotForm url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/apps", r.URL.Path)
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm

		writeRatelimitHeaders(w)
		w.Write([]byte(`{"id": "5", "client_id": "abc", "client_secret": "xyz"}`))
	}))
	defer server.Close()

	toFile := filepath.Join(t.TempDir(), "clientcred.txt")
	clientID, clientSecret, err := RegisterApp(context.Background(), &AppRegistration{
		Server:     server.URL,
		ClientName: "test app",
		Scopes:     []string{"read", "write"},
		ToFile:     toFile,
	})
	require.NoError(t, err)

	assert.Equal(t, "abc", clientID)
	assert.Equal(t, "xyz", clientSecret)
	assert.Equal(t, "test app", gotForm.Get("client_name"))
	assert.Equal(t, "read write", gotForm.Get("scopes"))
	assert.Equal(t, "urn:ietf:wg:oauth:2.0:oob", gotForm.Get("redirect_uris"))

	raw, err := os.ReadFile(toFile)
	require.NoError(t, err)
	assert.Equal(t, "abc\nxyz\n", string(raw))
}

func TestRegisterAppDefaultScopes(t *testing.T) {
	var gotScopes string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotScopes = r.PostForm.Get("scopes")
		writeRatelimitHeaders(w)
		w.Write([]byte(`{"client_id": "abc", "client_secret": "xyz"}`))
	}))
	defer server.Close()

	_, _, err := RegisterApp(context.Background(), &AppRegistration{
		Server:     server.URL,
		ClientName: "test app",
	})
	require.NoError(t, err)
	assert.Equal(t, "read write follow", gotScopes)
}

func TestRegisterAppRequiresClientName(t *testing.T) {
	_, _, err := RegisterApp(context.Background(), &AppRegistration{})
	require.Error(t, err)

	var illegal *pkgerrs.IllegalArgumentError
	assert.True(t, errors.As(err, &illegal))
}

func TestLogIn(t *testing.T) {
	var gotForm url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/oauth/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm

		writeRatelimitHeaders(w)
		w.Write([]byte(`{"access_token": "granted-token", "token_type": "bearer", "scope": "write read follow"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	toFile := filepath.Join(t.TempDir(), "usercred.txt")
	token, err := client.LogIn(context.Background(), "user@example.com", "hunter2", nil, toFile)
	require.NoError(t, err)

	assert.Equal(t, "granted-token", token)
	assert.Equal(t, "granted-token", client.AccessToken(), "token must be set on the session")

	assert.Equal(t, "the-client-id", gotForm.Get("client_id"))
	assert.Equal(t, "the-client-secret", gotForm.Get("client_secret"))
	assert.Equal(t, "password", gotForm.Get("grant_type"))
	assert.Equal(t, "user@example.com", gotForm.Get("username"))
	assert.Equal(t, "hunter2", gotForm.Get("password"))
	assert.Equal(t, "read write follow", gotForm.Get("scope"))

	raw, err := os.ReadFile(toFile)
	require.NoError(t, err)
	assert.Equal(t, "granted-token\n", string(raw))
}

func TestLogInScopeMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeRatelimitHeaders(w)
		w.Write([]byte(`{"access_token": "granted-token", "token_type": "bearer", "scope": "read"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.LogIn(context.Background(), "user@example.com", "hunter2", []string{"read", "write"}, "")
	require.Error(t, err)

	var apiErr *pkgerrs.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Contains(t, apiErr.Message, `"read"`)
	assert.Contains(t, apiErr.Message, `"read write"`)
	assert.Empty(t, client.AccessToken(), "token must not be set on scope mismatch")
}

func TestLogInFailureIsMasked(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeRatelimitHeaders(w)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "invalid_grant"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.LogIn(context.Background(), "user@example.com", "wrong", nil, "")
	require.Error(t, err)

	var illegal *pkgerrs.IllegalArgumentError
	require.True(t, errors.As(err, &illegal))
	assert.Contains(t, illegal.Message, "invalid user name, password or scopes")

	// The real cause stays reachable for logging even though the message
	// is generic.
	var apiErr *pkgerrs.APIError
	assert.True(t, errors.As(err, &apiErr))
}

func TestLogInEmptyTokenIsMasked(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeRatelimitHeaders(w)
		w.Write([]byte(`{"token_type": "bearer", "scope": "read write follow"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.LogIn(context.Background(), "user@example.com", "hunter2", nil, "")
	require.Error(t, err)

	var illegal *pkgerrs.IllegalArgumentError
	assert.True(t, errors.As(err, &illegal))
}
