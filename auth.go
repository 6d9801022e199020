package masto

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mastokit/masto/internal"
	pkgerrs "github.com/mastokit/masto/pkg/errors"
	"github.com/mastokit/masto/pkg/types"
)

// outOfBandURI is the service's sentinel for apps without a redirect target.
const outOfBandURI = "urn:ietf:wg:oauth:2.0:oob"

// AppRegistration describes the app to create with RegisterApp.
type AppRegistration struct {
	// Server is the instance to register on. Defaults to DefaultServer.
	Server string

	// ClientName is the name shown to users. Required.
	ClientName string

	// Scopes the app will request. Defaults to DefaultScopes.
	Scopes []string

	// RedirectURIs is where users land after authorizing. Defaults to the
	// out-of-band sentinel.
	RedirectURIs string

	// ToFile, when set, persists the returned client ID and secret as two
	// lines, the format Config.ClientID reads back.
	ToFile string

	// HTTPClient to use for the registration call. Defaults to a client
	// with DefaultTimeout.
	HTTPClient *http.Client
}

// RegisterApp creates a new app on an instance and returns its client ID and
// secret. Registration needs no authentication, so this works before any
// session exists.
//
// App registration is presently open by default, but instances are free to
// close it.
func RegisterApp(ctx context.Context, reg *AppRegistration) (clientID, clientSecret string, err error) {
	if reg == nil || reg.ClientName == "" {
		return "", "", &pkgerrs.IllegalArgumentError{Message: "client name is required"}
	}

	server := reg.Server
	if server == "" {
		server = DefaultServer
	}
	scopes := reg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	redirectURIs := reg.RedirectURIs
	if redirectURIs == "" {
		redirectURIs = outOfBandURI
	}
	httpClient := reg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	transport, err := internal.NewTransport(httpClient, server, "", RatelimitWait, internal.DefaultPaceFactor, false, zerolog.Nop())
	if err != nil {
		return "", "", err
	}

	params := Params{
		"client_name":   reg.ClientName,
		"scopes":        strings.Join(scopes, " "),
		"redirect_uris": redirectURIs,
	}.encode()

	var app types.Application
	if err := transport.Do(ctx, http.MethodPost, "/api/v1/apps", params, nil, &app); err != nil {
		return "", "", err
	}

	if reg.ToFile != "" {
		if err := internal.SaveAppCredentials(reg.ToFile, app.ClientID, app.ClientSecret); err != nil {
			return "", "", &pkgerrs.IllegalArgumentError{Message: "could not persist app credentials", Err: err}
		}
	}

	return app.ClientID, app.ClientSecret, nil
}

// LogIn obtains an access token via the password grant and sets it on the
// session. The username is the e-mail address used to log in to the
// instance. A nil scopes slice requests DefaultScopes.
//
// Any failure to obtain or decode a token surfaces as an
// IllegalArgumentError with a deliberately generic message; the real cause
// stays reachable through errors.Unwrap and is logged at debug level. When
// the granted scopes differ from the requested ones the call fails with an
// APIError naming both sets and the session token is left unset.
//
// toFile, when non-empty, persists the token as a single line, the format
// Config.AccessToken reads back.
func (c *Client) LogIn(ctx context.Context, username, password string, scopes []string, toFile string) (string, error) {
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	params := Params{
		"client_id":     c.creds.ClientID,
		"client_secret": c.creds.ClientSecret,
		"grant_type":    "password",
		"username":      username,
		"password":      password,
		"scope":         strings.Join(scopes, " "),
	}.encode()

	var token types.AccessToken
	if err := c.transport.Do(ctx, http.MethodPost, "/oauth/token", params, nil, &token); err != nil {
		c.logger.Debug().Err(err).Msg("login failed")
		return "", &pkgerrs.IllegalArgumentError{
			Message: "invalid user name, password or scopes",
			Err:     err,
		}
	}
	if token.AccessToken == "" {
		c.logger.Debug().Msg("login response carried no access token")
		return "", &pkgerrs.IllegalArgumentError{
			Message: "invalid user name, password or scopes",
		}
	}

	requested := sortedScopes(scopes)
	granted := sortedScopes(strings.Fields(token.Scope))
	if requested != granted {
		return "", &pkgerrs.APIError{
			Message: `granted scopes "` + granted + `" differ from requested scopes "` + requested + `"`,
		}
	}

	c.transport.SetToken(token.AccessToken)
	c.creds.AccessToken = token.AccessToken

	if toFile != "" {
		if err := internal.SaveAccessToken(toFile, token.AccessToken); err != nil {
			return "", &pkgerrs.IllegalArgumentError{Message: "could not persist access token", Err: err}
		}
	}

	return token.AccessToken, nil
}

// sortedScopes canonicalizes a scope set for comparison: sorted and
// space-joined, case-sensitive.
func sortedScopes(scopes []string) string {
	sorted := make([]string, len(scopes))
	copy(sorted, scopes)
	sort.Strings(sorted)
	return strings.Join(sorted, " ")
}
