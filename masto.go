package masto

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/mastokit/masto/internal"
)

const (
	// DefaultServer is the flagship instance, used when Config.Server is
	// empty.
	DefaultServer = "https://mastodon.social"
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second
)

// Rate-limit policies accepted by Config.RatelimitMethod.
const (
	RatelimitThrow = internal.RatelimitThrow
	RatelimitWait  = internal.RatelimitWait
	RatelimitPace  = internal.RatelimitPace
)

// DefaultScopes are the scopes requested when none are given to RegisterApp
// or LogIn.
var DefaultScopes = []string{"read", "write", "follow"}

// Config holds the configuration for a Mastodon session.
//
// ClientID may be a literal value or the path of a two-line credentials file
// written by RegisterApp; in the file case ClientSecret is read from the
// file's second line and an explicitly supplied secret is ignored. A literal
// ClientID requires ClientSecret. AccessToken may likewise be a literal
// token or the path of a one-line token file written by LogIn.
type Config struct {
	// Server is the base URL of the instance to talk to.
	// Defaults to DefaultServer.
	Server string

	// ClientID and ClientSecret identify the registered app.
	ClientID     string
	ClientSecret string

	// AccessToken authenticates the session. Optional; LogIn sets it.
	AccessToken string

	// DebugRequests enables structured tracing of every request and
	// response on Logger. Never changes behavior.
	DebugRequests bool

	// RatelimitMethod selects how the session reacts to the server's rate
	// limit: RatelimitThrow, RatelimitWait or RatelimitPace.
	// Defaults to RatelimitWait.
	RatelimitMethod string

	// RatelimitPaceFactor scales the proactive delay in pace mode. Must lie
	// in (0, 1]. Defaults to 0.9.
	RatelimitPaceFactor float64

	// HTTPClient to use for requests. Defaults to a client with
	// DefaultTimeout.
	HTTPClient *http.Client

	// Logger receives debug traces when DebugRequests is set and the masked
	// causes of login failures. Defaults to a no-op logger.
	Logger zerolog.Logger
}

// Client is a Mastodon API session. Every method performs one blocking API
// call through the session's transport, which enforces the configured
// rate-limit policy.
//
// The wait and pace policies share unsynchronized timing state, so a Client
// supports one in-flight call at a time; concurrent callers need external
// mutual exclusion or a Client each.
type Client struct {
	transport *internal.Transport
	creds     *internal.Credentials
	logger    zerolog.Logger
}

// NewClient resolves the credentials and returns a session ready for API
// calls. No network traffic happens here.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		config = &Config{}
	}

	server := config.Server
	if server == "" {
		server = DefaultServer
	}
	method := config.RatelimitMethod
	if method == "" {
		method = RatelimitWait
	}
	paceFactor := config.RatelimitPaceFactor
	if paceFactor == 0 {
		paceFactor = internal.DefaultPaceFactor
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	creds, err := internal.ResolveCredentials(config.ClientID, config.ClientSecret, config.AccessToken)
	if err != nil {
		return nil, err
	}

	transport, err := internal.NewTransport(httpClient, server, creds.AccessToken, method, paceFactor, config.DebugRequests, config.Logger)
	if err != nil {
		return nil, err
	}

	return &Client{
		transport: transport,
		creds:     creds,
		logger:    config.Logger,
	}, nil
}

// AccessToken returns the session's current access token, empty if the
// session has not been authenticated.
func (c *Client) AccessToken() string {
	return c.transport.Token()
}
