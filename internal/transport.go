package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	pkgerrs "github.com/mastokit/masto/pkg/errors"
)

// File is a multipart payload attached to a request, held in memory so the
// request can be replayed verbatim when a throttled call is retried.
type File struct {
	// Field is the form field name, e.g. "file" for media uploads.
	Field string
	// Name is the filename sent to the server.
	Name string
	// ContentType is the mime type of the payload.
	ContentType string
	// Content is the raw payload.
	Content []byte
}

// Transport is the single chokepoint every API call passes through. It
// performs the HTTP round trip, classifies the response, enforces the
// session's rate-limit policy and decodes the response body.
//
// A Transport assumes one in-flight call at a time; the wait and pace
// policies share mutable timing state across calls without synchronization.
type Transport struct {
	client  *http.Client
	baseURL string
	token   string

	policy string
	state  *RatelimitState

	logger zerolog.Logger
	debug  bool

	// Overridable in tests so rate-limit arithmetic can be asserted
	// without real sleeping.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewTransport returns a transport for the given instance base URL. The
// policy must be one of throw, wait or pace and the pace factor must lie in
// (0, 1].
func NewTransport(httpClient *http.Client, baseURL, accessToken, policy string, paceFactor float64, debug bool, logger zerolog.Logger) (*Transport, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &pkgerrs.IllegalArgumentError{
			Message: fmt.Sprintf("invalid API base URL %q", baseURL),
			Err:     err,
		}
	}

	switch policy {
	case RatelimitThrow, RatelimitWait, RatelimitPace:
	default:
		return nil, &pkgerrs.IllegalArgumentError{
			Message: fmt.Sprintf("invalid rate limit method %q", policy),
		}
	}

	if paceFactor <= 0 || paceFactor > 1 {
		return nil, &pkgerrs.IllegalArgumentError{
			Message: fmt.Sprintf("pace factor %v outside (0, 1]", paceFactor),
		}
	}

	return &Transport{
		client:  httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   accessToken,
		policy:  policy,
		state:   NewRatelimitState(paceFactor, time.Now()),
		logger:  logger,
		debug:   debug,
		now:     time.Now,
		sleep:   sleepContext,
	}, nil
}

// SetToken replaces the bearer token used on subsequent requests. LogIn
// calls this once a token has been granted with matching scopes.
func (t *Transport) SetToken(token string) {
	t.token = token
}

// Token returns the current bearer token, empty if the session is
// unauthenticated.
func (t *Transport) Token() string {
	return t.token
}

// Ratelimit exposes the session's rate-limit window.
func (t *Transport) Ratelimit() *RatelimitState {
	return t.state
}

// Do performs one logical API call: encode, send, classify, decode into v
// (ignored when v is nil). Under the wait and pace policies a throttled
// response is resolved internally by sleeping until the server-declared
// reset and replaying the same request; every other failure terminates the
// call immediately.
func (t *Transport) Do(ctx context.Context, method, endpoint string, params url.Values, files []*File, v any) error {
	for {
		if t.policy == RatelimitPace {
			if d := t.state.PaceDelay(t.now()); d > 0 {
				if err := t.sleep(ctx, d); err != nil {
					return &pkgerrs.NetworkError{Err: err}
				}
			}
		}

		body, status, retry, err := t.roundTrip(ctx, method, endpoint, params, files)
		if err != nil {
			return err
		}
		if retry {
			continue
		}

		if v == nil {
			return nil
		}
		if err := json.Unmarshal(body, v); err != nil {
			return &pkgerrs.APIError{
				StatusCode: status,
				Message:    fmt.Sprintf("Could not parse response as JSON, status was %d", status),
			}
		}
		return nil
	}
}

// roundTrip performs a single HTTP attempt. It returns retry=true when the
// response was a throttle that the policy resolves by waiting, in which case
// it has already slept until the reset.
func (t *Transport) roundTrip(ctx context.Context, method, endpoint string, params url.Values, files []*File) (body []byte, status int, retry bool, err error) {
	req, err := t.newRequest(ctx, method, endpoint, params, files)
	if err != nil {
		return nil, 0, false, err
	}

	if t.debug {
		t.logger.Debug().
			Str("method", method).
			Str("endpoint", endpoint).
			Str("params", params.Encode()).
			Int("files", len(files)).
			Bool("authorized", t.token != "").
			Msg("api request")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, 0, false, &pkgerrs.NetworkError{Err: err}
	}
	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return nil, resp.StatusCode, false, &pkgerrs.NetworkError{Err: readErr}
	}

	if t.debug {
		t.logger.Debug().
			Int("status", resp.StatusCode).
			Str("ratelimit_remaining", resp.Header.Get(headerRatelimitRemaining)).
			Str("ratelimit_reset", resp.Header.Get(headerRatelimitReset)).
			Str("body", string(body)).
			Msg("api response")
	}

	// The window refreshes on every completed response, errors included.
	t.state.Update(resp.Header, t.now())

	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, resp.StatusCode, false, &pkgerrs.APIError{StatusCode: resp.StatusCode, Message: "Endpoint not found"}
	case http.StatusInternalServerError:
		return nil, resp.StatusCode, false, &pkgerrs.APIError{StatusCode: resp.StatusCode, Message: "General API problem"}
	}

	if !json.Valid(body) {
		return nil, resp.StatusCode, false, &pkgerrs.APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Could not parse response as JSON, status was %d", resp.StatusCode),
		}
	}

	// The throttle signal is an application-level error payload, not an
	// HTTP status.
	if isThrottled(body) {
		if t.policy == RatelimitThrow {
			return nil, resp.StatusCode, false, &pkgerrs.RatelimitError{Message: "hit rate limit"}
		}
		if d := t.state.ResetAt.Sub(t.now()); d > 0 {
			if err := t.sleep(ctx, d); err != nil {
				return nil, resp.StatusCode, false, &pkgerrs.NetworkError{Err: err}
			}
		}
		return nil, resp.StatusCode, true, nil
	}

	return body, resp.StatusCode, false, nil
}

// newRequest builds a fresh HTTP request. Bodies are rebuilt per attempt so
// a throttled call can be replayed. GET parameters travel in the query
// string; POST and DELETE parameters travel as a form body, or as multipart
// fields when files are attached.
func (t *Transport) newRequest(ctx context.Context, method, endpoint string, params url.Values, files []*File) (*http.Request, error) {
	target := t.baseURL + endpoint

	var body io.Reader
	contentType := ""

	switch {
	case len(files) > 0:
		buf := &bytes.Buffer{}
		writer := multipart.NewWriter(buf)
		for key, values := range params {
			for _, value := range values {
				if err := writer.WriteField(key, value); err != nil {
					return nil, &pkgerrs.NetworkError{Err: err}
				}
			}
		}
		for _, f := range files {
			part, err := createFilePart(writer, f)
			if err != nil {
				return nil, &pkgerrs.NetworkError{Err: err}
			}
			if _, err := part.Write(f.Content); err != nil {
				return nil, &pkgerrs.NetworkError{Err: err}
			}
		}
		if err := writer.Close(); err != nil {
			return nil, &pkgerrs.NetworkError{Err: err}
		}
		body = buf
		contentType = writer.FormDataContentType()

	case method == http.MethodGet:
		if encoded := params.Encode(); encoded != "" {
			target += "?" + encoded
		}

	default:
		body = strings.NewReader(params.Encode())
		contentType = "application/x-www-form-urlencoded"
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &pkgerrs.IllegalArgumentError{Message: "illegal request", Err: err}
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	return req, nil
}

// createFilePart writes the multipart header for a file, carrying its real
// content type instead of the writer's application/octet-stream default.
func createFilePart(writer *multipart.Writer, f *File) (io.Writer, error) {
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Name))
	header.Set("Content-Type", f.ContentType)
	return writer.CreatePart(header)
}

// isThrottled reports whether a decoded body carries the service's
// application-level throttle flag.
func isThrottled(body []byte) bool {
	var probe struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return false
	}
	return probe.Error == "Throttled"
}

// sleepContext blocks for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
