package internal

import (
	"net/http"
	"strconv"
	"time"
)

// Rate-limit policies. The policy decides what happens around each request:
// "throw" surfaces a throttled response as an error, "wait" sleeps until the
// server-declared reset and retries, "pace" additionally spaces requests out
// proactively so the limit is generally never hit.
const (
	RatelimitThrow = "throw"
	RatelimitWait  = "wait"
	RatelimitPace  = "pace"
)

// DefaultPaceFactor scales the computed pace delay. Sleeping slightly less
// than the exact pace trades a small risk of hitting the limit for lower
// latency.
const DefaultPaceFactor = 0.9

// Mastodon's documented default allowance, assumed until the first response
// reports real numbers.
const initialRatelimit = 150

// Rate-limit headers present on every API response. The reset header is
// ISO-8601 with fractional seconds, UTC.
const (
	headerRatelimitLimit     = "X-RateLimit-Limit"
	headerRatelimitRemaining = "X-RateLimit-Remaining"
	headerRatelimitReset     = "X-RateLimit-Reset"
)

// RatelimitState tracks the server's rolling rate-limit window for one
// session. It is refreshed from response headers after every call and read
// before every call in pace mode. The state is not synchronized; a session
// assumes one in-flight call at a time.
type RatelimitState struct {
	Limit      int
	Remaining  int
	ResetAt    time.Time
	LastCall   time.Time
	PaceFactor float64
}

// NewRatelimitState returns the starting state for a fresh session.
func NewRatelimitState(paceFactor float64, now time.Time) *RatelimitState {
	return &RatelimitState{
		Limit:      initialRatelimit,
		Remaining:  initialRatelimit,
		ResetAt:    now,
		LastCall:   now,
		PaceFactor: paceFactor,
	}
}

// PaceDelay computes how long to sleep before the next request in pace mode.
//
// With the allowance exhausted the only option is waiting out the window.
// Otherwise the ideal spacing is the time left in the window divided evenly
// across the remaining allowance; the time already spent since the previous
// call counts against it, and the remainder is scaled by the pace factor.
func (s *RatelimitState) PaceDelay(now time.Time) time.Duration {
	if s.Remaining == 0 {
		if d := s.ResetAt.Sub(now); d > 0 {
			return d
		}
		return 0
	}

	spacing := s.ResetAt.Sub(now) / time.Duration(s.Remaining)
	waited := now.Sub(s.LastCall)
	if remainder := spacing - waited; remainder > 0 {
		return time.Duration(float64(remainder) * s.PaceFactor)
	}
	return 0
}

// Update refreshes the window from a response's rate-limit headers and
// records the call time. Headers the server omitted or mangled leave the
// corresponding field untouched rather than corrupting the window.
func (s *RatelimitState) Update(h http.Header, now time.Time) {
	if v, err := strconv.Atoi(h.Get(headerRatelimitRemaining)); err == nil && v >= 0 {
		s.Remaining = v
	}
	if v, err := strconv.Atoi(h.Get(headerRatelimitLimit)); err == nil && v > 0 {
		s.Limit = v
	}
	if t, err := time.Parse(time.RFC3339, h.Get(headerRatelimitReset)); err == nil {
		// The reset is server-authoritative and never moves backwards.
		if t.After(s.ResetAt) {
			s.ResetAt = t
		}
	}
	s.LastCall = now
}
