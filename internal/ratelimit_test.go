package internal

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPaceDelay(t *testing.T) {
	now := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		state   RatelimitState
		elapsed time.Duration
		want    time.Duration
	}{
		{
			name: "full allowance just called",
			state: RatelimitState{
				Remaining:  10,
				ResetAt:    now.Add(100 * time.Second),
				PaceFactor: 0.9,
			},
			elapsed: 0,
			// ideal spacing 10s, nothing elapsed, scaled by 0.9
			want: 9 * time.Second,
		},
		{
			name: "partially elapsed spacing",
			state: RatelimitState{
				Remaining:  10,
				ResetAt:    now.Add(100 * time.Second),
				PaceFactor: 0.9,
			},
			elapsed: 4 * time.Second,
			// 0.9 * (10s - 4s)
			want: 5400 * time.Millisecond,
		},
		{
			name: "spacing already satisfied",
			state: RatelimitState{
				Remaining:  10,
				ResetAt:    now.Add(100 * time.Second),
				PaceFactor: 0.9,
			},
			elapsed: 15 * time.Second,
			want:    0,
		},
		{
			name: "allowance exhausted waits for reset",
			state: RatelimitState{
				Remaining:  0,
				ResetAt:    now.Add(42 * time.Second),
				PaceFactor: 0.9,
			},
			elapsed: time.Second,
			want:    42 * time.Second,
		},
		{
			name: "allowance exhausted but reset passed",
			state: RatelimitState{
				Remaining:  0,
				ResetAt:    now.Add(-time.Second),
				PaceFactor: 0.9,
			},
			elapsed: time.Second,
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.state.LastCall = now.Add(-tt.elapsed)
			assert.Equal(t, tt.want, tt.state.PaceDelay(now))
		})
	}
}

func TestRatelimitStateUpdate(t *testing.T) {
	now := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	state := NewRatelimitState(0.9, now.Add(-time.Hour))

	header := http.Header{}
	header.Set("X-RateLimit-Limit", "300")
	header.Set("X-RateLimit-Remaining", "17")
	header.Set("X-RateLimit-Reset", "2023-06-01T12:05:00.000000Z")

	state.Update(header, now)

	assert.Equal(t, 300, state.Limit)
	assert.Equal(t, 17, state.Remaining)
	assert.Equal(t, time.Date(2023, 6, 1, 12, 5, 0, 0, time.UTC), state.ResetAt.UTC())
	assert.Equal(t, now, state.LastCall)
}

func TestRatelimitStateUpdateResetNeverMovesBackwards(t *testing.T) {
	now := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	state := NewRatelimitState(0.9, now)
	state.ResetAt = time.Date(2023, 6, 1, 12, 10, 0, 0, time.UTC)

	header := http.Header{}
	header.Set("X-RateLimit-Reset", "2023-06-01T12:05:00.000Z")

	state.Update(header, now)

	assert.Equal(t, time.Date(2023, 6, 1, 12, 10, 0, 0, time.UTC), state.ResetAt.UTC())
}

func TestRatelimitStateUpdateTolerantOfBadHeaders(t *testing.T) {
	now := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	state := NewRatelimitState(0.9, now)
	state.Limit = 150
	state.Remaining = 42

	header := http.Header{}
	header.Set("X-RateLimit-Limit", "not-a-number")
	header.Set("X-RateLimit-Reset", "yesterday-ish")

	state.Update(header, now)

	assert.Equal(t, 150, state.Limit)
	assert.Equal(t, 42, state.Remaining)
	assert.Equal(t, now, state.LastCall)
}
