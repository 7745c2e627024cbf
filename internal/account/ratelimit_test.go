// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlaceHub Contributors

package account

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// limiterAt returns a limiter with a controllable clock.
func limiterAt(start time.Time) (*LoginLimiter, *time.Time) {
	now := start
	l := NewLoginLimiter()
	l.now = func() time.Time { return now }
	return l, &now
}

func TestLoginLimiter_Allow(t *testing.T) {
	t.Run("fresh email is allowed", func(t *testing.T) {
		l, _ := limiterAt(time.Now())
		_, ok := l.Allow("a@x.com")
		assert.True(t, ok)
	})

	t.Run("progressive delay grows with failures", func(t *testing.T) {
		l, now := limiterAt(time.Now())

		tests := []struct {
			failures  int
			wantDelay time.Duration
		}{
			{1, 1 * time.Second},
			{2, 2 * time.Second},
			{3, 4 * time.Second},
			{4, 8 * time.Second},
			{5, 16 * time.Second},
			{6, 32 * time.Second},
		}

		for _, tt := range tests {
			l.Reset("a@x.com")
			for i := 0; i < tt.failures; i++ {
				l.RecordFailure("a@x.com")
			}

			retryAfter, ok := l.Allow("a@x.com")
			require.False(t, ok, "failures=%d", tt.failures)
			assert.Equal(t, tt.wantDelay, retryAfter, "failures=%d", tt.failures)

			*now = now.Add(tt.wantDelay)
			_, ok = l.Allow("a@x.com")
			assert.True(t, ok, "failures=%d after waiting", tt.failures)
		}
	})

	t.Run("lockout at threshold", func(t *testing.T) {
		l, now := limiterAt(time.Now())
		for i := 0; i < LockoutThreshold; i++ {
			l.RecordFailure("a@x.com")
		}

		retryAfter, ok := l.Allow("a@x.com")
		require.False(t, ok)
		assert.Equal(t, LockoutDuration, retryAfter)

		// Waiting the progressive delay is not enough during a lockout
		*now = now.Add(time.Minute)
		_, ok = l.Allow("a@x.com")
		assert.False(t, ok)

		*now = now.Add(LockoutDuration)
		_, ok = l.Allow("a@x.com")
		assert.True(t, ok, "lockout must expire")
	})

	t.Run("reset clears state", func(t *testing.T) {
		l, _ := limiterAt(time.Now())
		for i := 0; i < LockoutThreshold; i++ {
			l.RecordFailure("a@x.com")
		}
		l.Reset("a@x.com")

		_, ok := l.Allow("a@x.com")
		assert.True(t, ok)
	})

	t.Run("emails are tracked case-insensitively", func(t *testing.T) {
		l, _ := limiterAt(time.Now())
		l.RecordFailure("A@X.com")

		_, ok := l.Allow("a@x.com")
		assert.False(t, ok)
	})

	t.Run("other emails are unaffected", func(t *testing.T) {
		l, _ := limiterAt(time.Now())
		for i := 0; i < LockoutThreshold; i++ {
			l.RecordFailure("a@x.com")
		}

		_, ok := l.Allow("b@x.com")
		assert.True(t, ok)
	})
}

func TestDelayFor_CappedForLargeFailureCounts(t *testing.T) {
	// failure counts past 63 would overflow a naive 1<<(n-1) shift into a
	// negative duration
	assert.Equal(t, maxDelay, delayFor(7))
	assert.Equal(t, maxDelay, delayFor(64))
	assert.Equal(t, maxDelay, delayFor(500))
}
