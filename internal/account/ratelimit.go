// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlaceHub Contributors

package account

import (
	"sync"
	"time"
)

// Login throttling configuration.
const (
	// LockoutDuration is the time an email is locked out after too many failures.
	LockoutDuration = 15 * time.Minute

	// LockoutThreshold is the number of failures that triggers a lockout.
	LockoutThreshold = 7

	// maxDelay caps the progressive delay between attempts before lockout.
	maxDelay = 32 * time.Second
)

type loginAttempts struct {
	failures    int
	lastAttempt time.Time
	lockedUntil time.Time
}

// LoginLimiter throttles login attempts per email: a progressive delay after
// each failure, then a temporary lockout. State is in-memory; a restart
// clears it, which only ever errs toward allowing a login.
type LoginLimiter struct {
	mu       sync.Mutex
	attempts map[string]*loginAttempts
	now      func() time.Time
}

// NewLoginLimiter creates a LoginLimiter.
func NewLoginLimiter() *LoginLimiter {
	return &LoginLimiter{
		attempts: make(map[string]*loginAttempts),
		now:      time.Now,
	}
}

// Allow reports whether a login attempt for the email may proceed now.
// When it may not, retryAfter is the time until the next allowed attempt.
func (l *LoginLimiter) Allow(email string) (retryAfter time.Duration, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, exists := l.attempts[NormalizeEmail(email)]
	if !exists {
		return 0, true
	}

	now := l.now()
	if a.lockedUntil.After(now) {
		return a.lockedUntil.Sub(now), false
	}

	if wait := a.lastAttempt.Add(delayFor(a.failures)).Sub(now); wait > 0 {
		return wait, false
	}
	return 0, true
}

// RecordFailure notes a failed login. Crossing the threshold locks the email
// out for LockoutDuration.
func (l *LoginLimiter) RecordFailure(email string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := NormalizeEmail(email)
	a, exists := l.attempts[key]
	if !exists {
		a = &loginAttempts{}
		l.attempts[key] = a
	}

	a.failures++
	a.lastAttempt = l.now()
	if a.failures >= LockoutThreshold {
		a.lockedUntil = l.now().Add(LockoutDuration)
	}
}

// Reset clears the failure state after a successful login.
func (l *LoginLimiter) Reset(email string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, NormalizeEmail(email))
}

// delayFor returns the progressive delay after n failures: 2^(n-1) seconds,
// capped before the lockout threshold takes over. The exponent is clamped
// first so large failure counts cannot overflow the shift into a negative
// delay.
func delayFor(failures int) time.Duration {
	if failures <= 0 {
		return 0
	}
	if failures > 6 {
		return maxDelay
	}
	d := time.Duration(1<<(failures-1)) * time.Second
	if d > maxDelay {
		return maxDelay
	}
	return d
}
