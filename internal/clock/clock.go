// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

// Package clock supplies the current instant to timestamp-bearing operations.
package clock

import "time"

// Clock returns the current instant.
type Clock interface {
	Now() time.Time
}

// System is the wall clock.
type System struct{}

// Now returns time.Now in UTC.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always returns the same instant.
type Fixed time.Time

// Now returns the fixed instant.
func (f Fixed) Now() time.Time {
	return time.Time(f)
}

// Resolve returns override when it is set, otherwise c.Now().
// A nil clock falls back to System.
func Resolve(c Clock, override time.Time) time.Time {
	if !override.IsZero() {
		return override
	}
	if c == nil {
		return System{}.Now()
	}
	return c.Now()
}
