// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ringdex/ringdex/internal/clock"
)

func TestResolve(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	override := fixed.Add(-time.Hour)

	t.Run("override wins", func(t *testing.T) {
		assert.Equal(t, override, clock.Resolve(clock.Fixed(fixed), override))
	})

	t.Run("zero override uses clock", func(t *testing.T) {
		assert.Equal(t, fixed, clock.Resolve(clock.Fixed(fixed), time.Time{}))
	})

	t.Run("nil clock uses system time", func(t *testing.T) {
		before := time.Now().Add(-time.Second)
		got := clock.Resolve(nil, time.Time{})
		assert.True(t, got.After(before))
		assert.Equal(t, time.UTC, got.Location())
	})
}
