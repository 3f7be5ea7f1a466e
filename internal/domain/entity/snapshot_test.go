package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHomeSnapshot_IsServable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	payload := HomePayload{Rows: []HomeRow{{RowKey: "trending", Title: "Trending"}}}

	t.Run("nil snapshot is not servable", func(t *testing.T) {
		var s *HomeSnapshot
		assert.False(t, s.IsServable(now, true))
	})

	t.Run("empty payload is not servable", func(t *testing.T) {
		s := &HomeSnapshot{ExpiresAt: now.Add(time.Hour)}
		assert.False(t, s.IsServable(now, true))
	})

	t.Run("expired live snapshot is not servable", func(t *testing.T) {
		s := &HomeSnapshot{Payload: payload, ExpiresAt: now.Add(-time.Minute)}
		assert.False(t, s.IsServable(now, true))
	})

	t.Run("fresh live snapshot is servable", func(t *testing.T) {
		s := &HomeSnapshot{Payload: payload, ExpiresAt: now.Add(time.Hour)}
		assert.True(t, s.IsServable(now, true))
	})

	t.Run("expired seed snapshot still servable without expiry check", func(t *testing.T) {
		s := &HomeSnapshot{Payload: payload, ExpiresAt: now.Add(-24 * time.Hour)}
		assert.True(t, s.IsServable(now, false))
	})
}
