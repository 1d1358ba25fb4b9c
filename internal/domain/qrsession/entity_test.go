package qrsession

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testSession(maxUses, currentUses int, active bool, ttl time.Duration, now time.Time) Session {
	return Session{
		ID:          "s-1",
		Code:        "code-1",
		SessionType: TypeCheckIn,
		GeneratedAt: now,
		ExpiresAt:   now.Add(ttl),
		IsActive:    active,
		MaxUses:     maxUses,
		CurrentUses: currentUses,
	}
}

func TestSessionCanBeUsed(t *testing.T) {
	now := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)

	t.Run("fresh session is usable", func(t *testing.T) {
		s := testSession(1, 0, true, 30*time.Minute, now)
		assert.True(t, s.CanBeUsed(now))
	})

	t.Run("usable exactly at expiry", func(t *testing.T) {
		s := testSession(1, 0, true, 30*time.Minute, now)
		assert.True(t, s.CanBeUsed(now.Add(30*time.Minute)))
	})

	t.Run("unusable past expiry regardless of uses", func(t *testing.T) {
		s := testSession(100, 0, true, 30*time.Minute, now)
		assert.False(t, s.CanBeUsed(now.Add(30*time.Minute+time.Second)))
	})

	t.Run("unusable at use cap", func(t *testing.T) {
		s := testSession(2, 2, true, 30*time.Minute, now)
		assert.False(t, s.CanBeUsed(now))
	})

	t.Run("unusable when deactivated", func(t *testing.T) {
		s := testSession(1, 0, false, 30*time.Minute, now)
		assert.False(t, s.CanBeUsed(now))
	})
}

func TestSessionMatchesAction(t *testing.T) {
	now := time.Now()
	s := testSession(1, 0, true, time.Hour, now)

	assert.True(t, s.MatchesAction("check-in"))
	assert.False(t, s.MatchesAction("check-out"))

	s.SessionType = TypeCheckOut
	assert.True(t, s.MatchesAction("check-out"))
}

func TestSessionRemainingUses(t *testing.T) {
	now := time.Now()
	s := testSession(3, 1, true, time.Hour, now)
	assert.Equal(t, 2, s.RemainingUses())

	s.CurrentUses = 5
	assert.Equal(t, 0, s.RemainingUses())
}

func TestGeofenceContains(t *testing.T) {
	fence := Geofence{Latitude: -6.2, Longitude: 106.8, RadiusMeters: 100}

	assert.True(t, fence.Contains(-6.2, 106.8))
	// ~0.0005 degrees latitude is roughly 55m
	assert.True(t, fence.Contains(-6.2005, 106.8))
	// a full degree away is far outside
	assert.False(t, fence.Contains(-7.2, 106.8))
}

func TestGenerateSessionRequestDefaults(t *testing.T) {
	req := GenerateSessionRequest{SessionType: "check-in"}
	req.ApplyDefaults()

	assert.Equal(t, 30, req.ExpiresInMinutes)
	assert.Equal(t, 1, req.MaxUses)
	assert.NoError(t, req.Validate())
}

func TestGenerateSessionRequestValidate(t *testing.T) {
	cases := []struct {
		name string
		req  GenerateSessionRequest
	}{
		{"bad session type", GenerateSessionRequest{SessionType: "both", ExpiresInMinutes: 30, MaxUses: 1}},
		{"ttl too long", GenerateSessionRequest{SessionType: "check-in", ExpiresInMinutes: 1441, MaxUses: 1}},
		{"max uses too high", GenerateSessionRequest{SessionType: "check-in", ExpiresInMinutes: 30, MaxUses: 1001}},
		{"radius too small", GenerateSessionRequest{
			SessionType: "check-in", ExpiresInMinutes: 30, MaxUses: 1,
			Location: &GeofenceRequest{Latitude: 0, Longitude: 0, RadiusMeters: 5},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, tc.req.Validate())
		})
	}
}
