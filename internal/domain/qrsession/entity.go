package qrsession

import (
	"time"

	"github.com/campustrack/attendance-backend-go/internal/pkg/utils"
)

type SessionType string

const (
	TypeCheckIn  SessionType = "check-in"
	TypeCheckOut SessionType = "check-out"
)

// Issue defaults and bounds.
const (
	DefaultTTLMinutes = 30
	MinTTLMinutes     = 1
	MaxTTLMinutes     = 1440

	DefaultMaxUses = 1
	MinMaxUses     = 1
	MaxMaxUses     = 1000

	DefaultRadiusMeters = 100
)

// Geofence is an optional location constraint on redemption. The
// coordinates are client-reported and untrusted; this is a convenience
// check, not a security control.
type Geofence struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters int
}

// Contains reports whether the given point lies within the fence.
func (g *Geofence) Contains(lat, lng float64) bool {
	distance := utils.CalculateHaversineDistance(lat, lng, g.Latitude, g.Longitude)
	return distance <= float64(g.RadiusMeters)
}

// Session is a time-boxed, use-limited credential authorizing one
// check-in or check-out action. Expiry is always computed from the
// current time, never written back; the active flag only flips on
// explicit deactivation or when the use cap is reached.
type Session struct {
	ID          string
	Code        string
	SessionType SessionType
	GeneratedAt time.Time
	ExpiresAt   time.Time
	IsActive    bool
	MaxUses     int
	CurrentUses int
	Geofence    *Geofence
	GeneratedBy string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// DTO
	GeneratedByName *string
	Usages          []Usage
}

// Usage records one consumption of the session.
type Usage struct {
	StudentID   string
	UsedAt      time.Time
	StudentCode *string
	StudentName *string
}

// IsExpired reports whether the session's time box has passed.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// CanBeUsed is the redemption predicate: active, unexpired and under
// the use cap. Pure; re-evaluated on every attempt, never cached.
func (s *Session) CanBeUsed(now time.Time) bool {
	return s.IsActive && !s.IsExpired(now) && s.CurrentUses < s.MaxUses
}

// MatchesAction reports whether the session authorizes the requested
// action (a check-in session cannot authorize a check-out).
func (s *Session) MatchesAction(action string) bool {
	return string(s.SessionType) == action
}

// RemainingUses returns how many redemptions are left.
func (s *Session) RemainingUses() int {
	remaining := s.MaxUses - s.CurrentUses
	if remaining < 0 {
		return 0
	}
	return remaining
}
