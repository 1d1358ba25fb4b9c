package qrsession

import (
	"context"
	"time"
)

// TypeStats aggregates sessions of one session type.
type TypeStats struct {
	TotalGenerated int
	TotalUsed      int
	ActiveCodes    int
}

// OverallStats aggregates all sessions.
type OverallStats struct {
	TotalGenerated int
	TotalUsed      int
	ActiveCodes    int
	ExpiredCodes   int
}

// SessionRepository defines data access methods for QR sessions.
// Consume is the one operation with a mandatory compare-and-swap
// discipline: the use-count increment and the active-flag flip happen
// in a single conditional statement, so two simultaneous redemptions
// of a single-use session can never both succeed.
type SessionRepository interface {
	// Create persists a newly issued session
	Create(ctx context.Context, session Session) (Session, error)

	// GetByID retrieves a session by ID, including its usage list
	GetByID(ctx context.Context, id string) (Session, error)

	// GetByCode retrieves a session by its opaque code
	GetByCode(ctx context.Context, code string) (Session, error)

	// Consume atomically increments the use count and records the usage
	// while the session is active, unexpired and under its cap; the
	// active flag flips false when the cap is reached. Returns false
	// when the guard failed (session unusable at call time).
	Consume(ctx context.Context, id string, studentID string, now time.Time) (Session, bool, error)

	// Deactivate explicitly turns the session off
	Deactivate(ctx context.Context, id string) error

	// List retrieves sessions with filters and pagination
	List(ctx context.Context, filter SessionFilter) ([]Session, int64, error)

	// Stats aggregates session counters per type and overall in
	// [from, to); nil bounds are open
	Stats(ctx context.Context, from, to *time.Time) (map[SessionType]TypeStats, OverallStats, error)

	// DeleteExpiredInactive removes sessions that are both expired and
	// inactive; idempotent, safe to run concurrently with redemption
	DeleteExpiredInactive(ctx context.Context, now time.Time) (int64, error)
}
