package leave

import (
	"context"
	"time"
)

// LeaveRepository defines data access methods for leave requests.
type LeaveRepository interface {
	// Create persists a new leave request
	Create(ctx context.Context, req LeaveRequest) (LeaveRequest, error)

	// GetByID retrieves a leave request by ID
	GetByID(ctx context.Context, id string) (LeaveRequest, error)

	// List retrieves leave requests with filters and pagination
	List(ctx context.Context, filter LeaveFilter) ([]LeaveRequest, int64, error)

	// HasOverlap reports whether the student already has a pending or
	// approved request intersecting [start, end]
	HasOverlap(ctx context.Context, studentID string, start, end time.Time, excludeID string) (bool, error)

	// Update overwrites dates, reason, type and derived total days
	Update(ctx context.Context, req LeaveRequest) error

	// UpdateStatus records the review decision
	UpdateStatus(ctx context.Context, req LeaveRequest) error

	// Delete removes a leave request
	Delete(ctx context.Context, id string) error

	// CountByStatus aggregates requests by status, optionally scoped to
	// one student
	CountByStatus(ctx context.Context, studentID string) (LeaveStatsResponse, error)
}
