package leave

import "context"

// LeaveService defines business logic for leave requests
type LeaveService interface {
	// Apply files a new leave request for the authenticated student
	Apply(ctx context.Context, req ApplyLeaveRequest) (LeaveResponse, error)

	// ListLeaves retrieves requests; students only see their own
	ListLeaves(ctx context.Context, filter LeaveFilter) (ListLeaveResponse, error)

	// GetLeave retrieves a single request; students only their own
	GetLeave(ctx context.Context, id string) (LeaveResponse, error)

	// UpdateLeave edits a still-pending request (owner only)
	UpdateLeave(ctx context.Context, req UpdateLeaveRequest) (LeaveResponse, error)

	// ReviewLeave approves or rejects a pending request (admin)
	ReviewLeave(ctx context.Context, req ReviewLeaveRequest) (LeaveResponse, error)

	// DeleteLeave removes a pending request (owner) or any request (admin)
	DeleteLeave(ctx context.Context, id string) error

	// Stats aggregates requests by status; students get their own counts
	Stats(ctx context.Context) (LeaveStatsResponse, error)
}
