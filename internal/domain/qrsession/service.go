package qrsession

import "context"

// SessionService defines business logic for issuing and administering
// QR sessions. Redemption itself lives in the attendance service, which
// consumes sessions through the repository as part of marking.
type SessionService interface {
	// Generate issues a new session and renders its QR image (admin)
	Generate(ctx context.Context, req GenerateSessionRequest) (GenerateSessionResponse, error)

	// ValidateCode checks whether a scanned code is currently usable
	// without consuming it
	ValidateCode(ctx context.Context, req ValidateSessionRequest) (ValidateSessionResponse, error)

	// ListSessions retrieves sessions with filters (admin)
	ListSessions(ctx context.Context, filter SessionFilter) (ListSessionsResponse, error)

	// GetSession retrieves a single session with its usage list (admin)
	GetSession(ctx context.Context, id string) (SessionResponse, error)

	// Deactivate explicitly turns a session off (admin)
	Deactivate(ctx context.Context, id string) (SessionResponse, error)

	// Stats aggregates per-type and overall session counters (admin)
	Stats(ctx context.Context, r StatsRange) (SessionStatsResponse, error)

	// Cleanup deletes sessions that are both expired and inactive
	Cleanup(ctx context.Context) (CleanupResponse, error)
}
