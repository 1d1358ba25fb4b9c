package student

import "context"

// StudentRepository defines data access methods for student profiles.
type StudentRepository interface {
	// Create creates a new student profile
	Create(ctx context.Context, student Student) (Student, error)

	// GetByID retrieves a student by profile ID
	GetByID(ctx context.Context, id string) (Student, error)

	// GetByUserID retrieves the student profile owned by a user account
	GetByUserID(ctx context.Context, userID string) (Student, error)

	// GetByStudentCode retrieves a student by their public code
	GetByStudentCode(ctx context.Context, code string) (Student, error)

	// List retrieves student profiles with filters and pagination
	List(ctx context.Context, filter StudentFilter) ([]Student, int64, error)

	// ListIDs returns all student profile IDs (used by the absence sweep)
	ListIDs(ctx context.Context) ([]string, error)

	// Update updates department, year and phone number
	Update(ctx context.Context, student Student) error

	// Delete removes the student profile and its user account
	Delete(ctx context.Context, id string) error

	// RecomputeStats rescans the full attendance history for the student
	// and writes the rollup back in a single statement. Always a full
	// recompute, never incremental.
	RecomputeStats(ctx context.Context, studentID string) (Stats, error)
}
