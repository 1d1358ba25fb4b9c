package student

import "context"

// StudentService defines business logic for student administration
// and the attendance statistics rollup.
type StudentService interface {
	// ListStudents retrieves student profiles (admin)
	ListStudents(ctx context.Context, filter StudentFilter) (ListStudentsResponse, error)

	// GetStudent retrieves a single student profile
	GetStudent(ctx context.Context, id string) (StudentResponse, error)

	// UpdateStudent updates a student profile (admin)
	UpdateStudent(ctx context.Context, req UpdateStudentRequest) (StudentResponse, error)

	// DeleteStudent removes a student and their account (admin)
	DeleteStudent(ctx context.Context, id string) error

	// RecomputeStats regenerates the student's attendance rollup from
	// the full ledger history
	RecomputeStats(ctx context.Context, studentID string) (Stats, error)
}
