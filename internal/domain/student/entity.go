package student

import "time"

// Student is the profile attached to a student user account. The
// attendance counters are a derived rollup regenerated from the
// attendance history; they are never the source of truth.
type Student struct {
	ID          string
	UserID      string
	StudentCode string
	Department  string
	Year        int
	PhoneNumber string

	TotalDays            int
	PresentDays          int
	AttendancePercentage int

	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	Name  *string
	Email *string
}

// Stats is the cumulative attendance rollup for one student.
type Stats struct {
	TotalDays            int
	PresentDays          int
	AttendancePercentage int
}
