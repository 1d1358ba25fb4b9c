package leave

import "time"

type LeaveStatus string

const (
	StatusPending  LeaveStatus = "pending"
	StatusApproved LeaveStatus = "approved"
	StatusRejected LeaveStatus = "rejected"
)

type LeaveType string

const (
	TypeSick      LeaveType = "sick"
	TypePersonal  LeaveType = "personal"
	TypeEmergency LeaveType = "emergency"
	TypeOther     LeaveType = "other"
)

type LeaveRequest struct {
	ID         string
	StudentID  string
	StartDate  time.Time
	EndDate    time.Time
	Reason     string
	LeaveType  LeaveType
	Status     LeaveStatus
	TotalDays  int
	AppliedAt  time.Time
	ReviewedAt *time.Time
	ReviewedBy *string
	AdminNotes *string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// DTO
	StudentCode *string
	StudentName *string
}

// TotalDaysBetween counts calendar days in [start, end], inclusive of
// both endpoints.
func TotalDaysBetween(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

// IsPending reports whether the request is still open for edits.
func (l *LeaveRequest) IsPending() bool {
	return l.Status == StatusPending
}
