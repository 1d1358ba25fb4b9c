package attendance

import "time"

type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
)

// Attendance is the single daily record per student. A record is
// created lazily on the first check-in attempt of the day and mutated
// at most twice: check-in sets CheckIn, check-out sets CheckOut.
// Timestamps are never cleared once set.
type Attendance struct {
	ID          string
	StudentID   string
	Date        time.Time // day granularity, start of day UTC
	CheckIn     *time.Time
	CheckOut    *time.Time
	Status      Status
	Percentage  int
	QRSessionID *string
	Latitude    *float64
	Longitude   *float64
	DeviceInfo  *string
	Notes       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// DTO
	StudentCode *string
	StudentName *string
}

// Derive computes status and percentage purely from the check-in and
// check-out timestamps. This is the single authoritative derivation;
// every mutation that touches either timestamp must go through it.
func Derive(checkIn, checkOut *time.Time) (Status, int) {
	switch {
	case checkIn != nil && checkOut != nil:
		hours := checkOut.Sub(*checkIn).Hours()
		switch {
		case hours >= 4:
			return StatusPresent, 100
		case hours >= 2:
			return StatusLate, 50
		default:
			return StatusAbsent, 0
		}
	case checkIn != nil:
		// Interim state pending check-out
		return StatusLate, 50
	default:
		return StatusAbsent, 0
	}
}

// Rederive recomputes the derived fields in place.
func (a *Attendance) Rederive() {
	a.Status, a.Percentage = Derive(a.CheckIn, a.CheckOut)
}

// StartOfDay truncates t to its UTC calendar day.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
