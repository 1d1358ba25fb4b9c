package student

import (
	"github.com/campustrack/attendance-backend-go/internal/pkg/validator"
)

type StudentFilter struct {
	Page       int
	Limit      int
	Search     string // matches name, email or student code
	Department string
	Year       int
}

func (f *StudentFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type UpdateStudentRequest struct {
	ID          string  `json:"-"`
	Department  *string `json:"department"`
	Year        *int    `json:"year"`
	PhoneNumber *string `json:"phone_number"`
}

func (r *UpdateStudentRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	if r.Department != nil && validator.IsEmpty(*r.Department) {
		errs = append(errs, validator.ValidationError{
			Field:   "department",
			Message: "department must not be empty",
		})
	}
	if r.Year != nil && (*r.Year < 1 || *r.Year > 4) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 1 and 4",
		})
	}
	if r.PhoneNumber != nil && !validator.IsValidPhoneNumber(*r.PhoneNumber) {
		errs = append(errs, validator.ValidationError{
			Field:   "phone_number",
			Message: "phone_number must be a valid 10-digit number",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type StudentResponse struct {
	ID                   string `json:"id"`
	StudentCode          string `json:"student_code"`
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Department           string `json:"department"`
	Year                 int    `json:"year"`
	PhoneNumber          string `json:"phone_number"`
	TotalDays            int    `json:"total_days"`
	PresentDays          int    `json:"present_days"`
	AttendancePercentage int    `json:"attendance_percentage"`
	CreatedAt            string `json:"created_at"`
}

type ListStudentsResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Students   []StudentResponse `json:"students"`
}
