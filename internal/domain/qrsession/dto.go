package qrsession

import (
	"time"

	"github.com/campustrack/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// QR SESSION DTOs
// ========================================

type GeofenceRequest struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters int     `json:"radius"`
}

type GenerateSessionRequest struct {
	SessionType      string           `json:"session_type"`
	ExpiresInMinutes int              `json:"expires_in_minutes"`
	MaxUses          int              `json:"max_uses"`
	Location         *GeofenceRequest `json:"location"`
}

// ApplyDefaults fills the issue defaults for omitted fields.
func (r *GenerateSessionRequest) ApplyDefaults() {
	if r.ExpiresInMinutes == 0 {
		r.ExpiresInMinutes = DefaultTTLMinutes
	}
	if r.MaxUses == 0 {
		r.MaxUses = DefaultMaxUses
	}
	if r.Location != nil && r.Location.RadiusMeters == 0 {
		r.Location.RadiusMeters = DefaultRadiusMeters
	}
}

func (r *GenerateSessionRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsInSlice(r.SessionType, []string{string(TypeCheckIn), string(TypeCheckOut)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "session_type",
			Message: "session_type must be check-in or check-out",
		})
	}

	if r.ExpiresInMinutes < MinTTLMinutes || r.ExpiresInMinutes > MaxTTLMinutes {
		errs = append(errs, validator.ValidationError{
			Field:   "expires_in_minutes",
			Message: "expires_in_minutes must be between 1 and 1440",
		})
	}

	if r.MaxUses < MinMaxUses || r.MaxUses > MaxMaxUses {
		errs = append(errs, validator.ValidationError{
			Field:   "max_uses",
			Message: "max_uses must be between 1 and 1000",
		})
	}

	if r.Location != nil {
		if r.Location.Latitude < -90 || r.Location.Latitude > 90 {
			errs = append(errs, validator.ValidationError{
				Field:   "location.latitude",
				Message: "latitude must be between -90 and 90",
			})
		}
		if r.Location.Longitude < -180 || r.Location.Longitude > 180 {
			errs = append(errs, validator.ValidationError{
				Field:   "location.longitude",
				Message: "longitude must be between -180 and 180",
			})
		}
		if r.Location.RadiusMeters < 10 || r.Location.RadiusMeters > 1000 {
			errs = append(errs, validator.ValidationError{
				Field:   "location.radius",
				Message: "radius must be between 10 and 1000 meters",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ValidateSessionRequest struct {
	Code string `json:"code"`
}

func (r *ValidateSessionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Code) {
		errs = append(errs, validator.ValidationError{
			Field:   "code",
			Message: "code is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SessionFilter struct {
	Page        int
	Limit       int
	SessionType string
	IsActive    *bool
}

func (f *SessionFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type GeofenceResponse struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters int     `json:"radius"`
}

type UsageResponse struct {
	StudentID   string  `json:"student_id"`
	StudentCode *string `json:"student_code,omitempty"`
	StudentName *string `json:"student_name,omitempty"`
	UsedAt      string  `json:"used_at"`
}

type SessionResponse struct {
	ID              string            `json:"id"`
	Code            string            `json:"code"`
	SessionType     string            `json:"session_type"`
	GeneratedAt     string            `json:"generated_at"`
	ExpiresAt       string            `json:"expires_at"`
	IsActive        bool              `json:"is_active"`
	MaxUses         int               `json:"max_uses"`
	CurrentUses     int               `json:"current_uses"`
	RemainingUses   int               `json:"remaining_uses"`
	Location        *GeofenceResponse `json:"location,omitempty"`
	GeneratedByName *string           `json:"generated_by_name,omitempty"`
	Usages          []UsageResponse   `json:"usages,omitempty"`
}

type GenerateSessionResponse struct {
	Session          SessionResponse `json:"session"`
	QRCodeImage      string          `json:"qr_code_image"`
	ExpiresInMinutes int             `json:"expires_in_minutes"`
}

type ValidateSessionResponse struct {
	SessionID     string            `json:"session_id"`
	SessionType   string            `json:"session_type"`
	ExpiresAt     string            `json:"expires_at"`
	RemainingUses int               `json:"remaining_uses"`
	Location      *GeofenceResponse `json:"location,omitempty"`
}

type ListSessionsResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Sessions   []SessionResponse `json:"sessions"`
}

type TypeStatsResponse struct {
	TotalGenerated int `json:"total_generated"`
	TotalUsed      int `json:"total_used"`
	ActiveCodes    int `json:"active_codes"`
}

type OverallStatsResponse struct {
	TotalGenerated int `json:"total_generated"`
	TotalUsed      int `json:"total_used"`
	ActiveCodes    int `json:"active_codes"`
	ExpiredCodes   int `json:"expired_codes"`
}

type SessionStatsResponse struct {
	CheckIn  TypeStatsResponse    `json:"check_in"`
	CheckOut TypeStatsResponse    `json:"check_out"`
	Overall  OverallStatsResponse `json:"overall"`
}

type CleanupResponse struct {
	DeletedCount int64 `json:"deleted_count"`
}

// StatsRange bounds a stats query; nil bounds are open.
type StatsRange struct {
	From *time.Time
	To   *time.Time
}
