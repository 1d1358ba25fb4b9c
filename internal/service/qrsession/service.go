package qrsession

import (
	"context"
	"fmt"
	"time"

	"github.com/campustrack/attendance-backend-go/internal/domain/qrsession"
	"github.com/campustrack/attendance-backend-go/internal/pkg/metrics"
	"github.com/campustrack/attendance-backend-go/internal/pkg/qrimage"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
)

type SessionServiceImpl struct {
	qrsession.SessionRepository
}

func NewSessionService(sessionRepository qrsession.SessionRepository) qrsession.SessionService {
	return &SessionServiceImpl{
		SessionRepository: sessionRepository,
	}
}

func toSessionResponse(s qrsession.Session) qrsession.SessionResponse {
	resp := qrsession.SessionResponse{
		ID:              s.ID,
		Code:            s.Code,
		SessionType:     string(s.SessionType),
		GeneratedAt:     s.GeneratedAt.Format(time.RFC3339),
		ExpiresAt:       s.ExpiresAt.Format(time.RFC3339),
		IsActive:        s.IsActive,
		MaxUses:         s.MaxUses,
		CurrentUses:     s.CurrentUses,
		RemainingUses:   s.RemainingUses(),
		GeneratedByName: s.GeneratedByName,
	}

	if s.Geofence != nil {
		resp.Location = &qrsession.GeofenceResponse{
			Latitude:     s.Geofence.Latitude,
			Longitude:    s.Geofence.Longitude,
			RadiusMeters: s.Geofence.RadiusMeters,
		}
	}

	for _, usage := range s.Usages {
		resp.Usages = append(resp.Usages, qrsession.UsageResponse{
			StudentID:   usage.StudentID,
			StudentCode: usage.StudentCode,
			StudentName: usage.StudentName,
			UsedAt:      usage.UsedAt.Format(time.RFC3339),
		})
	}

	return resp
}

// Generate implements qrsession.SessionService.
func (s *SessionServiceImpl) Generate(ctx context.Context, req qrsession.GenerateSessionRequest) (qrsession.GenerateSessionResponse, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return qrsession.GenerateSessionResponse{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}
	generatedBy, ok := claims["user_id"].(string)
	if !ok || generatedBy == "" {
		return qrsession.GenerateSessionResponse{}, fmt.Errorf("user_id claim missing")
	}

	now := time.Now().UTC()
	session := qrsession.Session{
		Code:        uuid.New().String(),
		SessionType: qrsession.SessionType(req.SessionType),
		GeneratedAt: now,
		ExpiresAt:   now.Add(time.Duration(req.ExpiresInMinutes) * time.Minute),
		IsActive:    true,
		MaxUses:     req.MaxUses,
		CurrentUses: 0,
		GeneratedBy: generatedBy,
	}
	if req.Location != nil {
		session.Geofence = &qrsession.Geofence{
			Latitude:     req.Location.Latitude,
			Longitude:    req.Location.Longitude,
			RadiusMeters: req.Location.RadiusMeters,
		}
	}

	created, err := s.SessionRepository.Create(ctx, session)
	if err != nil {
		return qrsession.GenerateSessionResponse{}, fmt.Errorf("failed to create session: %w", err)
	}

	image, err := qrimage.DataURL(qrimage.Payload{
		Code:        created.Code,
		SessionType: string(created.SessionType),
	})
	if err != nil {
		return qrsession.GenerateSessionResponse{}, err
	}

	metrics.SessionsIssued.WithLabelValues(string(created.SessionType)).Inc()

	return qrsession.GenerateSessionResponse{
		Session:          toSessionResponse(created),
		QRCodeImage:      image,
		ExpiresInMinutes: req.ExpiresInMinutes,
	}, nil
}

// ValidateCode implements qrsession.SessionService. Read-only; the
// predicate is evaluated against the current time, nothing is consumed.
func (s *SessionServiceImpl) ValidateCode(ctx context.Context, req qrsession.ValidateSessionRequest) (qrsession.ValidateSessionResponse, error) {
	session, err := s.SessionRepository.GetByCode(ctx, req.Code)
	if err != nil {
		return qrsession.ValidateSessionResponse{}, err
	}

	if !session.CanBeUsed(time.Now().UTC()) {
		return qrsession.ValidateSessionResponse{}, qrsession.ErrSessionUnusable
	}

	resp := qrsession.ValidateSessionResponse{
		SessionID:     session.ID,
		SessionType:   string(session.SessionType),
		ExpiresAt:     session.ExpiresAt.Format(time.RFC3339),
		RemainingUses: session.RemainingUses(),
	}
	if session.Geofence != nil {
		resp.Location = &qrsession.GeofenceResponse{
			Latitude:     session.Geofence.Latitude,
			Longitude:    session.Geofence.Longitude,
			RadiusMeters: session.Geofence.RadiusMeters,
		}
	}

	return resp, nil
}

// ListSessions implements qrsession.SessionService.
func (s *SessionServiceImpl) ListSessions(ctx context.Context, filter qrsession.SessionFilter) (qrsession.ListSessionsResponse, error) {
	filter.Normalize()

	sessions, total, err := s.SessionRepository.List(ctx, filter)
	if err != nil {
		return qrsession.ListSessionsResponse{}, fmt.Errorf("failed to list sessions: %w", err)
	}

	resp := qrsession.ListSessionsResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
		Sessions:   make([]qrsession.SessionResponse, 0, len(sessions)),
	}
	for _, session := range sessions {
		resp.Sessions = append(resp.Sessions, toSessionResponse(session))
	}

	return resp, nil
}

// GetSession implements qrsession.SessionService.
func (s *SessionServiceImpl) GetSession(ctx context.Context, id string) (qrsession.SessionResponse, error) {
	session, err := s.SessionRepository.GetByID(ctx, id)
	if err != nil {
		return qrsession.SessionResponse{}, err
	}
	return toSessionResponse(session), nil
}

// Deactivate implements qrsession.SessionService.
func (s *SessionServiceImpl) Deactivate(ctx context.Context, id string) (qrsession.SessionResponse, error) {
	if err := s.SessionRepository.Deactivate(ctx, id); err != nil {
		return qrsession.SessionResponse{}, err
	}

	session, err := s.SessionRepository.GetByID(ctx, id)
	if err != nil {
		return qrsession.SessionResponse{}, err
	}
	return toSessionResponse(session), nil
}

// Stats implements qrsession.SessionService.
func (s *SessionServiceImpl) Stats(ctx context.Context, r qrsession.StatsRange) (qrsession.SessionStatsResponse, error) {
	perType, overall, err := s.SessionRepository.Stats(ctx, r.From, r.To)
	if err != nil {
		return qrsession.SessionStatsResponse{}, fmt.Errorf("failed to aggregate session stats: %w", err)
	}

	toTypeResponse := func(stats qrsession.TypeStats) qrsession.TypeStatsResponse {
		return qrsession.TypeStatsResponse{
			TotalGenerated: stats.TotalGenerated,
			TotalUsed:      stats.TotalUsed,
			ActiveCodes:    stats.ActiveCodes,
		}
	}

	return qrsession.SessionStatsResponse{
		CheckIn:  toTypeResponse(perType[qrsession.TypeCheckIn]),
		CheckOut: toTypeResponse(perType[qrsession.TypeCheckOut]),
		Overall: qrsession.OverallStatsResponse{
			TotalGenerated: overall.TotalGenerated,
			TotalUsed:      overall.TotalUsed,
			ActiveCodes:    overall.ActiveCodes,
			ExpiredCodes:   overall.ExpiredCodes,
		},
	}, nil
}

// Cleanup implements qrsession.SessionService.
func (s *SessionServiceImpl) Cleanup(ctx context.Context) (qrsession.CleanupResponse, error) {
	deleted, err := s.SessionRepository.DeleteExpiredInactive(ctx, time.Now().UTC())
	if err != nil {
		return qrsession.CleanupResponse{}, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return qrsession.CleanupResponse{DeletedCount: deleted}, nil
}
