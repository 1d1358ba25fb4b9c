package qrsession

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/campustrack/attendance-backend-go/internal/domain/qrsession"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSessionRepo is an in-memory SessionRepository for service tests.
type fakeSessionRepo struct {
	sessions map[string]qrsession.Session
	nextID   int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]qrsession.Session)}
}

func (f *fakeSessionRepo) Create(ctx context.Context, session qrsession.Session) (qrsession.Session, error) {
	f.nextID++
	session.ID = fmt.Sprintf("session-%d", f.nextID)
	f.sessions[session.ID] = session
	return session, nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id string) (qrsession.Session, error) {
	session, ok := f.sessions[id]
	if !ok {
		return qrsession.Session{}, qrsession.ErrSessionNotFound
	}
	return session, nil
}

func (f *fakeSessionRepo) GetByCode(ctx context.Context, code string) (qrsession.Session, error) {
	for _, session := range f.sessions {
		if session.Code == code {
			return session, nil
		}
	}
	return qrsession.Session{}, qrsession.ErrSessionNotFound
}

func (f *fakeSessionRepo) Consume(ctx context.Context, id string, studentID string, now time.Time) (qrsession.Session, bool, error) {
	session, ok := f.sessions[id]
	if !ok {
		return qrsession.Session{}, false, nil
	}
	if !session.CanBeUsed(now) {
		return qrsession.Session{}, false, nil
	}
	session.CurrentUses++
	session.IsActive = session.CurrentUses < session.MaxUses
	session.Usages = append(session.Usages, qrsession.Usage{StudentID: studentID, UsedAt: now})
	f.sessions[id] = session
	return session, true, nil
}

func (f *fakeSessionRepo) Deactivate(ctx context.Context, id string) error {
	session, ok := f.sessions[id]
	if !ok {
		return qrsession.ErrSessionNotFound
	}
	session.IsActive = false
	f.sessions[id] = session
	return nil
}

func (f *fakeSessionRepo) List(ctx context.Context, filter qrsession.SessionFilter) ([]qrsession.Session, int64, error) {
	var out []qrsession.Session
	for _, session := range f.sessions {
		if filter.SessionType != "" && string(session.SessionType) != filter.SessionType {
			continue
		}
		if filter.IsActive != nil && session.IsActive != *filter.IsActive {
			continue
		}
		out = append(out, session)
	}
	return out, int64(len(out)), nil
}

func (f *fakeSessionRepo) Stats(ctx context.Context, from, to *time.Time) (map[qrsession.SessionType]qrsession.TypeStats, qrsession.OverallStats, error) {
	perType := make(map[qrsession.SessionType]qrsession.TypeStats)
	var overall qrsession.OverallStats
	now := time.Now().UTC()
	for _, session := range f.sessions {
		stats := perType[session.SessionType]
		stats.TotalGenerated++
		stats.TotalUsed += session.CurrentUses
		if session.IsActive {
			stats.ActiveCodes++
		}
		perType[session.SessionType] = stats

		overall.TotalGenerated++
		overall.TotalUsed += session.CurrentUses
		if session.IsActive {
			overall.ActiveCodes++
		}
		if session.IsExpired(now) {
			overall.ExpiredCodes++
		}
	}
	return perType, overall, nil
}

func (f *fakeSessionRepo) DeleteExpiredInactive(ctx context.Context, now time.Time) (int64, error) {
	var deleted int64
	for id, session := range f.sessions {
		if session.IsExpired(now) && !session.IsActive {
			delete(f.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

func adminContext(t *testing.T) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret-key"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"user_id": "admin-1",
		"role":    "admin",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func TestSessionService_Generate(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewSessionService(repo)

	resp, err := svc.Generate(adminContext(t), qrsession.GenerateSessionRequest{
		SessionType:      "check-in",
		ExpiresInMinutes: 30,
		MaxUses:          5,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Session.Code)
	assert.True(t, resp.Session.IsActive)
	assert.Equal(t, 5, resp.Session.MaxUses)
	assert.Equal(t, 5, resp.Session.RemainingUses)
	assert.Equal(t, 30, resp.ExpiresInMinutes)
	assert.True(t, strings.HasPrefix(resp.QRCodeImage, "data:image/png;base64,"))
}

func TestSessionService_Generate_WithGeofence(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewSessionService(repo)

	resp, err := svc.Generate(adminContext(t), qrsession.GenerateSessionRequest{
		SessionType:      "check-out",
		ExpiresInMinutes: 15,
		MaxUses:          1,
		Location: &qrsession.GeofenceRequest{
			Latitude:     -6.2,
			Longitude:    106.8,
			RadiusMeters: 150,
		},
	})

	require.NoError(t, err)
	require.NotNil(t, resp.Session.Location)
	assert.Equal(t, 150, resp.Session.Location.RadiusMeters)
}

func TestSessionService_ValidateCode(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewSessionService(repo)

	generated, err := svc.Generate(adminContext(t), qrsession.GenerateSessionRequest{
		SessionType:      "check-in",
		ExpiresInMinutes: 30,
		MaxUses:          1,
	})
	require.NoError(t, err)

	resp, err := svc.ValidateCode(context.Background(), qrsession.ValidateSessionRequest{Code: generated.Session.Code})
	require.NoError(t, err)
	assert.Equal(t, generated.Session.ID, resp.SessionID)
	assert.Equal(t, 1, resp.RemainingUses)
}

func TestSessionService_ValidateCode_Expired(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewSessionService(repo)

	session, err := repo.Create(context.Background(), qrsession.Session{
		Code:        "expired-code",
		SessionType: qrsession.TypeCheckIn,
		GeneratedAt: time.Now().UTC().Add(-2 * time.Hour),
		ExpiresAt:   time.Now().UTC().Add(-time.Hour),
		IsActive:    true,
		MaxUses:     1,
	})
	require.NoError(t, err)

	_, err = svc.ValidateCode(context.Background(), qrsession.ValidateSessionRequest{Code: session.Code})
	assert.ErrorIs(t, err, qrsession.ErrSessionUnusable)
}

func TestSessionService_ValidateCode_NotFound(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewSessionService(repo)

	_, err := svc.ValidateCode(context.Background(), qrsession.ValidateSessionRequest{Code: "no-such-code"})
	assert.ErrorIs(t, err, qrsession.ErrSessionNotFound)
}

func TestSessionService_ValidateCode_UsesExhausted(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewSessionService(repo)

	generated, err := svc.Generate(adminContext(t), qrsession.GenerateSessionRequest{
		SessionType:      "check-in",
		ExpiresInMinutes: 30,
		MaxUses:          1,
	})
	require.NoError(t, err)

	_, ok, err := repo.Consume(context.Background(), generated.Session.ID, "student-1", time.Now().UTC())
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.ValidateCode(context.Background(), qrsession.ValidateSessionRequest{Code: generated.Session.Code})
	assert.ErrorIs(t, err, qrsession.ErrSessionUnusable)
}

func TestSessionService_Deactivate(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewSessionService(repo)

	generated, err := svc.Generate(adminContext(t), qrsession.GenerateSessionRequest{
		SessionType:      "check-in",
		ExpiresInMinutes: 30,
		MaxUses:          1,
	})
	require.NoError(t, err)

	resp, err := svc.Deactivate(context.Background(), generated.Session.ID)
	require.NoError(t, err)
	assert.False(t, resp.IsActive)

	_, err = svc.ValidateCode(context.Background(), qrsession.ValidateSessionRequest{Code: generated.Session.Code})
	assert.ErrorIs(t, err, qrsession.ErrSessionUnusable)
}

func TestSessionService_Cleanup_OnlyExpiredInactive(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewSessionService(repo)
	now := time.Now().UTC()

	// Expired and inactive: eligible
	_, err := repo.Create(context.Background(), qrsession.Session{
		Code: "a", SessionType: qrsession.TypeCheckIn,
		ExpiresAt: now.Add(-time.Hour), IsActive: false, MaxUses: 1,
	})
	require.NoError(t, err)
	// Expired but still active: kept
	_, err = repo.Create(context.Background(), qrsession.Session{
		Code: "b", SessionType: qrsession.TypeCheckIn,
		ExpiresAt: now.Add(-time.Hour), IsActive: true, MaxUses: 1,
	})
	require.NoError(t, err)
	// Live: kept
	_, err = repo.Create(context.Background(), qrsession.Session{
		Code: "c", SessionType: qrsession.TypeCheckOut,
		ExpiresAt: now.Add(time.Hour), IsActive: true, MaxUses: 1,
	})
	require.NoError(t, err)

	resp, err := svc.Cleanup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.DeletedCount)
	assert.Len(t, repo.sessions, 2)
}

func TestSessionService_Stats(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewSessionService(repo)
	now := time.Now().UTC()

	created, err := repo.Create(context.Background(), qrsession.Session{
		Code: "in-1", SessionType: qrsession.TypeCheckIn,
		ExpiresAt: now.Add(time.Hour), IsActive: true, MaxUses: 3,
	})
	require.NoError(t, err)
	_, ok, err := repo.Consume(context.Background(), created.ID, "student-1", now)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = repo.Create(context.Background(), qrsession.Session{
		Code: "out-1", SessionType: qrsession.TypeCheckOut,
		ExpiresAt: now.Add(-time.Hour), IsActive: false, MaxUses: 1,
	})
	require.NoError(t, err)

	resp, err := svc.Stats(context.Background(), qrsession.StatsRange{})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.CheckIn.TotalGenerated)
	assert.Equal(t, 1, resp.CheckIn.TotalUsed)
	assert.Equal(t, 1, resp.CheckIn.ActiveCodes)
	assert.Equal(t, 1, resp.CheckOut.TotalGenerated)
	assert.Equal(t, 2, resp.Overall.TotalGenerated)
	assert.Equal(t, 1, resp.Overall.ExpiredCodes)
}
