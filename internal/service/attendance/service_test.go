package attendance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/campustrack/attendance-backend-go/internal/domain/attendance"
	"github.com/campustrack/attendance-backend-go/internal/domain/qrsession"
	"github.com/campustrack/attendance-backend-go/internal/domain/student"
	"github.com/campustrack/attendance-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAttendanceRepo is an in-memory AttendanceRepository keyed by
// (studentID, date).
type fakeAttendanceRepo struct {
	records map[string]attendance.Attendance
	nextID  int
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: make(map[string]attendance.Attendance)}
}

func recordKey(studentID string, date time.Time) string {
	return studentID + "|" + date.Format("2006-01-02")
}

func (f *fakeAttendanceRepo) GetOrCreateForDate(ctx context.Context, studentID string, date time.Time) (attendance.Attendance, error) {
	key := recordKey(studentID, date)
	if rec, ok := f.records[key]; ok {
		return rec, nil
	}
	f.nextID++
	rec := attendance.Attendance{
		ID:        fmt.Sprintf("att-%d", f.nextID),
		StudentID: studentID,
		Date:      date,
		Status:    attendance.StatusAbsent,
	}
	f.records[key] = rec
	return rec, nil
}

func (f *fakeAttendanceRepo) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	for _, rec := range f.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (f *fakeAttendanceRepo) SetCheckIn(ctx context.Context, rec attendance.Attendance) (bool, error) {
	key := recordKey(rec.StudentID, rec.Date)
	stored, ok := f.records[key]
	if !ok || stored.CheckIn != nil {
		return false, nil
	}
	f.records[key] = rec
	return true, nil
}

func (f *fakeAttendanceRepo) SetCheckOut(ctx context.Context, rec attendance.Attendance) (bool, error) {
	key := recordKey(rec.StudentID, rec.Date)
	stored, ok := f.records[key]
	if !ok || stored.CheckIn == nil || stored.CheckOut != nil {
		return false, nil
	}
	f.records[key] = rec
	return true, nil
}

func (f *fakeAttendanceRepo) Update(ctx context.Context, rec attendance.Attendance) error {
	for key, stored := range f.records {
		if stored.ID == rec.ID {
			f.records[key] = rec
			return nil
		}
	}
	return attendance.ErrAttendanceNotFound
}

func (f *fakeAttendanceRepo) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	var out []attendance.Attendance
	for _, rec := range f.records {
		if filter.StudentID != "" && rec.StudentID != filter.StudentID {
			continue
		}
		out = append(out, rec)
	}
	return out, int64(len(out)), nil
}

func (f *fakeAttendanceRepo) CountByStatus(ctx context.Context, studentID string, from, to *time.Time) (attendance.StatusCounts, error) {
	var counts attendance.StatusCounts
	for _, rec := range f.records {
		if rec.StudentID != studentID {
			continue
		}
		if from != nil && rec.Date.Before(*from) {
			continue
		}
		if to != nil && !rec.Date.Before(*to) {
			continue
		}
		counts.TotalDays++
		switch rec.Status {
		case attendance.StatusPresent:
			counts.PresentDays++
		case attendance.StatusLate:
			counts.LateDays++
		case attendance.StatusAbsent:
			counts.AbsentDays++
		}
	}
	return counts, nil
}

func (f *fakeAttendanceRepo) CreateAbsence(ctx context.Context, studentID string, date time.Time) (bool, error) {
	key := recordKey(studentID, date)
	if _, ok := f.records[key]; ok {
		return false, nil
	}
	f.nextID++
	f.records[key] = attendance.Attendance{
		ID:        fmt.Sprintf("att-%d", f.nextID),
		StudentID: studentID,
		Date:      date,
		Status:    attendance.StatusAbsent,
	}
	return true, nil
}

// fakeStudentRepo covers the student lookups the attendance service needs.
type fakeStudentRepo struct {
	students   map[string]student.Student
	recomputed map[string]int
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{
		students:   make(map[string]student.Student),
		recomputed: make(map[string]int),
	}
}

func (f *fakeStudentRepo) Create(ctx context.Context, s student.Student) (student.Student, error) {
	f.students[s.ID] = s
	return s, nil
}

func (f *fakeStudentRepo) GetByID(ctx context.Context, id string) (student.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return student.Student{}, student.ErrStudentNotFound
	}
	return s, nil
}

func (f *fakeStudentRepo) GetByUserID(ctx context.Context, userID string) (student.Student, error) {
	for _, s := range f.students {
		if s.UserID == userID {
			return s, nil
		}
	}
	return student.Student{}, student.ErrStudentNotFound
}

func (f *fakeStudentRepo) GetByStudentCode(ctx context.Context, code string) (student.Student, error) {
	for _, s := range f.students {
		if s.StudentCode == code {
			return s, nil
		}
	}
	return student.Student{}, student.ErrStudentNotFound
}

func (f *fakeStudentRepo) List(ctx context.Context, filter student.StudentFilter) ([]student.Student, int64, error) {
	var out []student.Student
	for _, s := range f.students {
		out = append(out, s)
	}
	return out, int64(len(out)), nil
}

func (f *fakeStudentRepo) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	for id := range f.students {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeStudentRepo) Update(ctx context.Context, s student.Student) error {
	f.students[s.ID] = s
	return nil
}

func (f *fakeStudentRepo) Delete(ctx context.Context, id string) error {
	delete(f.students, id)
	return nil
}

func (f *fakeStudentRepo) RecomputeStats(ctx context.Context, studentID string) (student.Stats, error) {
	f.recomputed[studentID]++
	return student.Stats{}, nil
}

func studentContext(t *testing.T, studentID string) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret-key"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"user_id":    "user-1",
		"student_id": studentID,
		"role":       "student",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
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

// passthroughTransactor runs the function directly; the in-memory
// fakes have no transaction to join.
type passthroughTransactor struct{}

func (passthroughTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeSessionRepo is an in-memory SessionRepository. Consume applies
// the same guard as the conditional UPDATE: it fails without error
// when the session is inactive, expired or at its cap.
type fakeSessionRepo struct {
	sessions map[string]qrsession.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]qrsession.Session)}
}

func (f *fakeSessionRepo) add(s qrsession.Session) qrsession.Session {
	if s.ID == "" {
		s.ID = "sess-" + s.Code
	}
	f.sessions[s.ID] = s
	return s
}

func (f *fakeSessionRepo) Create(ctx context.Context, s qrsession.Session) (qrsession.Session, error) {
	return f.add(s), nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id string) (qrsession.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return qrsession.Session{}, qrsession.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessionRepo) GetByCode(ctx context.Context, code string) (qrsession.Session, error) {
	for _, s := range f.sessions {
		if s.Code == code {
			return s, nil
		}
	}
	return qrsession.Session{}, qrsession.ErrSessionNotFound
}

func (f *fakeSessionRepo) Consume(ctx context.Context, id string, studentID string, now time.Time) (qrsession.Session, bool, error) {
	s, ok := f.sessions[id]
	if !ok || !s.CanBeUsed(now) {
		return qrsession.Session{}, false, nil
	}
	s.CurrentUses++
	s.IsActive = s.CurrentUses < s.MaxUses
	s.Usages = append(s.Usages, qrsession.Usage{StudentID: studentID, UsedAt: now})
	f.sessions[id] = s
	return s, true, nil
}

func (f *fakeSessionRepo) Deactivate(ctx context.Context, id string) error {
	s, ok := f.sessions[id]
	if !ok {
		return qrsession.ErrSessionNotFound
	}
	s.IsActive = false
	f.sessions[id] = s
	return nil
}

func (f *fakeSessionRepo) List(ctx context.Context, filter qrsession.SessionFilter) ([]qrsession.Session, int64, error) {
	var out []qrsession.Session
	for _, s := range f.sessions {
		out = append(out, s)
	}
	return out, int64(len(out)), nil
}

func (f *fakeSessionRepo) Stats(ctx context.Context, from, to *time.Time) (map[qrsession.SessionType]qrsession.TypeStats, qrsession.OverallStats, error) {
	return map[qrsession.SessionType]qrsession.TypeStats{}, qrsession.OverallStats{}, nil
}

func (f *fakeSessionRepo) DeleteExpiredInactive(ctx context.Context, now time.Time) (int64, error) {
	var deleted int64
	for id, s := range f.sessions {
		if !s.IsActive && s.IsExpired(now) {
			delete(f.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

func issueSession(repo *fakeSessionRepo, code string, sessionType qrsession.SessionType, maxUses int) qrsession.Session {
	return repo.add(qrsession.Session{
		Code:        code,
		SessionType: sessionType,
		GeneratedAt: time.Now().UTC(),
		ExpiresAt:   time.Now().UTC().Add(30 * time.Minute),
		IsActive:    true,
		MaxUses:     maxUses,
	})
}

func newTestService(attRepo *fakeAttendanceRepo, stuRepo *fakeStudentRepo) attendance.AttendanceService {
	return NewAttendanceService(passthroughTransactor{}, attRepo, newFakeSessionRepo(), stuRepo)
}

func newMarkService(attRepo *fakeAttendanceRepo, sessRepo *fakeSessionRepo, stuRepo *fakeStudentRepo) attendance.AttendanceService {
	return NewAttendanceService(passthroughTransactor{}, attRepo, sessRepo, stuRepo)
}

func TestAttendanceService_History_PinsStudentToOwnRecords(t *testing.T) {
	attRepo := newFakeAttendanceRepo()
	stuRepo := newFakeStudentRepo()
	svc := newTestService(attRepo, stuRepo)

	day := attendance.StartOfDay(time.Now().UTC())
	_, err := attRepo.CreateAbsence(context.Background(), "student-1", day)
	require.NoError(t, err)
	_, err = attRepo.CreateAbsence(context.Background(), "student-2", day)
	require.NoError(t, err)

	// The filter asks for another student's records; the claim wins
	resp, err := svc.History(studentContext(t, "student-1"), attendance.AttendanceFilter{StudentID: "student-2"})
	require.NoError(t, err)
	require.Len(t, resp.Attendances, 1)
	assert.Equal(t, "student-1", resp.Attendances[0].StudentID)

	// Admin sees all records
	resp, err = svc.History(adminContext(t), attendance.AttendanceFilter{})
	require.NoError(t, err)
	assert.Len(t, resp.Attendances, 2)
}

func TestAttendanceService_History_RequiresStudentClaim(t *testing.T) {
	svc := newTestService(newFakeAttendanceRepo(), newFakeStudentRepo())

	ja := jwtauth.New("HS256", []byte("test-secret-key"), nil)
	token, _, err := ja.Encode(map[string]interface{}{"user_id": "user-1", "role": "student"})
	require.NoError(t, err)
	ctx := jwtauth.NewContext(context.Background(), token, nil)

	_, err = svc.History(ctx, attendance.AttendanceFilter{})
	assert.ErrorIs(t, err, user.ErrStudentRoleRequired)
}

func TestAttendanceService_Stats_OwnAndByCode(t *testing.T) {
	attRepo := newFakeAttendanceRepo()
	stuRepo := newFakeStudentRepo()
	svc := newTestService(attRepo, stuRepo)

	_, err := stuRepo.Create(context.Background(), student.Student{
		ID: "student-1", UserID: "user-1", StudentCode: "STU20260001",
	})
	require.NoError(t, err)

	today := attendance.StartOfDay(time.Now().UTC())
	checkIn := today.Add(8 * time.Hour)
	checkOut := today.Add(13 * time.Hour)
	rec, err := attRepo.GetOrCreateForDate(context.Background(), "student-1", today)
	require.NoError(t, err)
	rec.CheckIn = &checkIn
	rec.CheckOut = &checkOut
	rec.Rederive()
	_, err = attRepo.SetCheckIn(context.Background(), rec)
	require.NoError(t, err)

	yesterday := today.AddDate(0, 0, -1)
	_, err = attRepo.CreateAbsence(context.Background(), "student-1", yesterday)
	require.NoError(t, err)

	resp, err := svc.Stats(studentContext(t, "student-1"), "")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Overall.TotalDays)
	assert.Equal(t, 1, resp.Overall.PresentDays)
	assert.Equal(t, 1, resp.Overall.AbsentDays)
	assert.Equal(t, 50, resp.Overall.AttendancePercentage)

	// Admin asks by student code
	byCode, err := svc.Stats(adminContext(t), "STU20260001")
	require.NoError(t, err)
	assert.Equal(t, resp.Overall, byCode.Overall)

	_, err = svc.Stats(adminContext(t), "STU20269999")
	assert.ErrorIs(t, err, student.ErrStudentNotFound)
}

func TestAttendanceService_UpdateAttendance_RederivesStatus(t *testing.T) {
	attRepo := newFakeAttendanceRepo()
	stuRepo := newFakeStudentRepo()
	svc := newTestService(attRepo, stuRepo)

	today := attendance.StartOfDay(time.Now().UTC())
	rec, err := attRepo.GetOrCreateForDate(context.Background(), "student-1", today)
	require.NoError(t, err)

	checkIn := today.Add(9 * time.Hour).Format(time.RFC3339)
	checkOut := today.Add(14 * time.Hour).Format(time.RFC3339)
	resp, err := svc.UpdateAttendance(adminContext(t), attendance.UpdateAttendanceRequest{
		ID:       rec.ID,
		CheckIn:  &checkIn,
		CheckOut: &checkOut,
	})
	require.NoError(t, err)
	assert.Equal(t, "present", resp.Status)
	assert.Equal(t, 100, resp.Percentage)
	assert.Equal(t, 1, stuRepo.recomputed["student-1"])

	// Shrinking the span below two hours re-derives to absent
	shortOut := today.Add(10 * time.Hour).Format(time.RFC3339)
	resp, err = svc.UpdateAttendance(adminContext(t), attendance.UpdateAttendanceRequest{
		ID:       rec.ID,
		CheckOut: &shortOut,
	})
	require.NoError(t, err)
	assert.Equal(t, "absent", resp.Status)
	assert.Equal(t, 0, resp.Percentage)
}

func TestAttendanceService_UpdateAttendance_RejectsCheckOutBeforeCheckIn(t *testing.T) {
	attRepo := newFakeAttendanceRepo()
	svc := newTestService(attRepo, newFakeStudentRepo())

	today := attendance.StartOfDay(time.Now().UTC())
	rec, err := attRepo.GetOrCreateForDate(context.Background(), "student-1", today)
	require.NoError(t, err)

	checkIn := today.Add(12 * time.Hour).Format(time.RFC3339)
	checkOut := today.Add(9 * time.Hour).Format(time.RFC3339)
	_, err = svc.UpdateAttendance(adminContext(t), attendance.UpdateAttendanceRequest{
		ID:       rec.ID,
		CheckIn:  &checkIn,
		CheckOut: &checkOut,
	})
	assert.ErrorIs(t, err, attendance.ErrCheckOutBeforeCheckIn)
}

func TestAttendanceService_MarkAbsentees(t *testing.T) {
	attRepo := newFakeAttendanceRepo()
	stuRepo := newFakeStudentRepo()
	svc := newTestService(attRepo, stuRepo)
	ctx := context.Background()

	_, err := stuRepo.Create(ctx, student.Student{ID: "student-1"})
	require.NoError(t, err)
	_, err = stuRepo.Create(ctx, student.Student{ID: "student-2"})
	require.NoError(t, err)

	day := attendance.StartOfDay(time.Now().UTC().AddDate(0, 0, -1))

	// student-1 already has a record for the day
	_, err = attRepo.CreateAbsence(ctx, "student-1", day)
	require.NoError(t, err)

	created, err := svc.MarkAbsentees(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, stuRepo.recomputed["student-2"])
	assert.Equal(t, 0, stuRepo.recomputed["student-1"])

	// Rerunning the sweep is a no-op
	created, err = svc.MarkAbsentees(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestAttendanceService_Mark_CheckInThenCheckOut(t *testing.T) {
	attRepo := newFakeAttendanceRepo()
	sessRepo := newFakeSessionRepo()
	stuRepo := newFakeStudentRepo()
	svc := newMarkService(attRepo, sessRepo, stuRepo)
	ctx := studentContext(t, "student-1")

	checkInSession := issueSession(sessRepo, "in-1", qrsession.TypeCheckIn, 1)

	resp, err := svc.Mark(ctx, attendance.MarkAttendanceRequest{Code: "in-1", Action: "check-in"})
	require.NoError(t, err)
	assert.Equal(t, "late", resp.Status)
	assert.Equal(t, 50, resp.Percentage)
	require.NotNil(t, resp.CheckIn)
	assert.Nil(t, resp.CheckOut)
	assert.Equal(t, 1, stuRepo.recomputed["student-1"])

	// Single-use session is consumed and flipped inactive
	consumed := sessRepo.sessions[checkInSession.ID]
	assert.Equal(t, 1, consumed.CurrentUses)
	assert.False(t, consumed.IsActive)
	require.Len(t, consumed.Usages, 1)
	assert.Equal(t, "student-1", consumed.Usages[0].StudentID)

	// A second check-in fails and does not consume the fresh session
	second := issueSession(sessRepo, "in-2", qrsession.TypeCheckIn, 1)
	_, err = svc.Mark(ctx, attendance.MarkAttendanceRequest{Code: "in-2", Action: "check-in"})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
	assert.Equal(t, 0, sessRepo.sessions[second.ID].CurrentUses)

	// Backdate the check-in so the closing mark derives to present
	today := attendance.StartOfDay(time.Now().UTC())
	key := recordKey("student-1", today)
	rec := attRepo.records[key]
	early := time.Now().UTC().Add(-5 * time.Hour)
	rec.CheckIn = &early
	attRepo.records[key] = rec

	issueSession(sessRepo, "out-1", qrsession.TypeCheckOut, 1)
	resp, err = svc.Mark(ctx, attendance.MarkAttendanceRequest{Code: "out-1", Action: "check-out"})
	require.NoError(t, err)
	assert.Equal(t, "present", resp.Status)
	assert.Equal(t, 100, resp.Percentage)
	require.NotNil(t, resp.CheckOut)
	assert.Equal(t, 2, stuRepo.recomputed["student-1"])

	// The day is closed; another check-out is rejected
	issueSession(sessRepo, "out-2", qrsession.TypeCheckOut, 1)
	_, err = svc.Mark(ctx, attendance.MarkAttendanceRequest{Code: "out-2", Action: "check-out"})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)
}

func TestAttendanceService_Mark_CheckOutWithoutCheckIn(t *testing.T) {
	sessRepo := newFakeSessionRepo()
	svc := newMarkService(newFakeAttendanceRepo(), sessRepo, newFakeStudentRepo())

	out := issueSession(sessRepo, "out-1", qrsession.TypeCheckOut, 1)

	_, err := svc.Mark(studentContext(t, "student-1"), attendance.MarkAttendanceRequest{Code: "out-1", Action: "check-out"})
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
	assert.Equal(t, 0, sessRepo.sessions[out.ID].CurrentUses)
}

func TestAttendanceService_Mark_RejectsCheckOutBeforeCheckIn(t *testing.T) {
	attRepo := newFakeAttendanceRepo()
	sessRepo := newFakeSessionRepo()
	svc := newMarkService(attRepo, sessRepo, newFakeStudentRepo())

	today := attendance.StartOfDay(time.Now().UTC())
	rec, err := attRepo.GetOrCreateForDate(context.Background(), "student-1", today)
	require.NoError(t, err)
	future := time.Now().UTC().Add(1 * time.Hour)
	rec.CheckIn = &future
	attRepo.records[recordKey("student-1", today)] = rec

	issueSession(sessRepo, "out-1", qrsession.TypeCheckOut, 1)
	_, err = svc.Mark(studentContext(t, "student-1"), attendance.MarkAttendanceRequest{Code: "out-1", Action: "check-out"})
	assert.ErrorIs(t, err, attendance.ErrCheckOutBeforeCheckIn)
}

func TestAttendanceService_Mark_SessionTypeMismatch(t *testing.T) {
	sessRepo := newFakeSessionRepo()
	svc := newMarkService(newFakeAttendanceRepo(), sessRepo, newFakeStudentRepo())

	issueSession(sessRepo, "in-1", qrsession.TypeCheckIn, 1)

	_, err := svc.Mark(studentContext(t, "student-1"), attendance.MarkAttendanceRequest{Code: "in-1", Action: "check-out"})
	assert.ErrorIs(t, err, qrsession.ErrSessionTypeMismatch)
}

func TestAttendanceService_Mark_UnusableSessions(t *testing.T) {
	sessRepo := newFakeSessionRepo()
	svc := newMarkService(newFakeAttendanceRepo(), sessRepo, newFakeStudentRepo())
	ctx := studentContext(t, "student-1")

	_, err := svc.Mark(ctx, attendance.MarkAttendanceRequest{Code: "missing", Action: "check-in"})
	assert.ErrorIs(t, err, qrsession.ErrSessionNotFound)

	expired := issueSession(sessRepo, "expired", qrsession.TypeCheckIn, 1)
	expired.ExpiresAt = time.Now().UTC().Add(-1 * time.Minute)
	sessRepo.sessions[expired.ID] = expired
	_, err = svc.Mark(ctx, attendance.MarkAttendanceRequest{Code: "expired", Action: "check-in"})
	assert.ErrorIs(t, err, qrsession.ErrSessionUnusable)

	off := issueSession(sessRepo, "off", qrsession.TypeCheckIn, 1)
	off.IsActive = false
	sessRepo.sessions[off.ID] = off
	_, err = svc.Mark(ctx, attendance.MarkAttendanceRequest{Code: "off", Action: "check-in"})
	assert.ErrorIs(t, err, qrsession.ErrSessionUnusable)
}

func TestAttendanceService_Mark_GeofenceEnforced(t *testing.T) {
	sessRepo := newFakeSessionRepo()
	svc := newMarkService(newFakeAttendanceRepo(), sessRepo, newFakeStudentRepo())
	ctx := studentContext(t, "student-1")

	fenced := issueSession(sessRepo, "fenced", qrsession.TypeCheckIn, 1)
	fenced.Geofence = &qrsession.Geofence{Latitude: -6.2, Longitude: 106.8, RadiusMeters: 100}
	sessRepo.sessions[fenced.ID] = fenced

	// Missing coordinates
	_, err := svc.Mark(ctx, attendance.MarkAttendanceRequest{Code: "fenced", Action: "check-in"})
	assert.ErrorIs(t, err, qrsession.ErrLocationRejected)

	// Roughly 15 km away
	farLat, farLng := -6.3, 106.9
	_, err = svc.Mark(ctx, attendance.MarkAttendanceRequest{Code: "fenced", Action: "check-in", Latitude: &farLat, Longitude: &farLng})
	assert.ErrorIs(t, err, qrsession.ErrLocationRejected)

	// Inside the fence
	nearLat, nearLng := -6.2001, 106.8001
	_, err = svc.Mark(ctx, attendance.MarkAttendanceRequest{Code: "fenced", Action: "check-in", Latitude: &nearLat, Longitude: &nearLng})
	require.NoError(t, err)
	assert.Equal(t, 1, sessRepo.sessions[fenced.ID].CurrentUses)
}

func TestAttendanceService_Mark_MultiUseSessionFlipsAtCap(t *testing.T) {
	sessRepo := newFakeSessionRepo()
	svc := newMarkService(newFakeAttendanceRepo(), sessRepo, newFakeStudentRepo())

	shared := issueSession(sessRepo, "shared", qrsession.TypeCheckIn, 2)

	_, err := svc.Mark(studentContext(t, "student-1"), attendance.MarkAttendanceRequest{Code: "shared", Action: "check-in"})
	require.NoError(t, err)
	assert.True(t, sessRepo.sessions[shared.ID].IsActive)

	_, err = svc.Mark(studentContext(t, "student-2"), attendance.MarkAttendanceRequest{Code: "shared", Action: "check-in"})
	require.NoError(t, err)

	// Cap reached flips the session inactive
	spent := sessRepo.sessions[shared.ID]
	assert.Equal(t, 2, spent.CurrentUses)
	assert.False(t, spent.IsActive)
	require.Len(t, spent.Usages, 2)

	_, err = svc.Mark(studentContext(t, "student-3"), attendance.MarkAttendanceRequest{Code: "shared", Action: "check-in"})
	assert.ErrorIs(t, err, qrsession.ErrSessionUnusable)
}

func TestAttendanceService_Mark_RequiresStudentClaim(t *testing.T) {
	svc := newMarkService(newFakeAttendanceRepo(), newFakeSessionRepo(), newFakeStudentRepo())

	_, err := svc.Mark(adminContext(t), attendance.MarkAttendanceRequest{Code: "in-1", Action: "check-in"})
	assert.ErrorIs(t, err, user.ErrStudentRoleRequired)
}
