package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/campustrack/attendance-backend-go/internal/domain/qrsession"
	"github.com/campustrack/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type sessionRepositoryImpl struct {
	db *database.DB
}

func NewSessionRepository(db *database.DB) qrsession.SessionRepository {
	return &sessionRepositoryImpl{db: db}
}

const sessionColumns = `qs.id, qs.code, qs.session_type, qs.generated_at, qs.expires_at, qs.is_active,
		   qs.max_uses, qs.current_uses, qs.location_lat, qs.location_lng, qs.location_radius,
		   qs.generated_by, qs.created_at, qs.updated_at`

func scanSession(row pgx.Row) (qrsession.Session, error) {
	var s qrsession.Session
	var lat, lng *float64
	var radius *int

	err := row.Scan(
		&s.ID,
		&s.Code,
		&s.SessionType,
		&s.GeneratedAt,
		&s.ExpiresAt,
		&s.IsActive,
		&s.MaxUses,
		&s.CurrentUses,
		&lat,
		&lng,
		&radius,
		&s.GeneratedBy,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return qrsession.Session{}, err
	}

	if lat != nil && lng != nil && radius != nil {
		s.Geofence = &qrsession.Geofence{
			Latitude:     *lat,
			Longitude:    *lng,
			RadiusMeters: *radius,
		}
	}

	return s, nil
}

func geofenceColumns(g *qrsession.Geofence) (lat, lng *float64, radius *int) {
	if g == nil {
		return nil, nil, nil
	}
	return &g.Latitude, &g.Longitude, &g.RadiusMeters
}

// Create implements qrsession.SessionRepository.
func (r *sessionRepositoryImpl) Create(ctx context.Context, session qrsession.Session) (qrsession.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO qr_sessions (
			code, session_type, generated_at, expires_at, is_active, max_uses,
			current_uses, location_lat, location_lng, location_radius, generated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, code, session_type, generated_at, expires_at, is_active,
				  max_uses, current_uses, location_lat, location_lng, location_radius,
				  generated_by, created_at, updated_at
	`

	lat, lng, radius := geofenceColumns(session.Geofence)

	created, err := scanSession(q.QueryRow(ctx, query,
		session.Code,
		session.SessionType,
		session.GeneratedAt,
		session.ExpiresAt,
		session.IsActive,
		session.MaxUses,
		session.CurrentUses,
		lat,
		lng,
		radius,
		session.GeneratedBy,
	))
	if err != nil {
		return qrsession.Session{}, err
	}

	return created, nil
}

// GetByID implements qrsession.SessionRepository.
func (r *sessionRepositoryImpl) GetByID(ctx context.Context, id string) (qrsession.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + sessionColumns + `, u.name
		FROM qr_sessions qs
		INNER JOIN users u ON qs.generated_by = u.id
		WHERE qs.id = $1
	`

	var s qrsession.Session
	var lat, lng *float64
	var radius *int

	err := q.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.Code,
		&s.SessionType,
		&s.GeneratedAt,
		&s.ExpiresAt,
		&s.IsActive,
		&s.MaxUses,
		&s.CurrentUses,
		&lat,
		&lng,
		&radius,
		&s.GeneratedBy,
		&s.CreatedAt,
		&s.UpdatedAt,
		&s.GeneratedByName,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return qrsession.Session{}, qrsession.ErrSessionNotFound
		}
		return qrsession.Session{}, err
	}

	if lat != nil && lng != nil && radius != nil {
		s.Geofence = &qrsession.Geofence{
			Latitude:     *lat,
			Longitude:    *lng,
			RadiusMeters: *radius,
		}
	}

	usages, err := r.listUsages(ctx, s.ID)
	if err != nil {
		return qrsession.Session{}, err
	}
	s.Usages = usages

	return s, nil
}

// GetByCode implements qrsession.SessionRepository.
func (r *sessionRepositoryImpl) GetByCode(ctx context.Context, code string) (qrsession.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + sessionColumns + `
		FROM qr_sessions qs
		WHERE qs.code = $1
	`

	s, err := scanSession(q.QueryRow(ctx, query, code))
	if err != nil {
		if err == pgx.ErrNoRows {
			return qrsession.Session{}, qrsession.ErrSessionNotFound
		}
		return qrsession.Session{}, err
	}

	return s, nil
}

func (r *sessionRepositoryImpl) listUsages(ctx context.Context, sessionID string) ([]qrsession.Usage, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT su.student_id, su.used_at, s.student_code, u.name
		FROM qr_session_usages su
		INNER JOIN students s ON su.student_id = s.id
		INNER JOIN users u ON s.user_id = u.id
		WHERE su.session_id = $1
		ORDER BY su.used_at ASC
	`

	rows, err := q.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usages []qrsession.Usage
	for rows.Next() {
		var usage qrsession.Usage
		if err := rows.Scan(&usage.StudentID, &usage.UsedAt, &usage.StudentCode, &usage.StudentName); err != nil {
			return nil, err
		}
		usages = append(usages, usage)
	}

	return usages, nil
}

// Consume implements qrsession.SessionRepository. The guard and the
// increment are one conditional UPDATE, so concurrent redemptions of a
// session with one use left race on the row and exactly one wins. The
// active flag flips off in the same statement when the cap is reached.
// Joins an already-running transaction when the context carries one.
func (r *sessionRepositoryImpl) Consume(ctx context.Context, id string, studentID string, now time.Time) (qrsession.Session, bool, error) {
	if _, inTx := database.TxFromContext(ctx); inTx {
		return r.consume(ctx, id, studentID, now)
	}

	var consumed qrsession.Session
	var ok bool

	err := r.db.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		consumed, ok, err = r.consume(txCtx, id, studentID, now)
		return err
	})
	if err != nil {
		return qrsession.Session{}, false, err
	}

	return consumed, ok, nil
}

func (r *sessionRepositoryImpl) consume(ctx context.Context, id string, studentID string, now time.Time) (qrsession.Session, bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE qr_sessions qs
		SET current_uses = qs.current_uses + 1,
			is_active = (qs.current_uses + 1 < qs.max_uses),
			updated_at = NOW()
		WHERE qs.id = $1
		  AND qs.is_active = TRUE
		  AND qs.expires_at >= $2
		  AND qs.current_uses < qs.max_uses
		RETURNING ` + sessionColumns

	s, err := scanSession(q.QueryRow(ctx, query, id, now))
	if err != nil {
		if err == pgx.ErrNoRows {
			// Guard failed at call time
			return qrsession.Session{}, false, nil
		}
		return qrsession.Session{}, false, err
	}

	insertUsage := `
		INSERT INTO qr_session_usages (session_id, student_id, used_at)
		VALUES ($1, $2, $3)
	`
	if _, err := q.Exec(ctx, insertUsage, id, studentID, now); err != nil {
		return qrsession.Session{}, false, err
	}

	return s, true, nil
}

// Deactivate implements qrsession.SessionRepository.
func (r *sessionRepositoryImpl) Deactivate(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE qr_sessions
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := q.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return qrsession.ErrSessionNotFound
	}
	return nil
}

// List implements qrsession.SessionRepository.
func (r *sessionRepositoryImpl) List(ctx context.Context, filter qrsession.SessionFilter) ([]qrsession.Session, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := `WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filter.SessionType != "" {
		where += fmt.Sprintf(` AND qs.session_type = $%d`, argPos)
		args = append(args, filter.SessionType)
		argPos++
	}
	if filter.IsActive != nil {
		where += fmt.Sprintf(` AND qs.is_active = $%d`, argPos)
		args = append(args, *filter.IsActive)
		argPos++
	}

	countQuery := `
		SELECT COUNT(*)
		FROM qr_sessions qs
		` + where

	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + sessionColumns + `
		FROM qr_sessions qs
		` + where + fmt.Sprintf(`
		ORDER BY qs.generated_at DESC
		LIMIT $%d OFFSET $%d`, argPos, argPos+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var sessions []qrsession.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, s)
	}

	return sessions, total, nil
}

// Stats implements qrsession.SessionRepository.
func (r *sessionRepositoryImpl) Stats(ctx context.Context, from, to *time.Time) (map[qrsession.SessionType]qrsession.TypeStats, qrsession.OverallStats, error) {
	q := GetQuerier(ctx, r.db)

	perTypeQuery := `
		SELECT session_type,
			   COUNT(*),
			   COUNT(*) FILTER (WHERE current_uses > 0),
			   COUNT(*) FILTER (WHERE is_active AND expires_at >= NOW())
		FROM qr_sessions
		WHERE ($1::timestamptz IS NULL OR generated_at >= $1)
		  AND ($2::timestamptz IS NULL OR generated_at < $2)
		GROUP BY session_type
	`

	rows, err := q.Query(ctx, perTypeQuery, from, to)
	if err != nil {
		return nil, qrsession.OverallStats{}, err
	}
	defer rows.Close()

	perType := make(map[qrsession.SessionType]qrsession.TypeStats)
	var overall qrsession.OverallStats

	for rows.Next() {
		var sessionType qrsession.SessionType
		var stats qrsession.TypeStats
		if err := rows.Scan(&sessionType, &stats.TotalGenerated, &stats.TotalUsed, &stats.ActiveCodes); err != nil {
			return nil, qrsession.OverallStats{}, err
		}
		perType[sessionType] = stats

		overall.TotalGenerated += stats.TotalGenerated
		overall.TotalUsed += stats.TotalUsed
		overall.ActiveCodes += stats.ActiveCodes
	}

	expiredQuery := `
		SELECT COUNT(*)
		FROM qr_sessions
		WHERE expires_at < NOW()
		  AND ($1::timestamptz IS NULL OR generated_at >= $1)
		  AND ($2::timestamptz IS NULL OR generated_at < $2)
	`
	if err := q.QueryRow(ctx, expiredQuery, from, to).Scan(&overall.ExpiredCodes); err != nil {
		return nil, qrsession.OverallStats{}, err
	}

	return perType, overall, nil
}

// DeleteExpiredInactive implements qrsession.SessionRepository. Usage
// rows cascade with their session.
func (r *sessionRepositoryImpl) DeleteExpiredInactive(ctx context.Context, now time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		DELETE FROM qr_sessions
		WHERE expires_at < $1 AND is_active = FALSE
	`

	commandTag, err := q.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return commandTag.RowsAffected(), nil
}
