package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/fika/internal/domain/model"
	"github.com/okian/fika/pkg/metrics"
)

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an initialized pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const memberColumns = `id, telegram_id, COALESCE(username, ''), full_name, COALESCE(bio, ''),
	COALESCE(interests, '{}'), location_lat, location_lon, radius, preferred_language,
	COALESCE(photo_url, ''), COALESCE(preferred_days, '{}'), preferred_time_start,
	preferred_time_end, timezone, is_active, created_at, updated_at`

const pairingColumns = `id, user1_id, user2_id, status, created_at, meeting_date,
	feedback_user1, feedback_user2`

func scanMember(row pgx.Row) (model.Member, error) {
	var m model.Member
	err := row.Scan(&m.ID, &m.TelegramID, &m.Username, &m.FullName, &m.Bio,
		&m.Interests, &m.LocationLat, &m.LocationLon, &m.RadiusKm, &m.PreferredLanguage,
		&m.PhotoURL, &m.PreferredDays, &m.PreferredTimeStart,
		&m.PreferredTimeEnd, &m.Timezone, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Member{}, ErrNotFound
	}
	return m, err
}

func scanPairing(row pgx.Row) (model.Pairing, error) {
	var p model.Pairing
	var status string
	err := row.Scan(&p.ID, &p.User1ID, &p.User2ID, &status, &p.CreatedAt,
		&p.MeetingDate, &p.FeedbackUser1, &p.FeedbackUser2)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Pairing{}, ErrNotFound
	}
	if err != nil {
		return model.Pairing{}, err
	}
	p.Status, err = model.ParseStatus(status)
	return p, err
}

func observeQuery(start time.Time) {
	metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
}

func observeUpdate(start time.Time) {
	metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
}

func (s *PostgresStore) GetActiveMembers(ctx context.Context) ([]model.Member, error) {
	defer observeQuery(time.Now())

	rows, err := s.pool.Query(ctx,
		`SELECT `+memberColumns+` FROM users WHERE is_active = TRUE ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list active members: %w", err)
	}
	defer rows.Close()

	var out []model.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetMember(ctx context.Context, id int64) (model.Member, error) {
	defer observeQuery(time.Now())

	return scanMember(s.pool.QueryRow(ctx,
		`SELECT `+memberColumns+` FROM users WHERE id = $1`, id))
}

func (s *PostgresStore) GetMemberByTelegramID(ctx context.Context, telegramID int64) (model.Member, error) {
	defer observeQuery(time.Now())

	return scanMember(s.pool.QueryRow(ctx,
		`SELECT `+memberColumns+` FROM users WHERE telegram_id = $1`, telegramID))
}

func (s *PostgresStore) CreateMember(ctx context.Context, m model.Member) (int64, error) {
	defer observeUpdate(time.Now())

	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (
			telegram_id, username, full_name, bio, interests,
			location_lat, location_lon, radius, preferred_language, photo_url,
			preferred_days, preferred_time_start, preferred_time_end, timezone, is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, TRUE)
		RETURNING id`,
		m.TelegramID, m.Username, m.FullName, m.Bio, m.Interests,
		m.LocationLat, m.LocationLon, m.RadiusKm, m.PreferredLanguage, m.PhotoURL,
		m.PreferredDays, m.PreferredTimeStart, m.PreferredTimeEnd, m.Timezone,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create member: %w", err)
	}
	return id, nil
}

// setClause accumulates fixed column assignments for a partial update. Column
// names are compile-time literals; only values travel as parameters.
type setClause struct {
	cols []string
	args []any
}

func (c *setClause) add(col string, v any) {
	c.args = append(c.args, v)
	c.cols = append(c.cols, fmt.Sprintf("%s = $%d", col, len(c.args)))
}

func (c *setClause) empty() bool { return len(c.cols) == 0 }

func (s *PostgresStore) UpdateMember(ctx context.Context, id int64, u model.MemberUpdate) error {
	if u.Empty() {
		return ErrNothingToUpdate
	}
	defer observeUpdate(time.Now())

	var c setClause
	if u.Username != nil {
		c.add("username", *u.Username)
	}
	if u.FullName != nil {
		c.add("full_name", *u.FullName)
	}
	if u.Bio != nil {
		c.add("bio", *u.Bio)
	}
	if u.Interests != nil {
		c.add("interests", *u.Interests)
	}
	if u.LocationLat != nil {
		c.add("location_lat", *u.LocationLat)
	}
	if u.LocationLon != nil {
		c.add("location_lon", *u.LocationLon)
	}
	if u.RadiusKm != nil {
		c.add("radius", *u.RadiusKm)
	}
	if u.PreferredLanguage != nil {
		c.add("preferred_language", *u.PreferredLanguage)
	}
	if u.PhotoURL != nil {
		c.add("photo_url", *u.PhotoURL)
	}
	if u.PreferredDays != nil {
		c.add("preferred_days", *u.PreferredDays)
	}
	if u.PreferredTimeStart != nil {
		c.add("preferred_time_start", *u.PreferredTimeStart)
	}
	if u.PreferredTimeEnd != nil {
		c.add("preferred_time_end", *u.PreferredTimeEnd)
	}
	if u.Timezone != nil {
		c.add("timezone", *u.Timezone)
	}
	if u.IsActive != nil {
		c.add("is_active", *u.IsActive)
	}
	c.add("updated_at", time.Now())

	c.args = append(c.args, id)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d RETURNING id",
		strings.Join(c.cols, ", "), len(c.args))

	var updated int64
	err := s.pool.QueryRow(ctx, query, c.args...).Scan(&updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update member %d: %w", id, err)
	}
	return nil
}

func (s *PostgresStore) DeactivateMember(ctx context.Context, id int64) error {
	inactive := false
	return s.UpdateMember(ctx, id, model.MemberUpdate{IsActive: &inactive})
}

func (s *PostgresStore) CreatePairing(ctx context.Context, user1, user2 int64, status model.Status) (int64, error) {
	defer observeUpdate(time.Now())

	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO matches (user1_id, user2_id, status)
		VALUES ($1, $2, $3)
		RETURNING id`,
		user1, user2, status.String(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create pairing: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) GetPairing(ctx context.Context, id int64) (model.Pairing, error) {
	defer observeQuery(time.Now())

	return scanPairing(s.pool.QueryRow(ctx,
		`SELECT `+pairingColumns+` FROM matches WHERE id = $1`, id))
}

func (s *PostgresStore) UpdatePairing(ctx context.Context, id int64, u model.PairingUpdate) error {
	if u.Empty() {
		return ErrNothingToUpdate
	}
	defer observeUpdate(time.Now())

	var c setClause
	if u.Status != nil {
		c.add("status", u.Status.String())
	}
	if u.MeetingDate != nil {
		c.add("meeting_date", *u.MeetingDate)
	}
	if u.FeedbackUser1 != nil {
		c.add("feedback_user1", *u.FeedbackUser1)
	}
	if u.FeedbackUser2 != nil {
		c.add("feedback_user2", *u.FeedbackUser2)
	}

	c.args = append(c.args, id)
	query := fmt.Sprintf("UPDATE matches SET %s WHERE id = $%d RETURNING id",
		strings.Join(c.cols, ", "), len(c.args))

	var updated int64
	err := s.pool.QueryRow(ctx, query, c.args...).Scan(&updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update pairing %d: %w", id, err)
	}
	return nil
}

func (s *PostgresStore) listPairings(ctx context.Context, query string, args ...any) ([]model.Pairing, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pairings: %w", err)
	}
	defer rows.Close()

	var out []model.Pairing
	for rows.Next() {
		p, err := scanPairing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pairing: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListPairingsForMember(ctx context.Context, memberID int64, status model.Status) ([]model.Pairing, error) {
	defer observeQuery(time.Now())

	if status == "" {
		return s.listPairings(ctx,
			`SELECT `+pairingColumns+` FROM matches
			 WHERE user1_id = $1 OR user2_id = $1
			 ORDER BY created_at DESC, id DESC`, memberID)
	}
	return s.listPairings(ctx,
		`SELECT `+pairingColumns+` FROM matches
		 WHERE (user1_id = $1 OR user2_id = $1) AND status = $2
		 ORDER BY created_at DESC, id DESC`, memberID, status.String())
}

func (s *PostgresStore) ListPairingsByStatus(ctx context.Context, status model.Status) ([]model.Pairing, error) {
	defer observeQuery(time.Now())

	return s.listPairings(ctx,
		`SELECT `+pairingColumns+` FROM matches WHERE status = $1 ORDER BY id`,
		status.String())
}

func (s *PostgresStore) ListHistoryForMember(ctx context.Context, memberID int64) ([]model.HistoryEntry, error) {
	defer observeQuery(time.Now())

	rows, err := s.pool.Query(ctx, `
		SELECT id, user1_id, user2_id, status, feedback, match_date
		FROM match_history
		WHERE user1_id = $1 OR user2_id = $1
		ORDER BY match_date DESC, id DESC`, memberID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []model.HistoryEntry
	for rows.Next() {
		var h model.HistoryEntry
		var status string
		if err := rows.Scan(&h.ID, &h.User1ID, &h.User2ID, &status, &h.Feedback, &h.MatchDate); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		if h.Status, err = model.ParseStatus(status); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *PostgresStore) AppendHistory(ctx context.Context, user1, user2 int64, status model.Status, feedback *string) (int64, error) {
	defer observeUpdate(time.Now())

	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO match_history (user1_id, user2_id, status, feedback)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		user1, user2, status.String(), feedback,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("append history: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) CountRecentMissedStreak(ctx context.Context, memberID int64) (int, error) {
	defer observeQuery(time.Now())

	rows, err := s.pool.Query(ctx, `
		SELECT status FROM matches
		WHERE user1_id = $1 OR user2_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, memberID, streakScanLimit)
	if err != nil {
		return 0, fmt.Errorf("count missed streak: %w", err)
	}
	defer rows.Close()

	streak := 0
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return 0, err
		}
		status, err := model.ParseStatus(raw)
		if err != nil {
			return 0, err
		}
		if !status.CountsAsMissed() {
			break
		}
		streak++
	}
	return streak, rows.Err()
}

func (s *PostgresStore) ListPriorPartners(ctx context.Context, memberID int64) (map[int64]struct{}, error) {
	defer observeQuery(time.Now())

	rows, err := s.pool.Query(ctx, `
		SELECT user1_id, user2_id FROM matches
		WHERE user1_id = $1 OR user2_id = $1
		UNION ALL
		SELECT user1_id, user2_id FROM match_history
		WHERE user1_id = $1 OR user2_id = $1`, memberID)
	if err != nil {
		return nil, fmt.Errorf("list prior partners: %w", err)
	}
	defer rows.Close()

	partners := make(map[int64]struct{})
	for rows.Next() {
		var u1, u2 int64
		if err := rows.Scan(&u1, &u2); err != nil {
			return nil, err
		}
		if u1 == memberID {
			partners[u2] = struct{}{}
		} else {
			partners[u1] = struct{}{}
		}
	}
	return partners, rows.Err()
}

func (s *PostgresStore) MemberStats(ctx context.Context, memberID int64) (model.MemberStats, error) {
	defer observeQuery(time.Now())

	var stats model.MemberStats
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status IN ('missed', 'cancelled')),
			COUNT(*) FILTER (WHERE status = 'pending')
		FROM matches
		WHERE user1_id = $1 OR user2_id = $1`, memberID,
	).Scan(&stats.Total, &stats.Completed, &stats.Missed, &stats.Pending)
	if err != nil {
		return model.MemberStats{}, fmt.Errorf("member stats: %w", err)
	}
	return stats, nil
}
