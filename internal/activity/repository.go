package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultQueryTimeout = 5 * time.Second

// Repository persists activity records in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a new Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert appends one record.
func (r *Repository) Insert(ctx context.Context, rec NewRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	query := `
INSERT INTO activity_logs (user_id, activity_type, description, ip_address, user_agent, metadata)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6);`

	if _, err := r.pool.Exec(ctx, query, rec.ActorID, string(rec.Kind), rec.Description, rec.IPAddress, rec.UserAgent, rec.Metadata); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

const recordColumns = `
a.id, a.user_id, a.activity_type, a.description,
COALESCE(a.ip_address, ''), COALESCE(a.user_agent, ''), a.metadata, a.created_at`

// List returns one page of records newest first, with the total match count.
func (r *Repository) List(ctx context.Context, f Filter) ([]Record, int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	where, args := buildActivityWhere(f, 1)

	var total int
	countQuery := "SELECT COUNT(*) FROM activity_logs a " + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count activity: %w", err)
	}

	query := fmt.Sprintf(`
SELECT %s,
       u.id, u.username, u.email, COALESCE(u.first_name, ''), COALESCE(u.last_name, ''), u.role
FROM activity_logs a
JOIN users u ON u.id = a.user_id
%s
ORDER BY a.created_at DESC
LIMIT $%d OFFSET $%d;`, recordColumns, where, len(args)+1, len(args)+2)

	rows, err := r.pool.Query(ctx, query, append(args, f.Limit, f.offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			row   recordRow
			actor Actor
		)
		dest := append(row.dest(), &actor.ID, &actor.Username, &actor.Email, &actor.FirstName, &actor.LastName, &actor.Role)
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("scan activity: %w", err)
		}
		rec := row.record()
		rec.Actor = &actor
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate activity: %w", err)
	}

	return records, total, nil
}

// ListForActor returns the newest records of one user within the range.
func (r *Repository) ListForActor(ctx context.Context, actorID uuid.UUID, from, to *time.Time, limit int) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	where, args := buildActivityWhere(Filter{ActorID: &actorID, From: from, To: to}, 1)
	query := fmt.Sprintf(`
SELECT %s
FROM activity_logs a
%s
ORDER BY a.created_at DESC
LIMIT $%d;`, recordColumns, where, len(args)+1)

	rows, err := r.pool.Query(ctx, query, append(args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("list user activity: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var row recordRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		records = append(records, row.record())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity: %w", err)
	}
	return records, nil
}

// CountByKind groups records in the range by kind.
func (r *Repository) CountByKind(ctx context.Context, from, to *time.Time) ([]KindCount, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	where, args := whereRange(from, to, 1)
	query := `
SELECT a.activity_type, COUNT(*)
FROM activity_logs a
` + where + `
GROUP BY a.activity_type
ORDER BY a.activity_type;`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count activity by kind: %w", err)
	}
	defer rows.Close()

	counts := []KindCount{}
	for rows.Next() {
		var (
			kind  string
			count int
		)
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("scan kind count: %w", err)
		}
		counts = append(counts, KindCount{Kind: Kind(kind), Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate kind counts: %w", err)
	}
	return counts, nil
}

// CountSince counts every record created at or after since.
func (r *Repository) CountSince(ctx context.Context, since time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM activity_logs WHERE created_at >= $1;`, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("count recent activity: %w", err)
	}
	return n, nil
}

// CountDistinctActors counts users with at least one record in the range.
func (r *Repository) CountDistinctActors(ctx context.Context, from, to *time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	where, args := whereRange(from, to, 1)
	var n int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(DISTINCT a.user_id) FROM activity_logs a "+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count active users: %w", err)
	}
	return n, nil
}

// FindActor loads the profile shown on the per-user report.
func (r *Repository) FindActor(ctx context.Context, id uuid.UUID) (ActorProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	query := `
SELECT id, username, email, COALESCE(first_name, ''), COALESCE(last_name, ''), role, last_login, created_at
FROM users
WHERE id = $1;`

	var p ActorProfile
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Username,
		&p.Email,
		&p.FirstName,
		&p.LastName,
		&p.Role,
		&p.LastLogin,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ActorProfile{}, ErrUserNotFound
		}
		return ActorProfile{}, fmt.Errorf("find user: %w", err)
	}
	return p, nil
}

// recordRow scans the columns that need conversion after Scan.
type recordRow struct {
	rec      Record
	kind     string
	metadata []byte
}

func (row *recordRow) dest() []any {
	return []any{
		&row.rec.ID,
		&row.rec.ActorID,
		&row.kind,
		&row.rec.Description,
		&row.rec.IPAddress,
		&row.rec.UserAgent,
		&row.metadata,
		&row.rec.CreatedAt,
	}
}

func (row *recordRow) record() Record {
	rec := row.rec
	rec.Kind = Kind(row.kind)
	if len(row.metadata) > 0 {
		rec.Metadata = json.RawMessage(row.metadata)
	}
	return rec
}
