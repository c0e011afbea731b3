package compliance

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

// Repository persists compliance tests in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a new Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const testSelect = `
SELECT t.id, t.user_id, t.test_type, t.test_data, t.status, t.result, t.notes, t.created_at, t.updated_at,
       u.id, u.username, COALESCE(u.first_name, ''), COALESCE(u.last_name, '')
FROM compliance_tests t
JOIN users u ON u.id = t.user_id`

type testRow struct {
	test     Test
	owner    Owner
	testType string
	status   string
	testData []byte
	result   []byte
}

func (row *testRow) dest() []any {
	return []any{
		&row.test.ID,
		&row.test.UserID,
		&row.testType,
		&row.testData,
		&row.status,
		&row.result,
		&row.test.Notes,
		&row.test.CreatedAt,
		&row.test.UpdatedAt,
		&row.owner.ID,
		&row.owner.Username,
		&row.owner.FirstName,
		&row.owner.LastName,
	}
}

func (row *testRow) value() Test {
	t := row.test
	t.TestType = TestType(row.testType)
	t.Status = Status(row.status)
	t.TestData = json.RawMessage(row.testData)
	if row.result != nil {
		t.Result = json.RawMessage(row.result)
	}
	owner := row.owner
	t.User = &owner
	return t
}

// Create inserts a pending test and returns it with its owner.
func (r *Repository) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (Test, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
INSERT INTO compliance_tests (user_id, test_type, test_data, status, notes)
VALUES ($1, $2, $3, $4, $5)
RETURNING id;`, userID, string(in.TestType), []byte(in.TestData), string(StatusPending), in.Notes).Scan(&id)
	if err != nil {
		return Test{}, fmt.Errorf("insert test: %w", err)
	}

	return r.get(ctx, userID, id)
}

// Get loads one of the user's tests.
func (r *Repository) Get(ctx context.Context, userID, id uuid.UUID) (Test, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()
	return r.get(ctx, userID, id)
}

func (r *Repository) get(ctx context.Context, userID, id uuid.UUID) (Test, error) {
	var row testRow
	err := r.pool.QueryRow(ctx, testSelect+`
WHERE t.id = $1 AND t.user_id = $2;`, id, userID).Scan(row.dest()...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Test{}, ErrTestNotFound
		}
		return Test{}, fmt.Errorf("get test: %w", err)
	}
	return row.value(), nil
}

// List returns the user's tests newest first, optionally narrowed to one type.
func (r *Repository) List(ctx context.Context, userID uuid.UUID, testType *TestType) ([]Test, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	query := testSelect + `
WHERE t.user_id = $1`
	args := []any{userID}
	if testType != nil {
		query += ` AND t.test_type = $2`
		args = append(args, string(*testType))
	}
	query += `
ORDER BY t.created_at DESC;`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tests: %w", err)
	}
	defer rows.Close()

	tests := []Test{}
	for rows.Next() {
		var row testRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, fmt.Errorf("scan test: %w", err)
		}
		tests = append(tests, row.value())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tests: %w", err)
	}
	return tests, nil
}

// Update applies p to one of the user's tests. Fields not flagged in p keep
// their stored values.
func (r *Repository) Update(ctx context.Context, userID, id uuid.UUID, p patch) (Test, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var status *string
	if p.status != nil {
		s := string(*p.status)
		status = &s
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE compliance_tests
SET status = COALESCE($3, status),
    result = CASE WHEN $4::boolean THEN $5::jsonb ELSE result END,
    notes = CASE WHEN $6::boolean THEN $7::text ELSE notes END,
    updated_at = NOW()
WHERE id = $1 AND user_id = $2;`, id, userID, status, p.setResult, p.result, p.setNotes, p.notes)
	if err != nil {
		return Test{}, fmt.Errorf("update test: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Test{}, ErrTestNotFound
	}

	return r.get(ctx, userID, id)
}

// Stats counts the user's tests by type and status.
func (r *Repository) Stats(ctx context.Context, userID uuid.UUID) (Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var s Stats
	err := r.pool.QueryRow(ctx, `
SELECT
    COUNT(*) FILTER (WHERE test_type = 'test1'),
    COUNT(*) FILTER (WHERE test_type = 'test2'),
    COUNT(*) FILTER (WHERE test_type = 'fire_drill'),
    COUNT(*) FILTER (WHERE status = 'completed'),
    COUNT(*) FILTER (WHERE status = 'pending')
FROM compliance_tests
WHERE user_id = $1;`, userID).Scan(&s.Test1Count, &s.Test2Count, &s.FireDrillCount, &s.CompletedTests, &s.PendingTests)
	if err != nil {
		return Stats{}, fmt.Errorf("count tests: %w", err)
	}
	s.TotalTests = s.Test1Count + s.Test2Count + s.FireDrillCount
	return s, nil
}
