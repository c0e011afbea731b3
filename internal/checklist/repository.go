package checklist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultQueryTimeout = 5 * time.Second

// Repository persists venue checklists in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a new Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const checklistColumns = `id, user_id, checklist_type, check_date, conducted_by, items, notes,
       overall_confirmation, signature, status, created_at, updated_at`

type checklistRow struct {
	checklist     Checklist
	checklistType string
	status        string
	items         []byte
}

func (row *checklistRow) dest() []any {
	return []any{
		&row.checklist.ID,
		&row.checklist.UserID,
		&row.checklistType,
		&row.checklist.CheckDate,
		&row.checklist.ConductedBy,
		&row.items,
		&row.checklist.Notes,
		&row.checklist.OverallConfirmation,
		&row.checklist.Signature,
		&row.status,
		&row.checklist.CreatedAt,
		&row.checklist.UpdatedAt,
	}
}

func (row *checklistRow) value() (Checklist, error) {
	cl := row.checklist
	cl.ChecklistType = Type(row.checklistType)
	cl.Status = Status(row.status)
	items, err := decodeItems(cl.ChecklistType, row.items)
	if err != nil {
		return Checklist{}, err
	}
	cl.Items = items
	return cl, nil
}

func scanOne(row pgx.Row) (Checklist, error) {
	var r checklistRow
	if err := row.Scan(r.dest()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Checklist{}, ErrChecklistNotFound
		}
		return Checklist{}, err
	}
	return r.value()
}

// Create inserts an in-progress checklist.
func (r *Repository) Create(ctx context.Context, userID uuid.UUID, in newChecklist) (Checklist, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	cl, err := scanOne(r.pool.QueryRow(ctx, `
INSERT INTO venue_checklists (user_id, checklist_type, check_date, conducted_by, items, notes, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+checklistColumns+`;`,
		userID, string(in.checklistType), in.checkDate, in.conductedBy, in.items, in.notes, string(StatusInProgress)))
	if err != nil {
		return Checklist{}, fmt.Errorf("insert checklist: %w", err)
	}
	return cl, nil
}

// Get loads one of the user's checklists.
func (r *Repository) Get(ctx context.Context, userID, id uuid.UUID) (Checklist, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	cl, err := scanOne(r.pool.QueryRow(ctx, `
SELECT `+checklistColumns+`
FROM venue_checklists
WHERE id = $1 AND user_id = $2;`, id, userID))
	if err != nil {
		if errors.Is(err, ErrChecklistNotFound) {
			return Checklist{}, err
		}
		return Checklist{}, fmt.Errorf("get checklist: %w", err)
	}
	return cl, nil
}

// List returns the user's checklists newest first.
func (r *Repository) List(ctx context.Context, userID uuid.UUID) ([]Checklist, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
SELECT `+checklistColumns+`
FROM venue_checklists
WHERE user_id = $1
ORDER BY created_at DESC;`, userID)
	if err != nil {
		return nil, fmt.Errorf("list checklists: %w", err)
	}
	defer rows.Close()

	checklists := []Checklist{}
	for rows.Next() {
		var row checklistRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, fmt.Errorf("scan checklist: %w", err)
		}
		cl, err := row.value()
		if err != nil {
			return nil, err
		}
		checklists = append(checklists, cl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checklists: %w", err)
	}
	return checklists, nil
}

// Update sets the provided header fields.
func (r *Repository) Update(ctx context.Context, userID, id uuid.UUID, in UpdateInput) (Checklist, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var status *string
	if in.Status != nil {
		s := string(*in.Status)
		status = &s
	}

	return r.mutate(ctx, "update checklist", `
UPDATE venue_checklists
SET conducted_by = COALESCE($3, conducted_by),
    notes = COALESCE($4, notes),
    status = COALESCE($5, status),
    updated_at = NOW()
WHERE id = $1 AND user_id = $2
RETURNING `+checklistColumns+`;`, id, userID, in.ConductedBy, in.Notes, status)
}

// MergeItems shallow-merges patch into the stored items document in one
// statement, so concurrent patches to different items both land.
func (r *Repository) MergeItems(ctx context.Context, userID, id uuid.UUID, patch []byte) (Checklist, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	return r.mutate(ctx, "merge checklist items", `
UPDATE venue_checklists
SET items = items || $3::jsonb,
    updated_at = NOW()
WHERE id = $1 AND user_id = $2
RETURNING `+checklistColumns+`;`, id, userID, patch)
}

// Complete marks a checklist completed. A verified checklist keeps its status.
func (r *Repository) Complete(ctx context.Context, userID, id uuid.UUID, in CompleteInput) (Checklist, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	return r.mutate(ctx, "complete checklist", `
UPDATE venue_checklists
SET status = CASE WHEN status = 'verified' THEN status ELSE 'completed' END,
    overall_confirmation = $3,
    signature = COALESCE($4, signature),
    updated_at = NOW()
WHERE id = $1 AND user_id = $2
RETURNING `+checklistColumns+`;`, id, userID, in.OverallConfirmation, in.Signature)
}

// Delete removes one of the user's checklists.
func (r *Repository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM venue_checklists WHERE id = $1 AND user_id = $2;`, id, userID)
	if err != nil {
		return fmt.Errorf("delete checklist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrChecklistNotFound
	}
	return nil
}

func (r *Repository) mutate(ctx context.Context, op, query string, args ...any) (Checklist, error) {
	cl, err := scanOne(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, ErrChecklistNotFound) {
			return Checklist{}, err
		}
		return Checklist{}, fmt.Errorf("%s: %w", op, err)
	}
	return cl, nil
}
