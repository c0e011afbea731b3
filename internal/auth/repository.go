package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultQueryTimeout = 5 * time.Second

// Repository provides database access for authentication concerns.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a new Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `
id, username, email, password_hash, COALESCE(first_name, ''), COALESCE(last_name, ''),
role, is_active, last_login, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var (
		user User
		role string
	)
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&role,
		&user.IsActive,
		&user.LastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	user.Role = Role(role)
	return user, err
}

// CreateUser persists a new user record.
func (r *Repository) CreateUser(ctx context.Context, in NewUser) (User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	query := `
INSERT INTO users (username, email, password_hash, first_name, last_name, role)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6)
RETURNING` + userColumns + `;`

	user, err := scanUser(r.pool.QueryRow(ctx, query, in.Username, in.Email, in.PasswordHash, in.FirstName, in.LastName, string(in.Role)))
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrUserAlreadyExists
		}
		return User{}, fmt.Errorf("scan user: %w", err)
	}

	return user, nil
}

// FindUserByLogin fetches a user whose username or email matches login.
func (r *Repository) FindUserByLogin(ctx context.Context, login string) (User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	query := `
SELECT` + userColumns + `
FROM users
WHERE username = $1 OR email = LOWER($1)
LIMIT 1;`

	user, err := scanUser(r.pool.QueryRow(ctx, query, login))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("find user: %w", err)
	}

	return user, nil
}

// FindUserByID fetches a user by primary key.
func (r *Repository) FindUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	query := `
SELECT` + userColumns + `
FROM users
WHERE id = $1;`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("find user: %w", err)
	}

	return user, nil
}

// TouchLastLogin stamps a successful login.
func (r *Repository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	if _, err := r.pool.Exec(ctx, `UPDATE users SET last_login = $2 WHERE id = $1;`, id, at); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// ListUsers returns every user, newest first.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT`+userColumns+` FROM users ORDER BY created_at DESC;`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// UpdateUser applies the non-nil fields of upd.
func (r *Repository) UpdateUser(ctx context.Context, id uuid.UUID, upd UserUpdate) (User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var role *string
	if upd.Role != nil {
		s := string(*upd.Role)
		role = &s
	}

	query := `
UPDATE users
SET role = COALESCE($2, role),
    is_active = COALESCE($3, is_active),
    first_name = COALESCE($4, first_name),
    last_name = COALESCE($5, last_name),
    updated_at = NOW()
WHERE id = $1
RETURNING` + userColumns + `;`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id, role, upd.IsActive, upd.FirstName, upd.LastName))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
