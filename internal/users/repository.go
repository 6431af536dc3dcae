package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/romay-erp/romay/internal/capability"
	"github.com/romay-erp/romay/internal/platform/httpx"
)

// Repository defines persistence operations for user accounts.
type Repository interface {
	FindByPhone(ctx context.Context, phone string) (*User, error)
	Get(ctx context.Context, id int64) (*User, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, name, phone, password_hash, role, is_active, created_at, updated_at`

// FindByPhone fetches a user by their login phone number.
func (r *PGRepository) FindByPhone(ctx context.Context, phone string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE phone = $1`, phone)
	return scanUser(row)
}

// Get fetches a user by ID.
func (r *PGRepository) Get(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*User, error) {
	var user User
	var role string
	err := row.Scan(&user.ID, &user.Name, &user.Phone, &user.PasswordHash, &role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	// An unparseable role column leaves Role at its unknown zero value;
	// downstream gates fail closed on it.
	user.Role, _ = capability.ParseRole(role)
	return &user, nil
}

var _ Repository = (*PGRepository)(nil)
