package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/restaurant-assistant/internal/model"
	"github.com/iliyamo/restaurant-assistant/internal/utils"
)

// StaffRepo persists back-office accounts in the 'staff_users' table.
type StaffRepo struct{ DB *sql.DB }

func NewStaffRepo(db *sql.DB) *StaffRepo { return &StaffRepo{DB: db} }

const staffColumns = "id,email,password_hash,role,is_active,created_at,updated_at"

// Create hashes password with the given bcrypt cost, inserts the account and
// returns its ID.  ErrEmailExists is returned on a duplicate email.
func (r *StaffRepo) Create(ctx context.Context, email, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO staff_users (email, password_hash, role) VALUES (?,?,?)",
		email, hash, role)
	if err != nil {
		// 1062 is MySQL's duplicate-key error number.
		if strings.Contains(err.Error(), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches an account by normalized email.  sql.ErrNoRows is
// returned unchanged when none exists.
func (r *StaffRepo) GetByEmail(ctx context.Context, email string) (model.StaffUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+staffColumns+" FROM staff_users WHERE email=? LIMIT 1", email))
}

// GetByID fetches an account by id.
func (r *StaffRepo) GetByID(ctx context.Context, id uint64) (model.StaffUser, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+staffColumns+" FROM staff_users WHERE id=? LIMIT 1", id))
}

// Count returns the number of staff accounts.  It is used at startup to
// decide whether the bootstrap manager must be created.
func (r *StaffRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM staff_users").Scan(&n)
	return n, err
}

// EnsureManager creates a MANAGER account when the table is empty.  It is a
// no-op otherwise, and also when email is blank.
func (r *StaffRepo) EnsureManager(ctx context.Context, email, password string, cost int) (bool, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return false, nil
	}
	n, err := r.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if _, err := r.Create(ctx, email, password, model.RoleManager, cost); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *StaffRepo) scanOne(row *sql.Row) (model.StaffUser, error) {
	var u model.StaffUser
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
