package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/suburbmates/suburbmates-api/internal/models"
)

// UserRepository handles data access for user accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID returns a single user by id.
func (r *UserRepository) GetByID(id int) (*models.User, error) {
	const q = `SELECT * FROM users WHERE id = $1 LIMIT 1`
	var u models.User
	if err := r.db.Get(&u, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail returns a single user by email.
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	const q = `SELECT * FROM users WHERE email = $1 LIMIT 1`
	var u models.User
	if err := r.db.Get(&u, q, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user and populates generated fields.
func (r *UserRepository) Create(user *models.User) error {
	const q = `INSERT INTO users (email, name, password_hash, is_admin, is_active)
	           VALUES ($1, $2, $3, $4, $5)
	           RETURNING id, created_at, updated_at`
	return r.db.QueryRowx(q,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.IsAdmin,
		user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}
