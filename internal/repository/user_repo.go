package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"projexa/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresUserRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresUserRepository(db *sql.DB, logger *logrus.Logger) domain.UserRepository {
	return &postgresUserRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresUserRepository) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
        INSERT INTO users (name, email, password_hash, role)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at, last_signed_in`

	r.log.Debugf("Repository: Attempting to create user with email: %s", user.Email)

	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	err := r.db.QueryRowContext(ctx, query, user.Name, user.Email, user.PasswordHash, user.Role).Scan(
		&user.ID,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastSignedIn,
	)
	if err != nil {
		err = translatePqError(err)
		if errors.Is(err, domain.ErrEmailTaken) {
			r.log.Warnf("Repository: Attempted to create user with duplicate email: %s", user.Email)
			return nil, err
		}
		r.log.Errorf("Repository: Failed to create user '%s': %v", user.Email, err)
		return nil, fmt.Errorf("could not create user: %w", err)
	}

	r.log.Infof("Repository: User created successfully with ID: %d, Email: %s", user.ID, user.Email)
	return user, nil
}

func (r *postgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
        SELECT id, name, email, password_hash, role, created_at, updated_at, last_signed_in
        FROM users
        WHERE email = $1`
	return r.getUser(ctx, query, email)
}

func (r *postgresUserRepository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `
        SELECT id, name, email, password_hash, role, created_at, updated_at, last_signed_in
        FROM users
        WHERE id = $1`
	return r.getUser(ctx, query, id)
}

func (r *postgresUserRepository) getUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	user := &domain.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastSignedIn,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Debugf("Repository: User %v not found", arg)
			return nil, domain.ErrUserNotFound
		}
		r.log.Errorf("Repository: Failed to get user %v: %v", arg, err)
		return nil, fmt.Errorf("could not get user: %w", err)
	}
	return user, nil
}

func (r *postgresUserRepository) UpdateUserRole(ctx context.Context, id int64, role domain.Role, passwordHash string) error {
	query := `
        UPDATE users
        SET role = $1, password_hash = COALESCE(NULLIF($2, ''), password_hash), updated_at = NOW()
        WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, role, passwordHash, id)
	if err != nil {
		r.log.Errorf("Repository: Failed to update role for user %d: %v", id, err)
		return translatePqError(fmt.Errorf("could not update user role: %w", err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *postgresUserRepository) TouchLastSignedIn(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET last_signed_in = NOW() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("could not update last sign-in: %w", err)
	}
	return nil
}
