package domain

import (
	"context"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	LastSignedIn time.Time `json:"lastSignedIn"`
}

// Caller is the identity an operation runs on behalf of. The zero value is an anonymous visitor.
type Caller struct {
	UserID int64
	Role   Role
}

func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

func (c Caller) IsAnonymous() bool {
	return c.UserID == 0
}

type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"userId"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	UpdateUserRole(ctx context.Context, id int64, role Role, passwordHash string) error
	TouchLastSignedIn(ctx context.Context, id int64) error
}

type AuthUseCase interface {
	Register(ctx context.Context, name, email, password string) (*User, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Logout(ctx context.Context, token string) error
	ResolveCaller(ctx context.Context, token string) Caller
	Me(ctx context.Context, caller Caller) (*User, error)
	EnsureAdmin(ctx context.Context, name, email, password string) error
}
