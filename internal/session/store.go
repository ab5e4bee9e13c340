// Package session keeps bearer-token sessions issued at login.
package session

import (
	"context"
	"errors"
	"time"

	"projexa/internal/domain"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found")

type Store interface {
	Save(ctx context.Context, s *domain.Session) error
	// Get returns ErrNotFound for unknown or expired tokens.
	Get(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
}

func New(userID int64, role domain.Role, ttl time.Duration) *domain.Session {
	return &domain.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		Role:      role,
		ExpiresAt: time.Now().Add(ttl).UTC(),
	}
}
