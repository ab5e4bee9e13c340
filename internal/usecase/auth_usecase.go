package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"projexa/internal/domain"
	"projexa/internal/events"
	"projexa/internal/session"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var _ domain.AuthUseCase = (*authUseCase)(nil)

type authUseCase struct {
	userRepo   domain.UserRepository
	sessions   session.Store
	publisher  events.Publisher
	sessionTTL time.Duration
	log        *logrus.Logger
}

func NewAuthUseCase(repo domain.UserRepository, sessions session.Store, publisher events.Publisher, sessionTTL time.Duration, logger *logrus.Logger) domain.AuthUseCase {
	return &authUseCase{
		userRepo:   repo,
		sessions:   sessions,
		publisher:  publisher,
		sessionTTL: sessionTTL,
		log:        logger,
	}
}

func (uc *authUseCase) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	uc.log.Infof("Use Case: Attempting registration for email: %s", email)

	if name == "" {
		return nil, domain.NewValidationError("name", "must not be empty")
	}
	if err := checkMaxLen("name", name, maxNameLen); err != nil {
		return nil, err
	}
	if !isValidEmail(email) {
		uc.log.Warnf("Use Case: Registration failed - invalid email format: %s", email)
		return nil, domain.NewValidationError("email", "invalid email format")
	}
	if err := checkMaxLen("email", email, maxEmailLen); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		uc.log.Warnf("Use Case: Registration failed - password validation error: %v", err)
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to hash password for %s: %v", email, err)
		return nil, fmt.Errorf("internal error processing password: %w", err)
	}

	// Uniqueness is left to the users_email_key constraint.
	created, err := uc.userRepo.CreateUser(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         domain.RoleUser,
	})
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create user %s: %v", email, err)
		return nil, err
	}
	uc.log.Infof("Use Case: User registered successfully. ID: %d, Email: %s", created.ID, created.Email)

	if uc.publisher != nil {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := uc.publisher.Publish(pubCtx, events.NewUserRegistered(created)); err != nil {
			uc.log.Errorf("Use Case: Failed to publish registration of user %d: %v", created.ID, err)
		}
	}
	return created, nil
}

func (uc *authUseCase) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !isValidEmail(email) || password == "" {
		uc.log.Warnf("Use Case: Auth failed - invalid email or empty password for %s", email)
		return nil, domain.ErrInvalidCredentials
	}

	user, err := uc.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.log.Warnf("Use Case: Auth failed - user not found: %s", email)
			return nil, domain.ErrInvalidCredentials
		}
		uc.log.Errorf("Use Case: Error retrieving user %s during auth: %v", email, err)
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			uc.log.Warnf("Use Case: Auth failed - incorrect password for user %s (ID: %d)", email, user.ID)
			return nil, domain.ErrInvalidCredentials
		}
		uc.log.Errorf("Use Case: Error comparing password hash for user %s: %v", email, err)
		return nil, fmt.Errorf("internal error during authentication: %w", err)
	}

	sess := session.New(user.ID, user.Role, uc.sessionTTL)
	if err := uc.sessions.Save(ctx, sess); err != nil {
		uc.log.Errorf("Use Case: Failed to store session for user %d: %v", user.ID, err)
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	if err := uc.userRepo.TouchLastSignedIn(ctx, user.ID); err != nil {
		uc.log.Warnf("Use Case: Failed to record sign-in for user %d: %v", user.ID, err)
	}

	uc.log.Infof("Use Case: Authentication successful for user %s (ID: %d, role: %s)", email, user.ID, user.Role)
	return sess, nil
}

func (uc *authUseCase) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := uc.sessions.Delete(ctx, token); err != nil {
		uc.log.Errorf("Use Case: Failed to delete session: %v", err)
		return err
	}
	return nil
}

// ResolveCaller maps a bearer token to a Caller with the user's current role.
// Unknown or expired tokens, and tokens of deleted users, resolve to anonymous.
func (uc *authUseCase) ResolveCaller(ctx context.Context, token string) domain.Caller {
	if token == "" {
		return domain.Caller{}
	}
	sess, err := uc.sessions.Get(ctx, token)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			uc.log.Errorf("Use Case: Session lookup failed: %v", err)
		}
		return domain.Caller{}
	}
	// The role is re-read on every request so promotions and demotions apply to live sessions.
	user, err := uc.userRepo.GetUserByID(ctx, sess.UserID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			uc.log.Errorf("Use Case: Failed to load user %d for session: %v", sess.UserID, err)
		}
		return domain.Caller{}
	}
	if user.Role != sess.Role {
		uc.log.Infof("Use Case: Role of user %d changed from '%s' to '%s' since login", user.ID, sess.Role, user.Role)
	}
	return domain.Caller{UserID: user.ID, Role: user.Role}
}

func (uc *authUseCase) Me(ctx context.Context, caller domain.Caller) (*domain.User, error) {
	if caller.IsAnonymous() {
		return nil, domain.ErrInvalidCredentials
	}
	user, err := uc.userRepo.GetUserByID(ctx, caller.UserID)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get user ID %d: %v", caller.UserID, err)
		return nil, err
	}
	return user, nil
}

// EnsureAdmin creates the configured admin account, or promotes and re-keys an existing one.
func (uc *authUseCase) EnsureAdmin(ctx context.Context, name, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		uc.log.Warn("Use Case: Admin credentials not configured, admin endpoints are unreachable")
		return nil
	}
	if !isValidEmail(email) {
		return domain.NewValidationError("adminEmail", "invalid email format")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	existing, err := uc.userRepo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if err := uc.userRepo.UpdateUserRole(ctx, existing.ID, domain.RoleAdmin, string(hashed)); err != nil {
			return fmt.Errorf("promote admin %s: %w", email, err)
		}
		uc.log.Infof("Use Case: Admin account %s (ID: %d) ensured", email, existing.ID)
		return nil
	case errors.Is(err, domain.ErrNotFound):
		if strings.TrimSpace(name) == "" {
			name = "Admin"
		}
		created, err := uc.userRepo.CreateUser(ctx, &domain.User{
			Name:         strings.TrimSpace(name),
			Email:        email,
			PasswordHash: string(hashed),
			Role:         domain.RoleAdmin,
		})
		if err != nil {
			return fmt.Errorf("create admin %s: %w", email, err)
		}
		uc.log.Infof("Use Case: Admin account %s created with ID %d", email, created.ID)
		return nil
	default:
		return fmt.Errorf("look up admin %s: %w", email, err)
	}
}

func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}
	domainParts := strings.Split(parts[1], ".")
	return len(domainParts) >= 2 && domainParts[0] != "" && domainParts[len(domainParts)-1] != ""
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return domain.NewValidationError("password", "must be at least 8 characters long")
	}
	var hasUpper, hasLower, hasDigit bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}
	if !hasUpper {
		return domain.NewValidationError("password", "must contain at least one uppercase letter")
	}
	if !hasLower {
		return domain.NewValidationError("password", "must contain at least one lowercase letter")
	}
	if !hasDigit {
		return domain.NewValidationError("password", "must contain at least one digit")
	}
	return nil
}
