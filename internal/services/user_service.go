// Package services contains the business logic for Salak.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neuralarc-ai/salak/internal/crypto"
	"github.com/neuralarc-ai/salak/internal/database/db"
	"github.com/neuralarc-ai/salak/internal/identity"
	"github.com/neuralarc-ai/salak/internal/logging"
)

// Errors
var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// uniqueViolation is the PostgreSQL error code for a unique constraint
// conflict.
const uniqueViolation = "23505"

// UserService manages user profiles and local credentials. It doubles as the
// profile store behind the auth resolver.
type UserService struct {
	queries *db.Queries
	pool    *pgxpool.Pool
}

// NewUserService creates a new UserService.
func NewUserService(pool *pgxpool.Pool) *UserService {
	return &UserService{
		queries: db.New(pool),
		pool:    pool,
	}
}

func dbUserToAuthenticated(u db.User) *identity.AuthenticatedUser {
	return &identity.AuthenticatedUser{
		ID:    u.ID.String(),
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
}

// FindByID implements identity.ProfileStore.
func (s *UserService) FindByID(ctx context.Context, subjectID string) (*identity.AuthenticatedUser, error) {
	id, err := uuid.Parse(subjectID)
	if err != nil {
		return nil, fmt.Errorf("invalid subject id: %w", err)
	}

	user, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return dbUserToAuthenticated(user), nil
}

// Insert implements identity.ProfileStore. A unique-constraint conflict maps
// to identity.ErrProfileExists so the resolver can recover from a creation
// race.
func (s *UserService) Insert(ctx context.Context, user *identity.AuthenticatedUser) (*identity.AuthenticatedUser, error) {
	id, err := uuid.Parse(user.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid subject id: %w", err)
	}

	created, err := s.queries.CreateUser(ctx, db.CreateUserParams{
		ID:    id,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, identity.ErrProfileExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return dbUserToAuthenticated(created), nil
}

// RegisterParams are the inputs for local registration.
type RegisterParams struct {
	Email    string
	Name     string
	Password string
	Role     string
}

// Register creates a local account with an Argon2id password hash.
// Role is forced to the ordinary user role unless explicitly set to admin by
// a trusted caller (the CLI, never the HTTP handler).
func (s *UserService) Register(ctx context.Context, params RegisterParams) (*identity.AuthenticatedUser, error) {
	log := logging.Logger(ctx)

	hash, err := crypto.HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := identity.RoleUser
	if params.Role == identity.RoleAdmin {
		role = identity.RoleAdmin
	}

	user, err := s.queries.CreateUser(ctx, db.CreateUserParams{
		Email:        params.Email,
		Name:         params.Name,
		PasswordHash: &hash,
		Role:         role,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info("user_registered", "user_id", user.ID, "role", user.Role)
	return dbUserToAuthenticated(user), nil
}

// UpdateProfile changes a user's display name and returns the updated
// profile. Email and role are immutable through this path.
func (s *UserService) UpdateProfile(ctx context.Context, subjectID, name string) (*identity.AuthenticatedUser, error) {
	id, err := uuid.Parse(subjectID)
	if err != nil {
		return nil, fmt.Errorf("invalid subject id: %w", err)
	}

	user, err := s.queries.UpdateUserProfile(ctx, db.UpdateUserProfileParams{
		ID:   id,
		Name: name,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	logging.Logger(ctx).Info("profile_updated", "user_id", user.ID)
	return dbUserToAuthenticated(user), nil
}

// VerifyCredentials checks a local email/password pair. It returns
// ErrInvalidCredentials for both unknown accounts and wrong passwords so the
// two are indistinguishable to callers.
func (s *UserService) VerifyCredentials(ctx context.Context, email, password string) (*identity.AuthenticatedUser, error) {
	user, err := s.queries.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.PasswordHash == nil {
		// Hosted-provider account; local login is not available for it.
		return nil, ErrInvalidCredentials
	}

	if !crypto.VerifyPassword(password, *user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return dbUserToAuthenticated(user), nil
}

// Count reports the total number of user rows, used by the metrics
// collector.
func (s *UserService) Count(ctx context.Context) (int64, error) {
	return s.queries.CountUsers(ctx)
}
