// Package auth implements first-run administrator setup, login and the
// account management rules enforced on top of the user store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"deskgate/crypto"
	"deskgate/db"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAlreadyInitialized = errors.New("administrator account already exists")
	ErrForbidden          = errors.New("administrator role required")
)

const usersTable = "users"

// unknownUserSalt and unknownUserKey stand in for a stored credential when
// the username does not exist, so both paths pay for a key derivation.
var (
	unknownUserSalt = []byte("deskgate-nouser!")
	unknownUserKey  = make([]byte, 32)
)

var verifyPassword = crypto.VerifyPassword

// Session is an authenticated user for the lifetime of the window.
type Session struct {
	ID        uuid.UUID
	User      db.User
	StartedAt time.Time
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.User.Role == db.RoleAdmin
}

type Service struct {
	db                *db.DB
	params            crypto.Argon2Params
	minPasswordLength int
	logger            *zap.Logger
	now               func() time.Time
}

type Option func(*Service)

func WithParams(params crypto.Argon2Params) Option {
	return func(s *Service) { s.params = params }
}

func WithMinPasswordLength(n int) Option {
	return func(s *Service) { s.minPasswordLength = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(conn *db.DB, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		db:                conn,
		params:            crypto.DefaultParams,
		minPasswordLength: 12,
		logger:            logger,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) MinPasswordLength() int { return s.minPasswordLength }

// SetupAdmin creates the first administrator. It is refused once any user
// exists.
func (s *Service) SetupAdmin(ctx context.Context, username, password, confirm string) (*db.User, error) {
	empty, err := s.db.IsEmpty(ctx, usersTable)
	if err != nil {
		return nil, fmt.Errorf("check users: %w", err)
	}
	if !empty {
		return nil, ErrAlreadyInitialized
	}

	user, err := s.createUser(ctx, username, password, confirm, db.RoleAdmin)
	if err != nil {
		return nil, err
	}
	s.logger.Info("administrator created", zap.String("username", user.Username), zap.Stringer("public_id", user.PublicID))
	return user, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.db.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			verifyPassword(password, unknownUserSalt, unknownUserKey, s.params)
			s.logger.Warn("login for unknown user", zap.String("username", username))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	valid, err := verifyPassword(password, user.Salt, user.PasswordHash, s.params)
	if err != nil || !valid {
		s.logger.Warn("login rejected", zap.String("username", user.Username))
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.db.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	user.LastLoginAt = &now

	session := &Session{ID: uuid.New(), User: *user, StartedAt: now}
	s.logger.Info("user logged in",
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
		zap.Stringer("session", session.ID),
	)
	return session, nil
}

func (s *Service) AddUser(ctx context.Context, session *Session, username, password, confirm string, role db.Role) (*db.User, error) {
	if !session.IsAdmin() {
		return nil, ErrForbidden
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	user, err := s.createUser(ctx, username, password, confirm, role)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user added",
		zap.String("username", user.Username),
		zap.String("role", string(role)),
		zap.String("by", session.User.Username),
	)
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context, session *Session) ([]db.User, error) {
	if !session.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.db.ListUsers(ctx)
}

// RemoveUser deletes username. Administrators cannot remove themselves.
func (s *Service) RemoveUser(ctx context.Context, session *Session, username string) error {
	if !session.IsAdmin() {
		return ErrForbidden
	}

	user, err := s.db.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if user.ID == session.User.ID {
		return fmt.Errorf("%w: cannot remove the signed-in account", ErrInvalidInput)
	}

	if err := s.db.DeleteUser(ctx, user.ID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.logger.Info("user removed", zap.String("username", user.Username), zap.String("by", session.User.Username))
	return nil
}

func (s *Service) ChangePassword(ctx context.Context, session *Session, current, next, confirm string) error {
	if session == nil {
		return ErrInvalidCredentials
	}

	user, err := s.db.GetUserByUsername(ctx, session.User.Username)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	valid, err := verifyPassword(current, user.Salt, user.PasswordHash, s.params)
	if err != nil || !valid {
		return fmt.Errorf("%w: current password is incorrect", ErrInvalidCredentials)
	}
	if err := s.validatePassword(next, confirm); err != nil {
		return err
	}

	hash, salt, err := crypto.HashPassword(next, s.params)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.UpdatePassword(ctx, user.ID, hash, salt); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	s.logger.Info("password changed", zap.String("username", user.Username))
	return nil
}

func (s *Service) createUser(ctx context.Context, username, password, confirm string, role db.Role) (*db.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if err := s.validatePassword(password, confirm); err != nil {
		return nil, err
	}

	hash, salt, err := crypto.HashPassword(password, s.params)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &db.User{
		Username:     username,
		PasswordHash: hash,
		Salt:         salt,
		Role:         role,
	}
	if err := s.db.CreateUser(ctx, user); err != nil {
		if errors.Is(err, db.ErrDuplicateUsername) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *Service) validatePassword(password, confirm string) error {
	if password != confirm {
		return fmt.Errorf("%w: passwords don't match", ErrInvalidInput)
	}
	if len(password) < s.minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, s.minPasswordLength)
	}
	return nil
}
