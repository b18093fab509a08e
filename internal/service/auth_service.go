package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"planboard/internal/apperr"
	"planboard/internal/model"
	"planboard/internal/util"
	"planboard/pkg/rbac"
)

// ErrInvalidCredentials is returned for both unknown emails and wrong
// passwords so login failures stay indistinguishable.
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserStore is the user side of the entity store.
type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
}

type AuthService struct {
	users            UserStore
	jwtSecret        string
	adminInviteToken string
	logger           *zap.Logger
}

func NewAuthService(users UserStore, jwtSecret, adminInviteToken string, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:            users,
		jwtSecret:        jwtSecret,
		adminInviteToken: adminInviteToken,
		logger:           logger,
	}
}

// Register creates a new user. A matching invite token grants the admin
// role; everyone else becomes a member.
func (s *AuthService) Register(ctx context.Context, name, email, password, inviteToken string) (*model.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, apperr.Validationf("name, email and password are required")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Validationf("email already registered")
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	role := rbac.RoleMember
	if s.adminInviteToken != "" && inviteToken == s.adminInviteToken {
		role = rbac.RoleAdmin
	}

	u := &model.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("user_id", u.ID.String()),
		zap.String("role", u.Role),
	)
	return u, nil
}

// Login checks user credentials and returns a signed token with the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if !util.CheckPassword(password, u.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(u.ID, u.Role, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// GetUser returns a single user by id.
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.users.FindByID(ctx, id)
}

// ListUsers returns every registered user, for assignment pickers.
func (s *AuthService) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.users.List(ctx)
}
