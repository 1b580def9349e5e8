package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bondexsafety/backoffice/internal/clock"
	"github.com/bondexsafety/backoffice/internal/identity/domain"
	"github.com/bondexsafety/backoffice/internal/identity/password"
	"github.com/bondexsafety/backoffice/internal/identity/token"
)

const (
	maxLoginAttempts = 5
	lockoutDuration  = 15 * time.Minute
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Repo   domain.Repository
	Tokens *token.Manager
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	repo   domain.Repository
	tokens *token.Manager
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("identity.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		repo:   p.Repo,
		tokens: p.Tokens,
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := s.clock.Now()
	if user.Locked(now) {
		return nil, domain.ErrAccountLocked
	}

	if !password.Verify(req.Password, user.PasswordHash) {
		user.LoginAttempts++
		if user.LoginAttempts >= maxLoginAttempts {
			until := now.Add(lockoutDuration)
			user.LockUntil = &until
			user.LoginAttempts = 0
			s.log.Warn("account locked after repeated failures",
				zap.Int64("user_id", user.ID),
			)
		}
		if err := s.repo.Update(ctx, s.db, user); err != nil {
			s.log.Warn("record failed login", zap.Error(err))
		}
		return nil, domain.ErrInvalidCredentials
	}

	if user.Status != domain.StatusActive {
		return nil, domain.ErrAccountInactive
	}

	user.LoginAttempts = 0
	user.LockUntil = nil
	user.LastLoginAt = &now
	if err := s.repo.Update(ctx, s.db, user); err != nil {
		s.log.Warn("record login", zap.Error(err))
	}

	signed, err := s.tokens.Issue(user.ID, string(user.Role), now)
	if err != nil {
		return nil, err
	}

	return &domain.LoginResponse{Token: signed, User: user}, nil
}

func (s *Service) Me(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.repo.Find(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID int64, req domain.ChangePasswordRequest) error {
	user, err := s.repo.Find(ctx, s.db, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}

	if !password.Verify(req.CurrentPassword, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	hash, err := password.Hash(req.NewPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	user.UpdatedAt = s.clock.Now()
	return s.repo.Update(ctx, s.db, user)
}

func (s *Service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	role := req.Role
	if role == "" {
		role = domain.RoleCustomer
	}
	if !role.Valid() {
		role = domain.RoleCustomer
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &domain.User{
		ID:           s.genID.Generate().Int64(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.StatusActive,
		Phone:        strings.TrimSpace(req.Phone),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, s.db, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context, req domain.ListUsersRequest) (*domain.ListUsersResponse, error) {
	page := req.Pagination.Normalize()

	filter := domain.UserFilter{
		Role:   domain.Role(req.Role),
		Status: domain.UserStatus(req.Status),
		Search: strings.TrimSpace(req.Search),
		Page:   page,
	}

	users, total, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	return &domain.ListUsersResponse{
		Users:    users,
		PageInfo: page.PageInfo(total),
	}, nil
}
