package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/garyjia/lawdesk/internal/application/port"
	"github.com/garyjia/lawdesk/internal/domain/entity"
	"github.com/garyjia/lawdesk/internal/domain/workflow"
	"github.com/garyjia/lawdesk/pkg/apperror"
	"github.com/garyjia/lawdesk/pkg/utils"
)

// CreateUserInput carries the fields of a new directory entry
type CreateUserInput struct {
	Name         string      `json:"name" yaml:"name"`
	Username     string      `json:"username" yaml:"username"`
	Email        string      `json:"email" yaml:"email"`
	Role         entity.Role `json:"role" yaml:"role"`
	IsMainLawyer bool        `json:"is_main_lawyer" yaml:"is_main_lawyer"`
	DepartmentID int64       `json:"department_id" yaml:"department_id"`
}

func (in *CreateUserInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Username = strings.TrimSpace(in.Username)
	if in.Name == "" || in.Username == "" {
		return apperror.Validation("name and username are required")
	}
	if err := utils.ValidateUsername(in.Username); err != nil {
		return apperror.Wrap(err, apperror.CodeValidation, "invalid username")
	}
	if in.Email != "" {
		if err := utils.ValidateEmail(in.Email); err != nil {
			return apperror.Wrap(err, apperror.CodeValidation, "invalid email")
		}
	}
	if !in.Role.IsValid() {
		return apperror.Validation("invalid role %q", in.Role)
	}
	if in.IsMainLawyer && in.Role != entity.RoleLawyer {
		return apperror.Validation("only lawyers can be flagged as main lawyer")
	}
	return nil
}

// UserService is the actor directory
type UserService interface {
	// ResolveActor maps a caller id to an actor; unknown ids are Unauthorized
	ResolveActor(ctx context.Context, userID int64) (entity.Actor, error)
	GetUser(ctx context.Context, id int64) (*entity.User, error)
	ListUsers(ctx context.Context, role entity.Role) ([]*entity.User, error)
	CreateUser(ctx context.Context, input CreateUserInput, actor entity.Actor) (*entity.User, error)
	// SeedUsers populates an empty directory and reports how many users were created
	SeedUsers(ctx context.Context, inputs []CreateUserInput) (int, error)
}

type userServiceImpl struct {
	userRepo  port.UserRepository
	txManager port.TransactionManager
	logger    Logger
	options
}

// NewUserService creates a new UserService
func NewUserService(userRepo port.UserRepository, txManager port.TransactionManager, logger Logger, opts ...Option) UserService {
	return &userServiceImpl{
		userRepo:  userRepo,
		txManager: txManager,
		logger:    logger,
		options:   defaultOptions(opts),
	}
}

// ResolveActor looks up the caller
func (s *userServiceImpl) ResolveActor(ctx context.Context, userID int64) (entity.Actor, error) {
	if userID <= 0 {
		return entity.Actor{}, apperror.New(apperror.CodeUnauthorized, "caller identity is missing")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return entity.Actor{}, apperror.Newf(apperror.CodeUnauthorized, "unknown user %d", userID)
		}
		return entity.Actor{}, fmt.Errorf("resolve actor: %w", err)
	}
	return user.Actor(), nil
}

// GetUser retrieves a user by ID
func (s *userServiceImpl) GetUser(ctx context.Context, id int64) (*entity.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// ListUsers lists users, optionally narrowed to a role
func (s *userServiceImpl) ListUsers(ctx context.Context, role entity.Role) ([]*entity.User, error) {
	if role != "" && !role.IsValid() {
		return nil, apperror.Validation("invalid role %q", role)
	}
	return s.userRepo.ListByRole(ctx, role)
}

// CreateUser adds a user; administrators only
func (s *userServiceImpl) CreateUser(ctx context.Context, input CreateUserInput, actor entity.Actor) (*entity.User, error) {
	if err := workflow.Authorize(actor, nil, workflow.RelationAdmin); err != nil {
		s.reject(s.logger, "create_user", err)
		return nil, err
	}
	user, err := s.create(ctx, input)
	if err != nil {
		s.reject(s.logger, "create_user", err)
		return nil, err
	}
	s.logger.Info("User created", "user_id", user.ID, "role", user.Role, "actor_id", actor.ID)
	return user, nil
}

// SeedUsers creates the initial directory in one transaction when it is empty
func (s *userServiceImpl) SeedUsers(ctx context.Context, inputs []CreateUserInput) (int, error) {
	created := 0
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.userRepo.ListByRole(txCtx, "")
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		if len(existing) > 0 {
			return nil
		}
		for _, input := range inputs {
			if _, err := s.create(txCtx, input); err != nil {
				return fmt.Errorf("seed user %q: %w", input.Username, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to seed users", "error", err)
		return 0, err
	}
	s.logger.Info("User directory seeded", "created", created)
	return created, nil
}

func (s *userServiceImpl) create(ctx context.Context, input CreateUserInput) (*entity.User, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	user := &entity.User{
		Name:         input.Name,
		Username:     input.Username,
		Email:        input.Email,
		Role:         input.Role,
		IsMainLawyer: input.IsMainLawyer,
		DepartmentID: input.DepartmentID,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
