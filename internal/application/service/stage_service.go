package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/garyjia/lawdesk/internal/application/port"
	"github.com/garyjia/lawdesk/internal/domain/entity"
	"github.com/garyjia/lawdesk/internal/domain/workflow"
	"github.com/garyjia/lawdesk/pkg/apperror"
	"github.com/garyjia/lawdesk/pkg/utils"
)

// StageInput carries the administrator-editable fields of a stage
type StageInput struct {
	Name         string              `json:"name"`
	DisplayOrder int                 `json:"display_order"`
	ApprovalType entity.ApprovalType `json:"approval_type"`
	Description  string              `json:"description"`
	Requirements string              `json:"requirements"`
	Color        string              `json:"color"`
	// IsActive defaults to true on create and is left unchanged on update when nil
	IsActive *bool `json:"is_active"`
}

func (in *StageInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return apperror.Validation("stage name is required")
	}
	if in.DisplayOrder <= 0 {
		return apperror.Validation("display_order must be positive")
	}
	if !in.ApprovalType.IsValid() {
		return apperror.Validation("invalid approval type %q", in.ApprovalType)
	}
	if in.Color != "" {
		if err := utils.ValidateColor(in.Color); err != nil {
			return apperror.Wrap(err, apperror.CodeValidation, "invalid color")
		}
	}
	return nil
}

// StageService maintains the stage catalog
type StageService interface {
	ListStages(ctx context.Context) ([]*entity.Stage, error)
	GetStage(ctx context.Context, id int64) (*entity.Stage, error)
	CreateStage(ctx context.Context, input StageInput, actor entity.Actor) (*entity.Stage, error)
	UpdateStage(ctx context.Context, id int64, input StageInput, actor entity.Actor) (*entity.Stage, error)
	DeleteStage(ctx context.Context, id int64, actor entity.Actor) error
	// SeedStages loads definitions into an empty catalog and reports how many were created
	SeedStages(ctx context.Context, inputs []StageInput) (int, error)
}

type stageServiceImpl struct {
	stageRepo port.StageRepository
	taskRepo  port.TaskRepository
	txManager port.TransactionManager
	logger    Logger
	options
}

// NewStageService creates a new StageService
func NewStageService(
	stageRepo port.StageRepository,
	taskRepo port.TaskRepository,
	txManager port.TransactionManager,
	logger Logger,
	opts ...Option,
) StageService {
	return &stageServiceImpl{
		stageRepo: stageRepo,
		taskRepo:  taskRepo,
		txManager: txManager,
		logger:    logger,
		options:   defaultOptions(opts),
	}
}

// ListStages returns the catalog in pipeline order
func (s *stageServiceImpl) ListStages(ctx context.Context) ([]*entity.Stage, error) {
	stages, err := s.stageRepo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list stages", "error", err)
		return nil, err
	}
	return workflow.NewCatalog(stages).Stages(), nil
}

// GetStage retrieves a stage by ID
func (s *stageServiceImpl) GetStage(ctx context.Context, id int64) (*entity.Stage, error) {
	return s.stageRepo.GetByID(ctx, id)
}

// CreateStage adds a stage to the catalog
func (s *stageServiceImpl) CreateStage(ctx context.Context, input StageInput, actor entity.Actor) (*entity.Stage, error) {
	if err := workflow.Authorize(actor, nil, workflow.RelationAdmin); err != nil {
		s.reject(s.logger, "create_stage", err)
		return nil, err
	}
	if err := input.validate(); err != nil {
		s.reject(s.logger, "create_stage", err)
		return nil, err
	}

	now := s.clock.Now()
	stage := &entity.Stage{CreatedAt: now}
	applyStageInput(stage, input, true)
	stage.UpdatedAt = now

	if err := s.stageRepo.Create(ctx, stage); err != nil {
		s.logger.Error("Failed to create stage", "error", err, "name", stage.Name)
		return nil, fmt.Errorf("create stage: %w", err)
	}

	s.logger.Info("Stage created", "stage_id", stage.ID, "name", stage.Name, "actor_id", actor.ID)
	return stage, nil
}

// UpdateStage replaces the editable fields of a stage
func (s *stageServiceImpl) UpdateStage(ctx context.Context, id int64, input StageInput, actor entity.Actor) (*entity.Stage, error) {
	if err := workflow.Authorize(actor, nil, workflow.RelationAdmin); err != nil {
		s.reject(s.logger, "update_stage", err)
		return nil, err
	}
	if err := input.validate(); err != nil {
		s.reject(s.logger, "update_stage", err)
		return nil, err
	}

	var stage *entity.Stage
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		stage, err = s.stageRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		applyStageInput(stage, input, false)
		stage.UpdatedAt = s.clock.Now()
		return s.stageRepo.Update(txCtx, stage)
	})
	if err != nil {
		s.reject(s.logger, "update_stage", err)
		return nil, err
	}

	s.logger.Info("Stage updated", "stage_id", id, "actor_id", actor.ID)
	return stage, nil
}

// DeleteStage removes a stage nobody sits on
func (s *stageServiceImpl) DeleteStage(ctx context.Context, id int64, actor entity.Actor) error {
	if err := workflow.Authorize(actor, nil, workflow.RelationAdmin); err != nil {
		s.reject(s.logger, "delete_stage", err)
		return err
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.stageRepo.GetByID(txCtx, id); err != nil {
			return err
		}
		count, err := s.taskRepo.CountByStage(txCtx, id)
		if err != nil {
			return fmt.Errorf("count tasks on stage: %w", err)
		}
		if count > 0 {
			return apperror.IllegalState("stage %d still holds %d task(s)", id, count).
				WithDetail("stage_id", id)
		}
		return s.stageRepo.Delete(txCtx, id)
	})
	if err != nil {
		s.reject(s.logger, "delete_stage", err)
		return err
	}

	s.logger.Info("Stage deleted", "stage_id", id, "actor_id", actor.ID)
	return nil
}

// SeedStages creates every definition in one transaction, only if the catalog is empty
func (s *stageServiceImpl) SeedStages(ctx context.Context, inputs []StageInput) (int, error) {
	for i := range inputs {
		if err := inputs[i].validate(); err != nil {
			return 0, fmt.Errorf("stage definition %d: %w", i+1, err)
		}
	}

	created := 0
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.stageRepo.List(txCtx)
		if err != nil {
			return fmt.Errorf("list stages: %w", err)
		}
		if len(existing) > 0 {
			return nil
		}

		now := s.clock.Now()
		for _, input := range inputs {
			stage := &entity.Stage{CreatedAt: now, UpdatedAt: now}
			applyStageInput(stage, input, true)
			if err := s.stageRepo.Create(txCtx, stage); err != nil {
				return fmt.Errorf("create stage %q: %w", stage.Name, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to seed stages", "error", err)
		return 0, err
	}

	s.logger.Info("Stage catalog seeded", "created", created)
	return created, nil
}

func applyStageInput(stage *entity.Stage, input StageInput, creating bool) {
	stage.Name = input.Name
	stage.DisplayOrder = input.DisplayOrder
	stage.ApprovalType = input.ApprovalType
	stage.Description = input.Description
	stage.Requirements = input.Requirements
	stage.Color = input.Color
	switch {
	case input.IsActive != nil:
		stage.IsActive = *input.IsActive
	case creating:
		stage.IsActive = true
	}
}
