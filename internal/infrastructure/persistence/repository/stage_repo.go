package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/lawdesk/internal/application/port"
	"github.com/garyjia/lawdesk/internal/domain/entity"
	"github.com/garyjia/lawdesk/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/lawdesk/pkg/apperror"
)

const stageColumns = `id, display_order, name, approval_type, description, requirements, color, is_active, created_at, updated_at`

// StageRepository implements port.StageRepository
type StageRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewStageRepository creates a new stage repository
func NewStageRepository(db *sqlite.DB, logger *zap.Logger) port.StageRepository {
	return &StageRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a stage and assigns its ID
func (r *StageRepository) Create(ctx context.Context, stage *entity.Stage) error {
	query := `
		INSERT INTO stages (display_order, name, approval_type, description, requirements, color, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		stage.DisplayOrder,
		stage.Name,
		stage.ApprovalType,
		stage.Description,
		stage.Requirements,
		stage.Color,
		stage.IsActive,
		stage.CreatedAt.UTC(),
		stage.UpdatedAt.UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to create stage",
			zap.String("name", stage.Name),
			zap.Error(err))
		return fmt.Errorf("failed to create stage: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	stage.ID = id
	return nil
}

// GetByID retrieves a stage by its ID
func (r *StageRepository) GetByID(ctx context.Context, id int64) (*entity.Stage, error) {
	query := `SELECT ` + stageColumns + ` FROM stages WHERE id = ?`

	stage, err := scanStage(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("stage", id)
	}
	if err != nil {
		r.logger.Error("Failed to get stage by ID",
			zap.Int64("id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get stage: %w", err)
	}

	return stage, nil
}

// List returns the catalog ordered by display order, then id
func (r *StageRepository) List(ctx context.Context) ([]*entity.Stage, error) {
	query := `SELECT ` + stageColumns + ` FROM stages ORDER BY display_order, id`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list stages", zap.Error(err))
		return nil, fmt.Errorf("failed to list stages: %w", err)
	}
	defer rows.Close()

	stages := make([]*entity.Stage, 0)
	for rows.Next() {
		stage, err := scanStage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stage: %w", err)
		}
		stages = append(stages, stage)
	}

	return stages, rows.Err()
}

// Update overwrites the stage definition
func (r *StageRepository) Update(ctx context.Context, stage *entity.Stage) error {
	query := `
		UPDATE stages SET
			display_order = ?, name = ?, approval_type = ?,
			description = ?, requirements = ?, color = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		stage.DisplayOrder,
		stage.Name,
		stage.ApprovalType,
		stage.Description,
		stage.Requirements,
		stage.Color,
		stage.IsActive,
		stage.UpdatedAt.UTC(),
		stage.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update stage",
			zap.Int64("id", stage.ID),
			zap.Error(err))
		return fmt.Errorf("failed to update stage: %w", err)
	}

	return expectOneRow(result, "stage", stage.ID)
}

// Delete removes a stage
func (r *StageRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Executor(ctx).ExecContext(ctx, "DELETE FROM stages WHERE id = ?", id)
	if err != nil {
		r.logger.Error("Failed to delete stage",
			zap.Int64("id", id),
			zap.Error(err))
		return fmt.Errorf("failed to delete stage: %w", err)
	}

	return expectOneRow(result, "stage", id)
}

func scanStage(row scanner) (*entity.Stage, error) {
	var stage entity.Stage
	err := row.Scan(
		&stage.ID,
		&stage.DisplayOrder,
		&stage.Name,
		&stage.ApprovalType,
		&stage.Description,
		&stage.Requirements,
		&stage.Color,
		&stage.IsActive,
		&stage.CreatedAt,
		&stage.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &stage, nil
}

// Verify interface compliance
var _ port.StageRepository = (*StageRepository)(nil)
