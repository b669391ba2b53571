package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/lawdesk/internal/domain/entity"
	"github.com/garyjia/lawdesk/pkg/apperror"
)

func TestStageService_CreateAndList(t *testing.T) {
	f := newFixtureWith(t, fixtureConfig{noStages: true})
	ctx := context.Background()

	_, err := f.stages.CreateStage(ctx, StageInput{Name: "Review", DisplayOrder: 2, ApprovalType: entity.ApprovalTypeSingle}, f.admin)
	require.NoError(t, err)
	intake, err := f.stages.CreateStage(ctx, StageInput{Name: "Intake", DisplayOrder: 1, ApprovalType: entity.ApprovalTypeAdminOnly}, f.admin)
	require.NoError(t, err)
	assert.True(t, intake.IsActive)

	stages, err := f.stages.ListStages(ctx)
	require.NoError(t, err)
	require.Len(t, stages, 2)
	assert.Equal(t, "Intake", stages[0].Name)

	got, err := f.stages.GetStage(ctx, intake.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ApprovalTypeAdminOnly, got.ApprovalType)
}

func TestStageService_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.stages.CreateStage(ctx, StageInput{Name: "X", DisplayOrder: 9, ApprovalType: entity.ApprovalTypeSingle}, f.head)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.stages.CreateStage(ctx, StageInput{Name: "X", DisplayOrder: 9, ApprovalType: "unanimous"}, f.admin)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.stages.CreateStage(ctx, StageInput{Name: "", DisplayOrder: 9, ApprovalType: entity.ApprovalTypeSingle}, f.admin)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.stages.UpdateStage(ctx, 999, StageInput{Name: "X", DisplayOrder: 1, ApprovalType: entity.ApprovalTypeSingle}, f.admin)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestStageService_UpdateKeepsActiveFlag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	updated, err := f.stages.UpdateStage(ctx, f.stageIDs[1], StageInput{
		Name: "Legal research", DisplayOrder: 2, ApprovalType: entity.ApprovalTypeMultiple, Color: "#aa0000",
	}, f.admin)
	require.NoError(t, err)
	assert.Equal(t, "Legal research", updated.Name)
	assert.Equal(t, entity.ApprovalTypeMultiple, updated.ApprovalType)
	assert.True(t, updated.IsActive)
	assert.Equal(t, testNow, updated.UpdatedAt)
}

func TestStageService_DeleteRejectsOccupiedStage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.createTask(t)

	err := f.stages.DeleteStage(ctx, task.StageID, f.admin)
	assert.ErrorIs(t, err, apperror.ErrIllegalState)

	require.NoError(t, f.stages.DeleteStage(ctx, f.stageIDs[4], f.admin))
	_, err = f.stages.GetStage(ctx, f.stageIDs[4])
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	assert.ErrorIs(t, f.stages.DeleteStage(ctx, f.stageIDs[2], f.lawyer), apperror.ErrForbidden)
	assert.ErrorIs(t, f.stages.DeleteStage(ctx, 999, f.admin), apperror.ErrNotFound)
}

func TestStageService_SeedOnlyWhenEmpty(t *testing.T) {
	f := newFixtureWith(t, fixtureConfig{noStages: true})
	ctx := context.Background()

	defs := []StageInput{
		{Name: "Intake", DisplayOrder: 1, ApprovalType: entity.ApprovalTypeAdminOnly},
		{Name: "Work", DisplayOrder: 2, ApprovalType: entity.ApprovalTypeSingle},
	}
	created, err := f.stages.SeedStages(ctx, defs)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = f.stages.SeedStages(ctx, defs)
	require.NoError(t, err)
	assert.Zero(t, created)

	_, err = f.stages.SeedStages(ctx, []StageInput{{Name: "Bad", DisplayOrder: 0, ApprovalType: entity.ApprovalTypeSingle}})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
