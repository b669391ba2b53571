package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/lawdesk/internal/domain/entity"
	"github.com/garyjia/lawdesk/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/lawdesk/pkg/apperror"
)

func TestUpdateWithAudit_FailedAppendRollsBack(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := sqlite.NewDB(sqlDB, zap.NewNop())
	tasks := NewTaskRepository(db, zap.NewNop())
	activity := NewActivityRepository(db, zap.NewNop())

	boom := errors.New("disk I/O error")
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tasks SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO activity_logs").WillReturnError(boom)
	mock.ExpectRollback()

	err = db.WithTransaction(context.Background(), func(ctx context.Context) error {
		task := &entity.Task{ID: 1, Title: "Lease review", ApprovalStatus: entity.ApprovalPendingMainLawyer, UpdatedAt: fixedTime}
		if err := tasks.Update(ctx, task); err != nil {
			return err
		}
		return activity.Append(ctx, &entity.ActivityLog{
			TaskID:    1,
			Action:    entity.ActionApprovedAdmin,
			UserID:    1,
			CreatedAt: fixedTime,
		})
	})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_ZeroRowsIsNotFound(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := sqlite.NewDB(sqlDB, zap.NewNop())
	stages := NewStageRepository(db, zap.NewNop())

	mock.ExpectExec("UPDATE stages SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err = stages.Update(context.Background(), &entity.Stage{ID: 5, Name: "Gone"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
