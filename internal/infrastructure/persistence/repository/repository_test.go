package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/lawdesk/internal/domain/entity"
	"github.com/garyjia/lawdesk/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/lawdesk/pkg/apperror"
	"github.com/garyjia/lawdesk/pkg/database"
)

var fixedTime = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

type repos struct {
	db            *sqlite.DB
	tasks         *TaskRepository
	stages        *StageRepository
	activity      *ActivityRepository
	users         *UserRepository
	notifications *NotificationRepository
}

func newRepos(t *testing.T) *repos {
	t.Helper()
	logger := zap.NewNop()

	conn, err := database.New(database.Config{Path: database.MemoryPath}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = database.NewMigrator(conn, logger).Run(database.Migrations())
	require.NoError(t, err)

	db := sqlite.NewDB(conn.DB, logger)
	return &repos{
		db:            db,
		tasks:         NewTaskRepository(db, logger).(*TaskRepository),
		stages:        NewStageRepository(db, logger).(*StageRepository),
		activity:      NewActivityRepository(db, logger).(*ActivityRepository),
		users:         NewUserRepository(db, logger).(*UserRepository),
		notifications: NewNotificationRepository(db, logger).(*NotificationRepository),
	}
}

// seed creates an admin, a main lawyer, an assignee and two stages
func (r *repos) seed(t *testing.T) (users []*entity.User, stages []*entity.Stage) {
	t.Helper()
	ctx := context.Background()
	users = []*entity.User{
		{Name: "Ada Root", Username: "ada", Role: entity.RoleAdmin, CreatedAt: fixedTime},
		{Name: "Mara Senior", Username: "mara", Role: entity.RoleLawyer, IsMainLawyer: true, CreatedAt: fixedTime},
		{Name: "Leo Junior", Username: "leo", Role: entity.RoleLawyer, DepartmentID: 3, CreatedAt: fixedTime},
	}
	for _, u := range users {
		require.NoError(t, r.users.Create(ctx, u))
	}
	stages = []*entity.Stage{
		{Name: "Intake", DisplayOrder: 1, ApprovalType: entity.ApprovalTypeAdminOnly, IsActive: true, CreatedAt: fixedTime, UpdatedAt: fixedTime},
		{Name: "Filing", DisplayOrder: 2, ApprovalType: entity.ApprovalTypeMultiple, IsActive: true, CreatedAt: fixedTime, UpdatedAt: fixedTime},
	}
	for _, s := range stages {
		require.NoError(t, r.stages.Create(ctx, s))
	}
	return users, stages
}

func newTask(users []*entity.User, stage *entity.Stage) *entity.Task {
	return &entity.Task{
		Title:          "Lease review",
		Priority:       entity.PriorityHigh,
		ClientID:       7,
		DepartmentID:   3,
		AssignedTo:     users[2].ID,
		MainLawyerID:   users[1].ID,
		CreatedBy:      users[0].ID,
		Status:         entity.TaskStatusPending,
		ApprovalStatus: entity.ApprovalPendingAdmin,
		StageID:        stage.ID,
		CreatedAt:      fixedTime,
		UpdatedAt:      fixedTime,
	}
}

func TestTaskRepository_RoundTrip(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	users, stages := r.seed(t)

	task := newTask(users, stages[0])
	require.NoError(t, r.tasks.Create(ctx, task))
	require.NotZero(t, task.ID)

	got, err := r.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "", got.TaskCode)
	assert.Equal(t, entity.PriorityHigh, got.Priority)
	assert.Equal(t, entity.ApprovalPendingAdmin, got.ApprovalStatus)
	assert.Nil(t, got.ApprovedByAdmin)
	assert.Nil(t, got.AdminApprovedAt)
	assert.Nil(t, got.DueDate)
	assert.True(t, got.CreatedAt.Equal(fixedTime))

	approvedAt := fixedTime.Add(time.Hour)
	got.TaskCode = entity.FormatTaskCode(2026, got.ID)
	got.ApprovalStatus = entity.ApprovalPendingMainLawyer
	got.ApprovedByAdmin = entity.Int64Ptr(users[0].ID)
	got.AdminApprovedAt = entity.TimePtr(approvedAt)
	got.MainLawyerAssignedBy = entity.Int64Ptr(users[0].ID)
	got.LastFollowUpNotes = "called client"
	got.UpdatedAt = approvedAt
	require.NoError(t, r.tasks.Update(ctx, got))

	reloaded, err := r.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "TSK-2026-001", reloaded.TaskCode)
	require.NotNil(t, reloaded.ApprovedByAdmin)
	assert.Equal(t, users[0].ID, *reloaded.ApprovedByAdmin)
	require.NotNil(t, reloaded.AdminApprovedAt)
	assert.True(t, reloaded.AdminApprovedAt.Equal(approvedAt))
	assert.Equal(t, "called client", reloaded.LastFollowUpNotes)
	assert.True(t, reloaded.UpdatedAt.Equal(approvedAt))
}

func TestTaskRepository_NotFound(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()

	_, err := r.tasks.GetByID(ctx, 42)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	err = r.tasks.Update(ctx, &entity.Task{ID: 42})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	err = r.tasks.Delete(ctx, 42)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestTaskRepository_ListFiltersAndPages(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	users, stages := r.seed(t)

	for i := 0; i < 5; i++ {
		task := newTask(users, stages[i%2])
		if i == 4 {
			task.ApprovalStatus = entity.ApprovalApproved
		}
		require.NoError(t, r.tasks.Create(ctx, task))
	}

	all, err := r.tasks.List(ctx, entity.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, int64(5), all[0].ID)
	assert.Equal(t, int64(1), all[4].ID)

	onSecond, err := r.tasks.List(ctx, entity.TaskFilter{StageID: stages[1].ID})
	require.NoError(t, err)
	assert.Len(t, onSecond, 2)

	approved, err := r.tasks.List(ctx, entity.TaskFilter{ApprovalStatus: entity.ApprovalApproved})
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, int64(5), approved[0].ID)

	page, err := r.tasks.List(ctx, entity.TaskFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(4), page[0].ID)
	assert.Equal(t, int64(3), page[1].ID)

	tail, err := r.tasks.List(ctx, entity.TaskFilter{Offset: 3})
	require.NoError(t, err)
	assert.Len(t, tail, 2)

	none, err := r.tasks.List(ctx, entity.TaskFilter{AssignedTo: 999})
	require.NoError(t, err)
	assert.Empty(t, none)

	count, err := r.tasks.CountByStage(ctx, stages[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestTaskRepository_DeleteKeepsActivity(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	users, stages := r.seed(t)

	task := newTask(users, stages[0])
	require.NoError(t, r.tasks.Create(ctx, task))
	require.NoError(t, r.activity.Append(ctx, &entity.ActivityLog{
		TaskID:    task.ID,
		Action:    entity.ActionCreated,
		UserID:    users[0].ID,
		CreatedAt: fixedTime,
	}))

	require.NoError(t, r.tasks.Delete(ctx, task.ID))

	_, err := r.tasks.GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	entries, err := r.activity.ListByTaskID(ctx, task.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestActivityRepository_DetailsAndOrder(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()

	require.NoError(t, r.activity.Append(ctx, &entity.ActivityLog{
		TaskID:    9,
		Action:    entity.ActionStageChanged,
		UserID:    1,
		Details:   map[string]interface{}{"from_stage": "Intake", "progress": 57},
		CreatedAt: fixedTime,
	}))
	require.NoError(t, r.activity.Append(ctx, &entity.ActivityLog{
		TaskID:    9,
		Action:    entity.ActionFollowUp,
		UserID:    2,
		CreatedAt: fixedTime.Add(time.Minute),
	}))

	entries, err := r.activity.ListByTaskID(ctx, 9)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, entity.ActionStageChanged, entries[0].Action)
	assert.Equal(t, "Intake", entries[0].Details["from_stage"])
	assert.EqualValues(t, 57, entries[0].Details["progress"])
	assert.Nil(t, entries[1].Details)
	assert.True(t, entries[1].CreatedAt.Equal(fixedTime.Add(time.Minute)))

	empty, err := r.activity.ListByTaskID(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStageRepository_CRUD(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()

	later := &entity.Stage{Name: "Closed", DisplayOrder: 9, ApprovalType: entity.ApprovalTypeAdminOnly, CreatedAt: fixedTime, UpdatedAt: fixedTime}
	first := &entity.Stage{Name: "Intake", DisplayOrder: 1, ApprovalType: entity.ApprovalTypeSingle, IsActive: true, Color: "#0af", CreatedAt: fixedTime, UpdatedAt: fixedTime}
	require.NoError(t, r.stages.Create(ctx, later))
	require.NoError(t, r.stages.Create(ctx, first))

	list, err := r.stages.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Intake", list[0].Name)
	assert.True(t, list[0].IsActive)
	assert.False(t, list[1].IsActive)

	first.Description = "New matters"
	first.IsActive = false
	require.NoError(t, r.stages.Update(ctx, first))

	got, err := r.stages.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "New matters", got.Description)
	assert.False(t, got.IsActive)
	assert.Equal(t, "#0af", got.Color)

	require.NoError(t, r.stages.Delete(ctx, later.ID))
	_, err = r.stages.GetByID(ctx, later.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	r.seed(t)

	err := r.users.Create(ctx, &entity.User{Name: "Other Ada", Username: "ada", Role: entity.RoleLawyer})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	lawyers, err := r.users.ListByRole(ctx, entity.RoleLawyer)
	require.NoError(t, err)
	require.Len(t, lawyers, 2)
	assert.True(t, lawyers[0].IsMainLawyer)
	assert.Equal(t, int64(3), lawyers[1].DepartmentID)

	everyone, err := r.users.ListByRole(ctx, "")
	require.NoError(t, err)
	assert.Len(t, everyone, 3)

	_, err = r.users.GetByID(ctx, 99)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestNotificationRepository_Outbox(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, r.notifications.Create(ctx, &entity.Notification{
			UserID:    4,
			TaskID:    int64(i + 1),
			EventType: "task.created",
			Message:   "New task",
			CreatedAt: fixedTime,
		}))
	}

	latest, err := r.notifications.ListByUser(ctx, 4, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, int64(3), latest[0].TaskID)
	assert.Equal(t, entity.NotificationStatusPending, latest[0].Status)
	assert.Nil(t, latest[0].SentAt)

	sentAt := fixedTime.Add(time.Minute)
	require.NoError(t, r.notifications.MarkSent(ctx, latest[0].ID, sentAt))

	all, err := r.notifications.ListByUser(ctx, 4, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, entity.NotificationStatusSent, all[0].Status)
	require.NotNil(t, all[0].SentAt)
	assert.True(t, all[0].SentAt.Equal(sentAt))

	err = r.notifications.MarkSent(ctx, 99, sentAt)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestTransaction_RollsBackAcrossRepositories(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	users, stages := r.seed(t)

	task := newTask(users, stages[0])
	require.NoError(t, r.tasks.Create(ctx, task))

	err := r.db.WithTransaction(ctx, func(ctx context.Context) error {
		changed, err := r.tasks.GetByID(ctx, task.ID)
		if err != nil {
			return err
		}
		changed.Title = "Changed"
		if err := r.tasks.Update(ctx, changed); err != nil {
			return err
		}
		// progress outside 0..100 violates the CHECK constraint
		changed.Progress = 250
		return r.tasks.Update(ctx, changed)
	})
	require.Error(t, err)

	got, err := r.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lease review", got.Title)
}
