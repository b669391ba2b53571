package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/garyjia/lawdesk/internal/application/dispatcher"
	"github.com/garyjia/lawdesk/internal/application/port"
	"github.com/garyjia/lawdesk/internal/domain/entity"
	"github.com/garyjia/lawdesk/internal/infrastructure/persistence/memory"
	"github.com/garyjia/lawdesk/pkg/apperror"
)

var testNow = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type recordingRecorder struct {
	mu       sync.Mutex
	rejected map[string][]apperror.Code
}

func (r *recordingRecorder) Rejected(operation string, code apperror.Code) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rejected == nil {
		r.rejected = map[string][]apperror.Code{}
	}
	r.rejected[operation] = append(r.rejected[operation], code)
}

func (r *recordingRecorder) codes(operation string) []apperror.Code {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]apperror.Code(nil), r.rejected[operation]...)
}

// failingActivityRepo refuses to append one action, to exercise rollback
type failingActivityRepo struct {
	port.ActivityRepository
	failOn entity.Action
}

func (r *failingActivityRepo) Append(ctx context.Context, entry *entity.ActivityLog) error {
	if entry.Action == r.failOn {
		return errors.New("audit log unavailable")
	}
	return r.ActivityRepository.Append(ctx, entry)
}

type fixture struct {
	store         *memory.Store
	svc           WorkflowService
	stages        StageService
	users         UserService
	notifications NotificationService
	clock         *fakeClock
	recorder      *recordingRecorder

	admin      entity.Actor
	head       entity.Actor
	mainLawyer entity.Actor
	lawyer     entity.Actor
	admin2     entity.Actor
	assistant  entity.Actor

	stageIDs []int64
}

type fixtureConfig struct {
	cfg      WorkflowConfig
	activity func(port.ActivityRepository) port.ActivityRepository
	noStages bool
	users    []*entity.User
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, fixtureConfig{})
}

func newFixtureWith(t *testing.T, fc fixtureConfig) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	f := &fixture{
		store:    store,
		clock:    &fakeClock{now: testNow},
		recorder: &recordingRecorder{},
	}

	users := fc.users
	if users == nil {
		users = []*entity.User{
			{Name: "Ada Root", Username: "ada", Role: entity.RoleAdmin},
			{Name: "Hugo Head", Username: "hugo", Role: entity.RoleDepartmentHead, DepartmentID: 3},
			{Name: "Mara Senior", Username: "mara", Role: entity.RoleLawyer, IsMainLawyer: true},
			{Name: "Leo Junior", Username: "leo", Role: entity.RoleLawyer},
			{Name: "Bea Admin", Username: "bea", Role: entity.RoleAdmin},
			{Name: "Sam Assistant", Username: "sam", Role: entity.RoleAssistant},
		}
	}
	for _, u := range users {
		require.NoError(t, store.Users().Create(ctx, u))
	}
	if fc.users == nil {
		f.admin = users[0].Actor()
		f.head = users[1].Actor()
		f.mainLawyer = users[2].Actor()
		f.lawyer = users[3].Actor()
		f.admin2 = users[4].Actor()
		f.assistant = users[5].Actor()
	}

	if !fc.noStages {
		types := []entity.ApprovalType{
			entity.ApprovalTypeAdminOnly,
			entity.ApprovalTypeSingle,
			entity.ApprovalTypeSingle,
			entity.ApprovalTypeMultiple,
			entity.ApprovalTypeSingle,
			entity.ApprovalTypeMultiple,
			entity.ApprovalTypeAdminOnly,
		}
		names := []string{"Intake", "Research", "Drafting", "Partner review", "Client review", "Filing", "Closed"}
		for i, typ := range types {
			st := &entity.Stage{Name: names[i], DisplayOrder: i + 1, ApprovalType: typ, IsActive: true}
			require.NoError(t, store.Stages().Create(ctx, st))
			f.stageIDs = append(f.stageIDs, st.ID)
		}
	}

	activity := store.Activity()
	if fc.activity != nil {
		activity = fc.activity(activity)
	}

	events := dispatcher.NewDispatcher()
	t.Cleanup(func() { _ = events.Close() })

	opts := []Option{WithClock(f.clock), WithRecorder(f.recorder), WithDispatcher(events)}

	f.notifications = NewNotificationService(store.Notifications(), nopLogger{}, opts...)
	f.notifications.Register(events)

	f.svc = NewWorkflowService(store.Tasks(), store.Stages(), activity, store.Users(), store, fc.cfg, nopLogger{}, opts...)
	f.stages = NewStageService(store.Stages(), store.Tasks(), store, nopLogger{}, opts...)
	f.users = NewUserService(store.Users(), store, nopLogger{}, opts...)
	return f
}

func (f *fixture) createTask(t *testing.T) *entity.Task {
	t.Helper()
	task, err := f.svc.CreateTask(context.Background(), CreateTaskInput{
		Title:        "Lease review for Acme",
		Priority:     entity.PriorityHigh,
		ClientID:     7,
		DepartmentID: 3,
		AssignedTo:   f.lawyer.ID,
	}, f.head)
	require.NoError(t, err)
	return task
}

func (f *fixture) approveAll(t *testing.T, id int64) *entity.Task {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.ApproveAdmin(ctx, id, f.admin)
	require.NoError(t, err)
	_, err = f.svc.ApproveMainLawyer(ctx, id, f.mainLawyer)
	require.NoError(t, err)
	task, err := f.svc.ApproveAssignedLawyer(ctx, id, f.lawyer)
	require.NoError(t, err)
	return task
}

func (f *fixture) activity(t *testing.T, id int64) []*entity.ActivityLog {
	t.Helper()
	entries, err := f.store.Activity().ListByTaskID(context.Background(), id)
	require.NoError(t, err)
	return entries
}

func actions(entries []*entity.ActivityLog) []entity.Action {
	out := make([]entity.Action, len(entries))
	for i, e := range entries {
		out[i] = e.Action
	}
	return out
}
