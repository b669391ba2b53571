package memory

import (
	"context"
	"sort"
	"time"

	"github.com/garyjia/lawdesk/internal/domain/entity"
	"github.com/garyjia/lawdesk/pkg/apperror"
)

type taskRepository struct{ store *Store }

func (r *taskRepository) Create(ctx context.Context, task *entity.Task) error {
	return r.store.write(ctx, func(st *state) error {
		task.ID = r.store.taskSeq.Add(1)
		st.tasks[task.ID] = task.Clone()
		return nil
	})
}

func (r *taskRepository) GetByID(ctx context.Context, id int64) (*entity.Task, error) {
	var out *entity.Task
	err := r.store.read(ctx, func(st *state) error {
		t, ok := st.tasks[id]
		if !ok {
			return apperror.NotFound("task", id)
		}
		out = t.Clone()
		return nil
	})
	return out, err
}

func (r *taskRepository) List(ctx context.Context, filter entity.TaskFilter) ([]*entity.Task, error) {
	var out []*entity.Task
	err := r.store.read(ctx, func(st *state) error {
		for _, t := range st.tasks {
			if filter.Matches(t) {
				out = append(out, t.Clone())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// newest first, matching the SQL adapter
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return paginate(out, filter.Limit, filter.Offset), nil
}

func (r *taskRepository) Update(ctx context.Context, task *entity.Task) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.tasks[task.ID]; !ok {
			return apperror.NotFound("task", task.ID)
		}
		st.tasks[task.ID] = task.Clone()
		return nil
	})
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.tasks[id]; !ok {
			return apperror.NotFound("task", id)
		}
		delete(st.tasks, id)
		return nil
	})
}

func (r *taskRepository) CountByStage(ctx context.Context, stageID int64) (int, error) {
	count := 0
	err := r.store.read(ctx, func(st *state) error {
		for _, t := range st.tasks {
			if t.StageID == stageID {
				count++
			}
		}
		return nil
	})
	return count, err
}

type stageRepository struct{ store *Store }

func (r *stageRepository) Create(ctx context.Context, stage *entity.Stage) error {
	return r.store.write(ctx, func(st *state) error {
		stage.ID = r.store.stageSeq.Add(1)
		cp := *stage
		st.stages[stage.ID] = &cp
		return nil
	})
}

func (r *stageRepository) GetByID(ctx context.Context, id int64) (*entity.Stage, error) {
	var out *entity.Stage
	err := r.store.read(ctx, func(st *state) error {
		s, ok := st.stages[id]
		if !ok {
			return apperror.NotFound("stage", id)
		}
		cp := *s
		out = &cp
		return nil
	})
	return out, err
}

func (r *stageRepository) List(ctx context.Context) ([]*entity.Stage, error) {
	var out []*entity.Stage
	err := r.store.read(ctx, func(st *state) error {
		for _, s := range st.stages {
			cp := *s
			out = append(out, &cp)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r *stageRepository) Update(ctx context.Context, stage *entity.Stage) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.stages[stage.ID]; !ok {
			return apperror.NotFound("stage", stage.ID)
		}
		cp := *stage
		st.stages[stage.ID] = &cp
		return nil
	})
}

func (r *stageRepository) Delete(ctx context.Context, id int64) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.stages[id]; !ok {
			return apperror.NotFound("stage", id)
		}
		delete(st.stages, id)
		return nil
	})
}

type activityRepository struct{ store *Store }

func (r *activityRepository) Append(ctx context.Context, entry *entity.ActivityLog) error {
	return r.store.write(ctx, func(st *state) error {
		entry.ID = r.store.activitySeq.Add(1)
		cp := *entry
		st.activity = append(st.activity, &cp)
		return nil
	})
}

func (r *activityRepository) ListByTaskID(ctx context.Context, taskID int64) ([]*entity.ActivityLog, error) {
	var out []*entity.ActivityLog
	err := r.store.read(ctx, func(st *state) error {
		for _, e := range st.activity {
			if e.TaskID == taskID {
				cp := *e
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}

type userRepository struct{ store *Store }

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.store.write(ctx, func(st *state) error {
		for _, u := range st.users {
			if u.Username == user.Username {
				return apperror.Validation("username %q already taken", user.Username)
			}
		}
		user.ID = r.store.userSeq.Add(1)
		cp := *user
		st.users[user.ID] = &cp
		return nil
	})
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	var out *entity.User
	err := r.store.read(ctx, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return apperror.NotFound("user", id)
		}
		cp := *u
		out = &cp
		return nil
	})
	return out, err
}

func (r *userRepository) ListByRole(ctx context.Context, role entity.Role) ([]*entity.User, error) {
	var out []*entity.User
	err := r.store.read(ctx, func(st *state) error {
		for _, u := range st.users {
			if role == "" || u.Role == role {
				cp := *u
				out = append(out, &cp)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

type notificationRepository struct{ store *Store }

func (r *notificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	return r.store.write(ctx, func(st *state) error {
		n.ID = r.store.notificationSeq.Add(1)
		cp := *n
		st.notifications = append(st.notifications, &cp)
		return nil
	})
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*entity.Notification, error) {
	var out []*entity.Notification
	err := r.store.read(ctx, func(st *state) error {
		for i := len(st.notifications) - 1; i >= 0; i-- {
			n := st.notifications[i]
			if n.UserID != userID {
				continue
			}
			cp := *n
			out = append(out, &cp)
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, err
}

func (r *notificationRepository) MarkSent(ctx context.Context, id int64, sentAt time.Time) error {
	return r.store.write(ctx, func(st *state) error {
		for _, n := range st.notifications {
			if n.ID == id {
				n.Status = entity.NotificationStatusSent
				n.SentAt = &sentAt
				return nil
			}
		}
		return apperror.NotFound("notification", id)
	})
}

func paginate(tasks []*entity.Task, limit, offset int) []*entity.Task {
	if offset > 0 {
		if offset >= len(tasks) {
			return []*entity.Task{}
		}
		tasks = tasks[offset:]
	}
	if limit > 0 && limit < len(tasks) {
		tasks = tasks[:limit]
	}
	return tasks
}
