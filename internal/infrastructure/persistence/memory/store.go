// Package memory implements every persistence port over process memory.
// Transactions are serialized and copy-on-write: fn works on a private snapshot that
// replaces the committed state only when fn returns nil.
package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/garyjia/lawdesk/internal/application/port"
	"github.com/garyjia/lawdesk/internal/domain/entity"
)

type txKey struct{}

type state struct {
	tasks         map[int64]*entity.Task
	stages        map[int64]*entity.Stage
	activity      []*entity.ActivityLog
	users         map[int64]*entity.User
	notifications []*entity.Notification
}

func newState() *state {
	return &state{
		tasks:  make(map[int64]*entity.Task),
		stages: make(map[int64]*entity.Stage),
		users:  make(map[int64]*entity.User),
	}
}

func (s *state) clone() *state {
	c := &state{
		tasks:         make(map[int64]*entity.Task, len(s.tasks)),
		stages:        make(map[int64]*entity.Stage, len(s.stages)),
		activity:      append([]*entity.ActivityLog(nil), s.activity...),
		users:         make(map[int64]*entity.User, len(s.users)),
		notifications: make([]*entity.Notification, len(s.notifications)),
	}
	for id, t := range s.tasks {
		c.tasks[id] = t.Clone()
	}
	for id, st := range s.stages {
		cp := *st
		c.stages[id] = &cp
	}
	for id, u := range s.users {
		c.users[id] = u
	}
	for i, n := range s.notifications {
		cp := *n
		c.notifications[i] = &cp
	}
	return c
}

// Store holds committed state and the id sequences
type Store struct {
	mu        sync.Mutex
	committed *state

	taskSeq         atomic.Int64
	stageSeq        atomic.Int64
	activitySeq     atomic.Int64
	userSeq         atomic.Int64
	notificationSeq atomic.Int64
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{committed: newState()}
}

// WithTransaction runs fn against a snapshot and commits it if fn succeeds.
// A nested call joins the outer transaction.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*state); ok {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.committed.clone()
	if err := fn(context.WithValue(ctx, txKey{}, snapshot)); err != nil {
		return err
	}
	s.committed = snapshot
	return nil
}

// Tasks returns the task repository view of the store
func (s *Store) Tasks() port.TaskRepository { return &taskRepository{store: s} }

// Stages returns the stage repository view of the store
func (s *Store) Stages() port.StageRepository { return &stageRepository{store: s} }

// Activity returns the audit log view of the store
func (s *Store) Activity() port.ActivityRepository { return &activityRepository{store: s} }

// Users returns the user directory view of the store
func (s *Store) Users() port.UserRepository { return &userRepository{store: s} }

// Notifications returns the outbox view of the store
func (s *Store) Notifications() port.NotificationRepository {
	return &notificationRepository{store: s}
}

func (s *Store) read(ctx context.Context, fn func(st *state) error) error {
	if st, ok := ctx.Value(txKey{}).(*state); ok {
		return fn(st)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.committed)
}

// write outside a transaction behaves as a single-statement transaction
func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	if st, ok := ctx.Value(txKey{}).(*state); ok {
		return fn(st)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.committed.clone()
	if err := fn(next); err != nil {
		return err
	}
	s.committed = next
	return nil
}
