// Package service holds the application services. They are the only components that
// combine domain rules with persistence, and every mutation they perform is atomic
// with its audit entry.
package service

import (
	"context"

	"github.com/garyjia/lawdesk/internal/application/dispatcher"
	"github.com/garyjia/lawdesk/internal/application/port"
	"github.com/garyjia/lawdesk/internal/domain/event"
	"github.com/garyjia/lawdesk/pkg/apperror"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Option configures optional collaborators shared by the services
type Option func(*options)

type options struct {
	clock    port.Clock
	recorder port.OperationRecorder
	events   dispatcher.Dispatcher
}

func defaultOptions(opts []Option) options {
	o := options{clock: port.SystemClock{}, recorder: port.NopRecorder{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock overrides the wall clock
func WithClock(clock port.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithRecorder reports rejected operations, typically to metrics
func WithRecorder(recorder port.OperationRecorder) Option {
	return func(o *options) { o.recorder = recorder }
}

// WithDispatcher publishes domain events after each committed mutation
func WithDispatcher(events dispatcher.Dispatcher) Option {
	return func(o *options) { o.events = events }
}

// publish hands a committed event to the dispatcher. Handler failures are logged only;
// the mutation has already committed.
func (o options) publish(ctx context.Context, logger Logger, evt *event.Event) {
	if o.events == nil || evt == nil {
		return
	}
	if err := o.events.Dispatch(ctx, evt); err != nil {
		logger.Error("Event handler failed after commit",
			"event_type", evt.Type,
			"event_id", evt.ID,
			"task_id", evt.TaskID,
			"error", err,
		)
	}
}

// reject records a refused operation. Domain refusals are expected traffic; anything
// else is logged as an error.
func (o options) reject(logger Logger, operation string, err error) {
	code := apperror.CodeOf(err)
	o.recorder.Rejected(operation, code)

	if code == apperror.CodeInternal {
		logger.Error("Operation failed", "operation", operation, "error", err)
		return
	}
	logger.Info("Operation rejected", "operation", operation, "code", code, "error", err.Error())
}
