package dispatcher

import (
	"context"

	"github.com/garyjia/lawdesk/internal/domain/event"
)

// Handler reacts to a committed task mutation. Handlers must not write to the task itself.
type Handler func(ctx context.Context, evt *event.Event) error

// HandlerInfo contains handler metadata for debugging
type HandlerInfo struct {
	Name        string
	EventType   event.Type
	Handler     Handler
	Description string
}
