package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/nexus-console/internal/events"
)

// ActivityService records devserver state changes: each event is logged and
// the most recent ones are kept for inspection.
type ActivityService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	capacity   int

	mu     sync.Mutex
	recent []events.Event
}

// NewActivityService creates the service. capacity bounds Recent.
func NewActivityService(dispatcher events.Dispatcher, logger *zap.Logger, capacity int) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if capacity <= 0 {
		capacity = 100
	}
	return &ActivityService{dispatcher: dispatcher, logger: logger, capacity: capacity}
}

// RegisterHandlers subscribes to events.
func (a *ActivityService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, t := range []events.EventType{
		events.EventSessionChanged,
		events.EventTicketStatusChanged,
		events.EventTicketAssigned,
		events.EventTaskStatusChanged,
		events.EventMessageSent,
		events.EventConversationClosed,
		events.EventStaffRoleChanged,
	} {
		a.dispatcher.Subscribe(t, a.handle)
	}
}

func (a *ActivityService) handle(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("subject", event.Subject),
		zap.String("actor_id", event.ActorID),
		zap.Any("payload", event.Payload))

	a.mu.Lock()
	defer a.mu.Unlock()
	a.recent = append(a.recent, event)
	if over := len(a.recent) - a.capacity; over > 0 {
		a.recent = append(a.recent[:0:0], a.recent[over:]...)
	}
	return nil
}

// Recent returns the retained events, oldest first.
func (a *ActivityService) Recent() []events.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]events.Event(nil), a.recent...)
}
