package events

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/vsinha/bomcost/pkg/domain/entities"
)

// InMemoryEventStore keeps every BOM's stream in memory for the life of the
// process
type InMemoryEventStore struct {
	mutex       sync.RWMutex
	streams     map[entities.BOMID][]Event
	all         []Event
	subscribers map[string][]EventHandler
	logger      *zap.Logger
}

var _ EventStore = (*InMemoryEventStore)(nil)

func NewInMemoryEventStore(logger *zap.Logger) *InMemoryEventStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventStore{
		streams:     make(map[entities.BOMID][]Event),
		subscribers: make(map[string][]EventHandler),
		logger:      logger,
	}
}

// AppendEvent versions the event on its BOM's stream and then runs every
// subscribed handler in subscription order. The first handler error stops
// dispatch and is returned; the event stays recorded.
func (s *InMemoryEventStore) AppendEvent(ctx context.Context, event Event) error {
	bomID := event.BOMID()
	if bomID == "" {
		return fmt.Errorf("event %s has no bom id", event.Type())
	}

	s.mutex.Lock()
	record := Record{
		EventType:    event.Type(),
		Stream:       bomID,
		EventData:    event.Data(),
		EventTime:    event.Timestamp(),
		EventVersion: len(s.streams[bomID]) + 1,
	}
	s.streams[bomID] = append(s.streams[bomID], record)
	s.all = append(s.all, record)
	handlers := append([]EventHandler(nil), s.subscribers[record.EventType]...)
	s.mutex.Unlock()

	s.logger.Debug("event appended",
		zap.String("type", record.EventType),
		zap.String("bom_id", string(bomID)),
		zap.Int("version", record.EventVersion),
		zap.Int("handlers", len(handlers)),
	)

	for _, handler := range handlers {
		if !handler.CanHandle(record.EventType) {
			continue
		}
		if err := handler.Handle(ctx, record); err != nil {
			return fmt.Errorf("failed to handle event %s on bom %s: %w", record.EventType, bomID, err)
		}
	}
	return nil
}

func (s *InMemoryEventStore) History(bomID entities.BOMID, fromVersion int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	stream := s.streams[bomID]
	if fromVersion < 1 {
		fromVersion = 1
	}
	if fromVersion > len(stream) {
		return []Event{}, nil
	}
	return append([]Event(nil), stream[fromVersion-1:]...), nil
}

func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if fromPosition < 0 {
		fromPosition = 0
	}
	if fromPosition >= len(s.all) {
		return []Event{}, nil
	}
	return append([]Event(nil), s.all[fromPosition:]...), nil
}

func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) error {
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, eventType := range eventTypes {
		s.subscribers[eventType] = append(s.subscribers[eventType], handler)
	}
	return nil
}
