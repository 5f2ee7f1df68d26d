package events

import (
	"context"
	"time"

	"github.com/vsinha/bomcost/pkg/domain/entities"
)

// Event is one change to a BOM. Every BOM has its own stream, and versions
// count from 1 within it.
type Event interface {
	Type() string
	BOMID() entities.BOMID
	Data() interface{}
	Timestamp() time.Time
	Version() int
}

// EventHandler reacts to appended events. Handlers run synchronously inside
// AppendEvent, so a handler error is returned to whoever appended the event.
type EventHandler interface {
	Handle(ctx context.Context, event Event) error
	CanHandle(eventType string) bool
}

type EventStore interface {
	// AppendEvent records the event on its BOM's stream and dispatches it
	AppendEvent(ctx context.Context, event Event) error
	// History returns a BOM's events from fromVersion on, oldest first
	History(bomID entities.BOMID, fromVersion int) ([]Event, error)
	// ReadAllEvents returns every event from a global position on
	ReadAllEvents(fromPosition int) ([]Event, error)
	Subscribe(eventTypes []string, handler EventHandler) error
}

// Record is the stored form of an event
type Record struct {
	EventType    string         `json:"type"`
	Stream       entities.BOMID `json:"bom_id"`
	EventData    interface{}    `json:"data"`
	EventTime    time.Time      `json:"at"`
	EventVersion int            `json:"version"`
}

func (r Record) Type() string          { return r.EventType }
func (r Record) BOMID() entities.BOMID { return r.Stream }
func (r Record) Data() interface{}     { return r.EventData }
func (r Record) Timestamp() time.Time  { return r.EventTime }
func (r Record) Version() int          { return r.EventVersion }

// NewEvent builds an unversioned event; the store assigns the version
func NewEvent(eventType string, bomID entities.BOMID, data interface{}, at time.Time) Event {
	return Record{
		EventType: eventType,
		Stream:    bomID,
		EventData: data,
		EventTime: at,
	}
}

// LastOfType returns the newest event of eventType in history
func LastOfType(history []Event, eventType string) (Event, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Type() == eventType {
			return history[i], true
		}
	}
	return nil, false
}
