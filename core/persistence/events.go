package persistence

import (
	"context"
	"time"
)

// EventType identifies a collection lifecycle event.
type EventType string

const (
	EventInsertStart   EventType = "insert:start"
	EventInsertSuccess EventType = "insert:success"
	EventInsertFailed  EventType = "insert:failed"

	EventUpdateStart   EventType = "update:start"
	EventUpdateSuccess EventType = "update:success"
	EventUpdateFailed  EventType = "update:failed"

	EventDeleteStart   EventType = "delete:start"
	EventDeleteSuccess EventType = "delete:success"
	EventDeleteFailed  EventType = "delete:failed"

	EventTransactionOpen   EventType = "transaction:open"
	EventTransactionCommit EventType = "transaction:commit"
	EventTransactionAbort  EventType = "transaction:abort"
)

// Event describes a single collection operation for observers.
type Event struct {
	Type       EventType `json:"type"`
	Timestamp  int64     `json:"timestamp"` // Unix milliseconds
	Operation  string    `json:"operation"`
	Collection string    `json:"collection"`
	Input      any       `json:"input,omitempty"`
	Output     any       `json:"output,omitempty"`
	Error      *string   `json:"error,omitempty"`
	Duration   *int64    `json:"duration,omitempty"` // milliseconds
}

// EventCallback is invoked for every event of a subscribed type.
type EventCallback func(ctx context.Context, event Event) error

// SubscriptionInfo tracks a registered event subscription.
type SubscriptionInfo struct {
	Event       EventType
	Label       *string
	Unsubscribe func()
}

func createEvent(
	eventType EventType,
	operation string,
	collection string,
	input any,
	output any,
	err *string,
	startTime time.Time,
) Event {
	var duration *int64
	if !startTime.IsZero() {
		d := time.Since(startTime).Milliseconds()
		duration = &d
	}

	return Event{
		Type:       eventType,
		Timestamp:  time.Now().UnixMilli(),
		Operation:  operation,
		Collection: collection,
		Input:      input,
		Output:     output,
		Error:      err,
		Duration:   duration,
	}
}
