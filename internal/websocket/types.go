package websocket

import "time"

// Event types broadcast to dashboard clients.
const (
	EventSignalNew      = "signal_new"
	EventSignalResolved = "signal_resolved"
	EventSystemStatus   = "system_status"
	EventConnection     = "connection"
)

// Event is one message broadcast to subscribed clients.
type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent(eventType string, data interface{}) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// HubConfig controls which event classes the hub forwards.
type HubConfig struct {
	BroadcastSignals     bool
	BroadcastResolutions bool
	BroadcastSystem      bool
	BroadcastConnections bool
}
