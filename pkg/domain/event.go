package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Direction tells whether an observed communication entered or left the service.
type Direction string

const (
	DirectionInbound  Direction = "INBOUND"
	DirectionOutbound Direction = "OUTBOUND"
)

// ParseDirection maps a case-insensitive direction name onto a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(DirectionInbound):
		return DirectionInbound, nil
	case string(DirectionOutbound):
		return DirectionOutbound, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDirection, s)
	}
}

// ConnectionEvent records one observed communication between services.
type ConnectionEvent struct {
	ID                   int64
	ServiceName          string
	Direction            Direction
	CommunicationType    string
	ConnectionIdentifier string
	ObservedAt           time.Time
}

// NewConnectionEvent returns an event stamped with the current time.
func NewConnectionEvent(serviceName string, direction Direction, communicationType, connectionIdentifier string) ConnectionEvent {
	return ConnectionEvent{
		ServiceName:          serviceName,
		Direction:            direction,
		CommunicationType:    communicationType,
		ConnectionIdentifier: connectionIdentifier,
		ObservedAt:           time.Now(),
	}
}

// connectionEventJSON is the wire form expected by the elucidation server.
// observedAt travels as epoch milliseconds.
type connectionEventJSON struct {
	ID                   int64     `json:"id,omitempty"`
	ServiceName          string    `json:"serviceName"`
	Direction            Direction `json:"eventDirection"`
	CommunicationType    string    `json:"communicationType"`
	ConnectionIdentifier string    `json:"connectionIdentifier"`
	ObservedAt           int64     `json:"observedAt,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (e ConnectionEvent) MarshalJSON() ([]byte, error) {
	wire := connectionEventJSON{
		ID:                   e.ID,
		ServiceName:          e.ServiceName,
		Direction:            e.Direction,
		CommunicationType:    e.CommunicationType,
		ConnectionIdentifier: e.ConnectionIdentifier,
	}
	if !e.ObservedAt.IsZero() {
		wire.ObservedAt = e.ObservedAt.UnixMilli()
	}
	return json.Marshal(wire)
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *ConnectionEvent) UnmarshalJSON(data []byte) error {
	var wire connectionEventJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*e = ConnectionEvent{
		ID:                   wire.ID,
		ServiceName:          wire.ServiceName,
		Direction:            wire.Direction,
		CommunicationType:    wire.CommunicationType,
		ConnectionIdentifier: wire.ConnectionIdentifier,
	}
	if wire.ObservedAt != 0 {
		e.ObservedAt = time.UnixMilli(wire.ObservedAt)
	}
	return nil
}
