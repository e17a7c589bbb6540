// Package events publishes user audit events to NATS after successful
// mutations.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fivetwenty-io/adminapi-client/internal/constants"
	"github.com/fivetwenty-io/adminapi-client/pkg/adminapi"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// UserEvent describes a completed mutation of a user.
type UserEvent struct {
	ID         string      `json:"id"`
	Operation  string      `json:"operation"`
	UserID     adminapi.ID `json:"userId"`
	Email      string      `json:"email,omitempty"`
	Source     string      `json:"source,omitempty"`
	OccurredAt time.Time   `json:"occurredAt"`
}

// NewUserEvent creates an event for operation on user id.
func NewUserEvent(operation string, id adminapi.ID, email string) UserEvent {
	return UserEvent{
		ID:         uuid.NewString(),
		Operation:  operation,
		UserID:     id,
		Email:      email,
		OccurredAt: time.Now().UTC(),
	}
}

// Subject returns the subject the event is published on, e.g. "users.created".
func Subject(prefix, operation string) string {
	suffix := operation
	switch operation {
	case constants.OperationCreate:
		suffix = "created"
	case constants.OperationUpdate:
		suffix = "updated"
	case constants.OperationDelete:
		suffix = "deleted"
	}

	prefix = strings.TrimSuffix(prefix, ".")
	if prefix == "" {
		prefix = constants.DefaultEventSubjectPrefix
	}

	return prefix + "." + suffix
}

// Publisher publishes user events.
type Publisher interface {
	Publish(ctx context.Context, event UserEvent) error
	Close()
}

// Conn is the subset of *nats.Conn used by NATSPublisher.
type Conn interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSPublisher publishes events as JSON messages.
type NATSPublisher struct {
	conn   Conn
	prefix string
	source string
}

// Connect dials the NATS server at url.
func Connect(url, prefix, source string, timeout time.Duration) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name(source),
		nats.Timeout(timeout),
		nats.MaxReconnects(0),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	return NewNATSPublisher(conn, prefix, source), nil
}

// NewNATSPublisher wraps an established connection.
func NewNATSPublisher(conn Conn, prefix, source string) *NATSPublisher {
	return &NATSPublisher{
		conn:   conn,
		prefix: prefix,
		source: source,
	}
}

// Publish sends event and waits until the server has received it.
func (p *NATSPublisher) Publish(ctx context.Context, event UserEvent) error {
	if p.conn == nil {
		return constants.ErrEventsNotConnected
	}

	if event.Source == "" {
		event.Source = p.source
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling user event: %w", err)
	}

	subject := Subject(p.prefix, event.Operation)

	err = p.conn.Publish(subject, data)
	if err != nil {
		return fmt.Errorf("publishing %s: %w", subject, err)
	}

	err = p.conn.FlushWithContext(ctx)
	if err != nil {
		return fmt.Errorf("flushing %s: %w", subject, err)
	}

	return nil
}

// Close closes the connection.
func (p *NATSPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

// NopPublisher discards events. It is used when no events URL is configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, UserEvent) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() {}
