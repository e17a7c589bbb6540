package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fivetwenty-io/adminapi-client/internal/constants"
	"github.com/fivetwenty-io/adminapi-client/internal/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errPublishFailed = errors.New("publish failed")

type fakeConn struct {
	subjects   []string
	payloads   [][]byte
	publishErr error
	flushed    int
	closed     bool
}

func (c *fakeConn) Publish(subj string, data []byte) error {
	if c.publishErr != nil {
		return c.publishErr
	}

	c.subjects = append(c.subjects, subj)
	c.payloads = append(c.payloads, data)

	return nil
}

func (c *fakeConn) FlushWithContext(ctx context.Context) error {
	c.flushed++

	return ctx.Err()
}

func (c *fakeConn) Close() {
	c.closed = true
}

func TestSubject(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "users.created", events.Subject("users", constants.OperationCreate))
	assert.Equal(t, "audit.users.updated", events.Subject("audit.users.", constants.OperationUpdate))
	assert.Equal(t, "users.deleted", events.Subject("", constants.OperationDelete))
	assert.Equal(t, "users.restore", events.Subject("users", "restore"))
}

func TestNewUserEvent(t *testing.T) {
	t.Parallel()

	event := events.NewUserEvent(constants.OperationCreate, "7", "a@b.co")

	_, err := uuid.Parse(event.ID)
	require.NoError(t, err)
	assert.Equal(t, "create", event.Operation)
	assert.WithinDuration(t, time.Now(), event.OccurredAt, time.Minute)
}

func TestNATSPublisher_Publish(t *testing.T) {
	t.Parallel()

	conn := &fakeConn{}
	publisher := events.NewNATSPublisher(conn, "users", "adminctl")

	err := publisher.Publish(context.Background(), events.NewUserEvent(constants.OperationDelete, "7", ""))
	require.NoError(t, err)

	require.Equal(t, []string{"users.deleted"}, conn.subjects)
	assert.Equal(t, 1, conn.flushed)

	var decoded map[string]interface{}

	require.NoError(t, json.Unmarshal(conn.payloads[0], &decoded))
	assert.Equal(t, "7", decoded["userId"])
	assert.Equal(t, "adminctl", decoded["source"])
	assert.NotContains(t, decoded, "email")

	publisher.Close()
	assert.True(t, conn.closed)
}

func TestNATSPublisher_Errors(t *testing.T) {
	t.Parallel()

	publisher := events.NewNATSPublisher(&fakeConn{publishErr: errPublishFailed}, "users", "adminctl")

	err := publisher.Publish(context.Background(), events.NewUserEvent(constants.OperationCreate, "1", ""))
	require.ErrorIs(t, err, errPublishFailed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = events.NewNATSPublisher(&fakeConn{}, "users", "adminctl").
		Publish(ctx, events.NewUserEvent(constants.OperationCreate, "1", ""))
	require.ErrorIs(t, err, context.Canceled)

	err = events.NewNATSPublisher(nil, "users", "adminctl").
		Publish(context.Background(), events.NewUserEvent(constants.OperationCreate, "1", ""))
	require.ErrorIs(t, err, constants.ErrEventsNotConnected)
}

func TestConnect_Unreachable(t *testing.T) {
	t.Parallel()

	_, err := events.Connect("nats://127.0.0.1:1", "users", "adminctl", 200*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connecting to NATS")
}

func TestNopPublisher(t *testing.T) {
	t.Parallel()

	var publisher events.Publisher = events.NopPublisher{}

	require.NoError(t, publisher.Publish(context.Background(), events.UserEvent{}))
	publisher.Close()
}
