package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConfirm resolves when the test sends the broker's answer.
type fakeConfirm chan bool

func (f fakeConfirm) WaitContext(ctx context.Context) (bool, error) {
	select {
	case ack := <-f:
		return ack, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

type sent struct {
	key string
	msg amqp.Publishing
}

func newTestClient(confs ...fakeConfirm) (*Client, *[]sent) {
	var log []sent
	c := &Client{}
	c.publish = func(_ context.Context, key string, msg amqp.Publishing) (confirmation, error) {
		conf := confs[len(log)]
		log = append(log, sent{key: key, msg: msg})
		return conf, nil
	}
	return c, &log
}

func TestPublish_WaitsForOwnConfirmation(t *testing.T) {
	first, second := make(fakeConfirm, 1), make(fakeConfirm, 1)
	c, log := newTestClient(first, second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.Publish(ctx, KeyOrderUpdated, map[string]string{"id": "O1"})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// The late ack of the first message must not answer the second one.
	first <- true
	second <- false
	err = c.Publish(context.Background(), KeyOrderUpdated, map[string]string{"id": "O2"})
	assert.ErrorIs(t, err, ErrNack)

	require.Len(t, *log, 2)
	m := (*log)[1].msg
	assert.Equal(t, uint8(amqp.Persistent), m.DeliveryMode)
	assert.Equal(t, "application/json", m.ContentType)
	var body map[string]string
	require.NoError(t, json.Unmarshal(m.Body, &body))
	assert.Equal(t, "O2", body["id"])
}

func TestPublish_Ack(t *testing.T) {
	conf := make(fakeConfirm, 1)
	conf <- true
	c, log := newTestClient(conf)

	require.NoError(t, c.Publish(context.Background(), KeyTableUpdated, TableChange{ID: "T1"}))
	assert.Equal(t, KeyTableUpdated, (*log)[0].key)
}

func TestPublish_EncodeError(t *testing.T) {
	c, log := newTestClient()

	err := c.Publish(context.Background(), KeyOrderCreated, make(chan int))
	var jerr *json.UnsupportedTypeError
	assert.True(t, errors.As(err, &jerr))
	assert.Empty(t, *log)
}
