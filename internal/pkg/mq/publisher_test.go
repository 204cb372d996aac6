package mq

import (
	"context"
	"encoding/json"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeProducesPersistentJSON(t *testing.T) {
	msg, err := Encode(map[string]any{"booking_id": 7, "course_id": 1})
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)

	var decoded map[string]int
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, 7, decoded["booking_id"])
}

func TestEncodeRejectsUnsupportedValues(t *testing.T) {
	_, err := Encode(map[string]any{"ch": make(chan int)})
	assert.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.PublishJSON(context.Background(), KeyBookingCreated, struct{}{}))
	assert.NoError(t, p.Close())
}
