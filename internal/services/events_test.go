package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventPublisherEnvelope(t *testing.T) {
	sns := &mockSNS{}
	pub := NewEventPublisher(sns, "arn:aws:sns:eu-west-2:000000000000:order-events")

	pub.Emit(context.Background(), EventOrderCreated, map[string]string{"orderId": "abc"})

	assert.Equal(t, "arn:aws:sns:eu-west-2:000000000000:order-events", sns.topic)
	assert.Equal(t, EventOrderCreated, sns.attributes["eventType"])

	var out map[string]any
	require.NoError(t, json.Unmarshal(sns.message, &out))
	assert.Equal(t, EventOrderCreated, out["type"])
	assert.Equal(t, "abc", out["data"].(map[string]any)["orderId"])
}

func TestEventPublisherIsBestEffort(t *testing.T) {
	sns := &mockSNS{err: errors.New("throttled")}
	assert.NotPanics(t, func() {
		NewEventPublisher(sns, "arn").Emit(context.Background(), EventOrderCreated, nil)
	})

	unconfigured := &mockSNS{}
	NewEventPublisher(unconfigured, "").Emit(context.Background(), EventOrderCreated, nil)
	assert.Empty(t, unconfigured.topic)

	var nilPub *EventPublisher
	assert.NotPanics(t, func() { nilPub.Emit(context.Background(), EventOrderCreated, nil) })
}
