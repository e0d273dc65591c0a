package services

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/Abhishek-927/production-online-shop/internal/awspkg"
	"github.com/Abhishek-927/production-online-shop/internal/logger"
)

// Event types published on the order events topic.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// EventSink accepts domain events. Delivery is best-effort.
type EventSink interface {
	Emit(ctx context.Context, eventType string, data any)
}

// MetricsRecorder counts business events.
type MetricsRecorder interface {
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
}

// ReconcileQueue hands a payment attempt to the reconciler.
type ReconcileQueue interface {
	SendMessage(ctx context.Context, body string) error
}

type eventEnvelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

// EventPublisher emits events to an SNS topic with the event type as a
// message attribute.
type EventPublisher struct {
	sns      awspkg.SNSPublisher
	topicARN string
}

func NewEventPublisher(sns awspkg.SNSPublisher, topicARN string) *EventPublisher {
	return &EventPublisher{sns: sns, topicARN: topicARN}
}

func (p *EventPublisher) Emit(ctx context.Context, eventType string, data any) {
	if p == nil || p.sns == nil || p.topicARN == "" {
		return
	}

	body, err := json.Marshal(eventEnvelope{Type: eventType, OccurredAt: time.Now().UTC(), Data: data})
	if err != nil {
		logger.Error(ctx, "failed to marshal event", err, zap.String("event", eventType))
		return
	}
	if err := p.sns.Publish(ctx, p.topicARN, body, map[string]string{"eventType": eventType}); err != nil {
		logger.Warn(ctx, "event publish failed", zap.String("event", eventType), zap.Error(err))
		return
	}
	logger.Debug(ctx, "event published", zap.String("event", eventType))
}

func emit(ctx context.Context, sink EventSink, eventType string, data any) {
	if sink != nil {
		sink.Emit(ctx, eventType, data)
	}
}

func count(ctx context.Context, m MetricsRecorder, metric string) {
	if m == nil {
		return
	}
	if err := m.RecordCount(ctx, metric, nil); err != nil {
		logger.Warn(ctx, "metric not recorded", zap.String("metric", metric), zap.Error(err))
	}
}
