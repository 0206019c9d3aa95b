// Package messaging streams order lifecycle events to Kafka.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/irsalhamdi/uma-store/core/order"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// HeaderEventType names the order event carried by a message, so consumers
// can route without decoding the payload.
const HeaderEventType = "event-type"

var tracer = otel.Tracer("uma-store/messaging")

type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes order events keyed by order id, which keeps the events of
// one order in publication order on a single partition.
type Producer struct {
	w     writer
	topic string
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		topic: topic,
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			BatchTimeout:           50 * time.Millisecond,
		},
	}
}

func (p *Producer) PublishOrderEvent(ctx context.Context, e order.Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding %s event of order[%s]: %w", e.Type, e.OrderID, err)
	}

	ctx, span := tracer.Start(ctx, "publish "+e.Type,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemKafka,
			semconv.MessagingOperationTypePublish,
			semconv.MessagingDestinationName(p.topic),
			semconv.MessagingKafkaMessageKey(e.OrderID),
			attribute.String("order.id", e.OrderID),
			attribute.String("order.status", string(e.Status)),
		),
	)
	defer span.End()

	headers := Headers{{Key: HeaderEventType, Value: []byte(e.Type)}}
	otel.GetTextMapPropagator().Inject(ctx, &headers)

	msg := kafka.Message{
		Key:     []byte(e.OrderID),
		Value:   value,
		Headers: headers,
		Time:    e.Timestamp,
	}

	if err := p.w.WriteMessages(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write failed")
		return fmt.Errorf("writing %s event of order[%s] to topic[%s]: %w", e.Type, e.OrderID, p.topic, err)
	}

	return nil
}

func (p *Producer) Close() error {
	return p.w.Close()
}
