package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"food-order-service/internal/service"
)

// UsageStore gives voucher uses back when orders are cancelled.
type UsageStore interface {
	ReleaseUsage(ctx context.Context, orderID int) error
}

// MessageReader is the part of *kafka.Reader the consumer uses.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// Consumer keeps voucher usage in step with cancelled orders. Uses are
// counted when the order is created, in the same transaction.
type Consumer struct {
	reader MessageReader
	store  UsageStore
}

func NewConsumer(reader MessageReader, store UsageStore) *Consumer {
	return &Consumer{reader: reader, store: store}
}

// Start reads order events until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Msgf("Error reading message: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		if err := c.processMessage(ctx, msg); err != nil {
			log.Error().Msgf("Error processing message %s: %v", msg.Key, err)
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var ev service.OrderEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return err
	}
	if ev.Order == nil || ev.Order.ID <= 0 {
		return fmt.Errorf("order event %q without an order", ev.Event)
	}

	switch ev.Event {
	case service.EventCancelled:
		return c.store.ReleaseUsage(ctx, ev.Order.ID)
	case service.EventCreated, service.EventUpdated:
		return nil
	default:
		log.Warn().Msgf("Unknown order event %s", ev.Event)
		return nil
	}
}
