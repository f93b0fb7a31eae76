package consumer

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-order-service/internal/entity"
	"food-order-service/internal/service"
)

type fakeStore struct {
	mu       sync.Mutex
	released []int
}

func (s *fakeStore) ReleaseUsage(_ context.Context, orderID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = append(s.released, orderID)
	return nil
}

func orderMessage(t *testing.T, event string, o entity.Order) kafka.Message {
	t.Helper()
	value, err := json.Marshal(service.OrderEvent{Event: event, Order: &o})
	require.NoError(t, err)
	return kafka.Message{Key: []byte(service.EventKey(o.ID)), Value: value}
}

func TestProcessMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("cancelled releases usage", func(t *testing.T) {
		store := &fakeStore{}
		c := NewConsumer(nil, store)

		require.NoError(t, c.processMessage(ctx, orderMessage(t, service.EventCancelled, entity.Order{ID: 42})))
		assert.Equal(t, []int{42}, store.released)
	})

	t.Run("created and updated change nothing", func(t *testing.T) {
		store := &fakeStore{}
		c := NewConsumer(nil, store)

		require.NoError(t, c.processMessage(ctx, orderMessage(t, service.EventCreated, entity.Order{ID: 42, UserID: 7, VoucherCode: "SAVE10"})))
		require.NoError(t, c.processMessage(ctx, orderMessage(t, service.EventUpdated, entity.Order{ID: 42})))
		assert.Empty(t, store.released)
	})

	t.Run("created after cancelled does not count a use again", func(t *testing.T) {
		store := &fakeStore{}
		c := NewConsumer(nil, store)

		require.NoError(t, c.processMessage(ctx, orderMessage(t, service.EventCancelled, entity.Order{ID: 42})))
		require.NoError(t, c.processMessage(ctx, orderMessage(t, service.EventCreated, entity.Order{ID: 42, UserID: 7, VoucherCode: "SAVE10"})))
		assert.Equal(t, []int{42}, store.released)
	})

	t.Run("malformed value", func(t *testing.T) {
		c := NewConsumer(nil, &fakeStore{})
		assert.Error(t, c.processMessage(ctx, kafka.Message{Key: []byte("order-42"), Value: []byte("not json")}))
	})

	t.Run("event without an order", func(t *testing.T) {
		c := NewConsumer(nil, &fakeStore{})
		assert.Error(t, c.processMessage(ctx, kafka.Message{Key: []byte("order-42"), Value: []byte(`{"event":"cancelled"}`)}))
	})
}

type chanReader struct {
	msgs chan kafka.Message
}

func (r *chanReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.msgs:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func TestStartStopsWithContext(t *testing.T) {
	store := &fakeStore{}
	reader := &chanReader{msgs: make(chan kafka.Message, 1)}
	reader.msgs <- orderMessage(t, service.EventCancelled, entity.Order{ID: 9})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewConsumer(reader, store).Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.released) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
}
