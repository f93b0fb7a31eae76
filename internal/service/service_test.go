package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func q(s string) string { return regexp.QuoteMeta(s) }

var orderCols = []string{"id", "user_id", "subtotal", "discount", "shipping_fee", "total_price", "voucher_code",
	"full_name", "phone", "shipping_address", "status", "payment_status", "payment_method", "created_at"}

func orderRow(id int, status string) *sqlmock.Rows {
	return sqlmock.NewRows(orderCols).
		AddRow(id, 7, 100000, 0, 30000, 130000, "", "An", "0901234567", "12 Lê Lợi", status, "unpaid", "cod", time.Now())
}

var menuCols = []string{"id", "name", "description", "price", "img", "category_id", "available"}

func menuRow(id int, price int64, available bool) *sqlmock.Rows {
	return sqlmock.NewRows(menuCols).AddRow(id, "Phở bò", "", price, "pho.png", 1, available)
}

var voucherCols = []string{"id", "code", "description", "discount_type", "discount_value", "min_order_amount",
	"start_date", "end_date", "usage_limit", "max_uses_per_user", "used_count", "status"}

type recordingWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

// events returns the event names written so far.
func (w *recordingWriter) events(t *testing.T) []string {
	t.Helper()
	w.mu.Lock()
	defer w.mu.Unlock()
	events := make([]string, len(w.msgs))
	for i, m := range w.msgs {
		var ev OrderEvent
		require.NoError(t, json.Unmarshal(m.Value, &ev))
		events[i] = ev.Event
	}
	return events
}

func (w *recordingWriter) keys() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	keys := make([]string, len(w.msgs))
	for i, m := range w.msgs {
		keys[i] = string(m.Key)
	}
	return keys
}
