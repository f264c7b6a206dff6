//go:build integration

package worker

// Runs the pool against a real redis: go test -tags integration ./internal/worker/...

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"counterpos/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()
	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestPool_DeliversStockAlert(t *testing.T) {
	rdb := startRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan StockAlertPayload, 1)
	StartWorkerPool(ctx, rdb, 1, map[string]Handler{
		QueueStockAlert: func(_ context.Context, raw json.RawMessage) error {
			var p StockAlertPayload
			if err := json.Unmarshal(raw, &p); err != nil {
				return err
			}
			got <- p
			return nil
		},
	})

	d := NewDispatcher(rdb, infra.NewCircuitBreaker(3, time.Second))
	require.NoError(t, d.EnqueueStockAlert(ctx, StockAlertPayload{ProductID: "p-1", Name: "Bun", Stock: 1, Threshold: 5}))

	select {
	case p := <-got:
		assert.Equal(t, "Bun", p.Name)
		assert.Equal(t, 1, p.Stock)
	case <-time.After(10 * time.Second):
		t.Fatal("stock alert was not processed")
	}
}

func TestPool_ParksExhaustedJobs(t *testing.T) {
	rdb := startRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var attempts atomic.Int32
	StartWorkerPool(ctx, rdb, 1, map[string]Handler{
		QueueStockAlert: func(context.Context, json.RawMessage) error {
			attempts.Add(1)
			return errors.New("alert sink unavailable")
		},
	})
	require.NoError(t, NewDispatcher(rdb, nil).EnqueueStockAlert(ctx, StockAlertPayload{ProductID: "p-2"}))

	require.Eventually(t, func() bool {
		n, err := DLQLength(ctx, rdb, QueueStockAlert)
		return err == nil && n == 1
	}, 15*time.Second, 100*time.Millisecond)
	assert.EqualValues(t, maxAttempts, attempts.Load())

	entries, err := PeekDLQ(ctx, rdb, QueueStockAlert, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "stock_alert", entries[0].JobType)
	assert.Equal(t, "alert sink unavailable", entries[0].Reason)
	assert.Equal(t, maxAttempts, entries[0].Attempts)
}

func TestRequeue_PushesJobBack(t *testing.T) {
	rdb := startRedis(t)
	ctx := context.Background()

	job := Job{Type: "stock_alert", Payload: json.RawMessage(`{"product_id":"p-3"}`), Attempts: 2}
	require.NoError(t, requeue(ctx, rdb, QueueStockAlert, job))

	raw, err := rdb.RPop(ctx, QueueStockAlert).Result()
	require.NoError(t, err)
	var got Job
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	assert.Equal(t, 2, got.Attempts)
	assert.Equal(t, "stock_alert", got.Type)
}
