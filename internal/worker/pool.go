package worker

import (
	"context"
	"encoding/json"
	"time"

	"counterpos/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const QueueStockAlert = "jobs:stock_alert"

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Handler processes one job payload. A returned error sends the job to the
// dead letter queue once maxAttempts is reached.
type Handler func(ctx context.Context, payload json.RawMessage) error

const maxAttempts = 3

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
	cb  *infra.CircuitBreaker
}

// NewDispatcher returns nil when rdb is nil; callers treat a nil dispatcher
// as "alerts disabled".
func NewDispatcher(rdb *redis.Client, cb *infra.CircuitBreaker) *Dispatcher {
	if rdb == nil {
		return nil
	}
	return &Dispatcher{rdb: rdb, cb: cb}
}

// EnqueueStockAlert pushes a low-stock alert job to Redis.
func (d *Dispatcher) EnqueueStockAlert(ctx context.Context, payload StockAlertPayload) error {
	return d.enqueue(ctx, QueueStockAlert, "stock_alert", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	if d == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	push := func() error { return d.rdb.LPush(ctx, queue, encoded).Err() }
	if d.cb == nil {
		return push()
	}
	return d.cb.Execute(push)
}

// StartWorkerPool launches numWorkers goroutines consuming the queues in
// handlers. Each goroutine blocks on BRPOP; zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, handlers map[string]Handler) {
	if rdb == nil || len(handlers) == 0 {
		return
	}
	queues := make([]string, 0, len(handlers))
	for q := range handlers {
		queues = append(queues, q)
	}
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, queues, handlers)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, queues []string, handlers map[string]Handler) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers map[string]Handler, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, rdb, queue, "unknown", json.RawMessage(raw), "invalid envelope: "+err.Error(), 0)
		return
	}
	handle, ok := handlers[queue]
	if !ok {
		log.Warn().Str("queue", queue).Msg("no handler for queue")
		return
	}

	job.Attempts++
	if err := handle(ctx, job.Payload); err != nil {
		if job.Attempts >= maxAttempts {
			SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
			return
		}
		log.Warn().Err(err).Str("queue", queue).Int("attempt", job.Attempts).Msg("job failed, requeueing")
		if qErr := requeue(ctx, rdb, queue, job); qErr != nil {
			log.Warn().Err(qErr).Str("queue", queue).Int("attempt", job.Attempts).Msg("requeue failed, parking job")
			SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, "requeue: "+qErr.Error(), job.Attempts)
		}
	}
}

// requeue pushes job back onto queue for another attempt.
func requeue(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}
