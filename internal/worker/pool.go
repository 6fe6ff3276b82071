package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// QueueRecalc holds background recalculation jobs consumed by the pool.
const QueueRecalc = "jobs:recalc"

const (
	JobTypeRecalcAll = "recalc_all"
)

// Job is the envelope pushed onto a Redis list queue.
type Job struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Dispatcher enqueues jobs for asynchronous processing.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueRecalc schedules a full recalculation sweep over the catalog.
func (d *Dispatcher) EnqueueRecalc(ctx context.Context) error {
	return d.enqueue(ctx, QueueRecalc, Job{
		ID:        newJobID(),
		Type:      JobTypeRecalcAll,
		CreatedAt: time.Now().UTC(),
	})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue string, job Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := d.rdb.LPush(ctx, queue, raw).Err(); err != nil {
		return err
	}
	log.Debug().Str("queue", queue).Str("job_id", job.ID).Str("type", job.Type).Msg("job enqueued")
	return nil
}

// WorkerHandlers wires each job type to its worker.
type WorkerHandlers struct {
	Recalc *RecalcWorker
}

// StartWorkerPool launches numWorkers goroutines that block on the job
// queue until ctx is cancelled.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers WorkerHandlers, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, i, rdb, handlers)
	}
	log.Info().Int("workers", numWorkers).Msg("worker pool started")
}

func runWorker(ctx context.Context, id int, rdb *redis.Client, handlers WorkerHandlers) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker stopped")
			return
		default:
		}

		res, err := rdb.BRPop(ctx, 5*time.Second, QueueRecalc).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			log.Error().Err(err).Int("worker", id).Msg("queue pop failed")
			time.Sleep(time.Second)
			continue
		}
		if len(res) < 2 {
			continue
		}
		processJob(ctx, id, rdb, handlers, []byte(res[1]))
	}
}

func processJob(ctx context.Context, workerID int, rdb *redis.Client, handlers WorkerHandlers, raw []byte) {
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		log.Error().Err(err).Int("worker", workerID).Msg("malformed job dropped")
		return
	}

	var err error
	switch job.Type {
	case JobTypeRecalcAll:
		err = handlers.Recalc.Handle(ctx, job)
	default:
		log.Warn().Str("type", job.Type).Msg("unknown job type")
		return
	}

	if err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Str("type", job.Type).Msg("job failed")
		SendToDLQ(ctx, rdb, job, err)
		return
	}
	log.Info().Str("job_id", job.ID).Str("type", job.Type).Int("worker", workerID).Msg("job done")
}

func newJobID() string {
	return uuid.NewString()
}
