package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const dlqKey = "jobs:dead"

type deadJob struct {
	Job      Job       `json:"job"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
}

// SendToDLQ parks a failed job on the dead letter list so it can be
// inspected or replayed by hand.
func SendToDLQ(ctx context.Context, rdb *redis.Client, job Job, cause error) {
	raw, err := json.Marshal(deadJob{
		Job:      job,
		Error:    cause.Error(),
		FailedAt: time.Now().UTC(),
	})
	if err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("dlq marshal failed")
		return
	}
	if err := rdb.LPush(ctx, dlqKey, raw).Err(); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("dlq push failed")
		return
	}
	log.Warn().Str("job_id", job.ID).Str("type", job.Type).Msg("job sent to dlq")
}

// DLQLength reports how many jobs are parked on the dead letter list.
func DLQLength(ctx context.Context, rdb *redis.Client) (int64, error) {
	return rdb.LLen(ctx, dlqKey).Result()
}
