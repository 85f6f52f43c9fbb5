package worker

// Retry loop for failed jobs. Rescheduled jobs sit in a Redis sorted set
// scored by their next attempt time; a background goroutine ticks every 30s
// and moves due jobs back onto their source queue. Backoff grows
// exponentially per attempt so a flapping SMTP relay is not hammered.

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	RetryZSetPrefix = "retry:"

	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
	retryBaseDelay    = 30 * time.Second
	retryMaxDelay     = 15 * time.Minute
)

// ScheduleRetry parks a failed job in the retry set of its source queue.
func ScheduleRetry(ctx context.Context, rdb *redis.Client, queue string, job Job, cause error) {
	data, err := json.Marshal(job)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("retry: failed to marshal job")
		return
	}

	delay := retryBackoff(job.Attempts)
	due := time.Now().Add(delay)
	member := redis.Z{Score: float64(due.Unix()), Member: data}
	if err := rdb.ZAdd(ctx, RetryZSetPrefix+queue, member).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("retry: failed to schedule job")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("job_type", job.Type).
		Int("attempts", job.Attempts).
		Dur("delay", delay).
		Err(cause).
		Msg("retry: job rescheduled")
}

// retryBackoff doubles per attempt: 30s, 1m, 2m, 4m … capped at 15m.
func retryBackoff(attempts int) time.Duration {
	delay := retryBaseDelay
	for i := 1; i < attempts && delay < retryMaxDelay; i++ {
		delay *= 2
	}
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}

// StartRetryLoop launches the goroutine that re-enqueues due jobs. It
// respects the context for graceful shutdown.
func StartRetryLoop(ctx context.Context, rdb *redis.Client) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry loop started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry loop shutting down")
				return
			case <-ticker.C:
				requeueDue(ctx, rdb, QueueEmail)
			}
		}
	}()
}

func requeueDue(ctx context.Context, rdb *redis.Client, queue string) {
	key := RetryZSetPrefix + queue
	now := time.Now().Unix()

	due, err := rdb.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now, 10),
		Count: retryBatchSize,
	}).Result()
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("retry: failed to read due jobs")
		return
	}
	if len(due) == 0 {
		return
	}

	for _, raw := range due {
		// Remove first: a job that cannot be removed was already claimed by
		// another instance and must not be enqueued twice.
		removed, err := rdb.ZRem(ctx, key, raw).Result()
		if err != nil || removed == 0 {
			continue
		}
		if err := rdb.LPush(ctx, queue, raw).Err(); err != nil {
			log.Error().Err(err).Str("queue", queue).Msg("retry: failed to requeue job")
		}
	}

	log.Info().Int("count", len(due)).Str("queue", queue).Msg("retry: requeued due jobs")
}
