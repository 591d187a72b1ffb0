package worker

// E-mails that still fail after MaxAttempts land in dlq:<queue>. /health
// reports how many are parked there, and `go run ./cmd/reencolar` puts them
// back on their queue once the SMTP relay is healthy again.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/juju/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

func DLQKey(queue string) string { return DLQPrefix + queue }

// DLQEntry is a parked job plus the last failure.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      time.Time       `json:"failed_at"`
	Attempts      int             `json:"attempts"`
}

// SendToDLQ parks a job. It runs inside the worker, so failures are only
// logged: the job has nowhere else to go.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue, jobType string, payload json.RawMessage, reason string, attempts int) {
	data, err := json.Marshal(DLQEntry{
		OriginalQueue: queue,
		JobType:       jobType,
		Payload:       payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC(),
		Attempts:      attempts,
	})
	if err == nil {
		err = rdb.LPush(ctx, DLQKey(queue), data).Err()
	}
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Str("reason", reason).Msg("dlq: job lost")
		return
	}
	log.Warn().Str("queue", queue).Str("job_type", jobType).Str("reason", reason).
		Int("attempts", attempts).Msg("dlq: job parked")
}

// DLQLength returns how many jobs of a queue are parked.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQKey(queue)).Result()
}

// Reencolar moves up to limite parked jobs (all when limite <= 0) back to their
// queue with a fresh attempt count, oldest first. Each move is atomic, so a
// crash never duplicates or drops a job.
func Reencolar(ctx context.Context, rdb *redis.Client, queue string, limite int) (int, error) {
	n := 0
	for limite <= 0 || n < limite {
		raw, err := rdb.LIndex(ctx, DLQKey(queue), -1).Result()
		if err == redis.Nil {
			break
		}
		if err != nil {
			return n, errors.Annotate(err, "dlq: read")
		}
		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return n, errors.Annotate(err, "dlq: decode entry")
		}
		job, err := json.Marshal(Job{Type: entry.JobType, Payload: entry.Payload})
		if err != nil {
			return n, errors.Trace(err)
		}

		pipe := rdb.TxPipeline()
		pipe.LRem(ctx, DLQKey(queue), -1, raw)
		pipe.LPush(ctx, queue, job)
		if _, err := pipe.Exec(ctx); err != nil {
			return n, errors.Annotate(err, "dlq: requeue")
		}
		n++
	}
	return n, nil
}
