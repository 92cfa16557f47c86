package queue

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// claimScript pops up to ARGV[2] members scored at or below ARGV[1]. Running
// range and remove in one script keeps two workers from claiming the same job.
var claimScript = redis.NewScript(`
local items = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, ARGV[2])
for _, member in ipairs(items) do
	redis.call('ZREM', KEYS[1], member)
end
return items
`)

// RedisDelayQueue stores jobs in a sorted set scored by execution time in
// unix milliseconds.
type RedisDelayQueue struct {
	client redis.Cmdable
	key    string
	log    logrus.FieldLogger
}

// NewRedisDelayQueue creates a delay queue on the given sorted-set key.
func NewRedisDelayQueue(client redis.Cmdable, key string, log logrus.FieldLogger) *RedisDelayQueue {
	return &RedisDelayQueue{client: client, key: key, log: log}
}

func (q *RedisDelayQueue) Schedule(ctx context.Context, executeAt time.Time, job Job) error {
	member, err := encodeJob(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	return q.client.ZAdd(ctx, q.key, redis.Z{
		Score:  float64(executeAt.UnixMilli()),
		Member: member,
	}).Err()
}

func (q *RedisDelayQueue) Due(ctx context.Context, now time.Time, limit int) ([]Job, error) {
	members, err := claimScript.Run(ctx, q.client, []string{q.key}, now.UnixMilli(), limit).StringSlice()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	jobs := make([]Job, 0, len(members))
	for _, m := range members {
		job, err := decodeJob(m)
		if err != nil {
			q.log.WithField("member", m).WithError(err).Warn("Dropping undecodable delayed job")
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// Len reports the number of scheduled jobs.
func (q *RedisDelayQueue) Len(ctx context.Context) (int64, error) {
	return q.client.ZCard(ctx, q.key).Result()
}
