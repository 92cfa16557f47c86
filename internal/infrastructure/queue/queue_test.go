package queue

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/sangkips/brewline-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type delayQueue interface {
	Schedule(ctx context.Context, executeAt time.Time, job Job) error
	Due(ctx context.Context, now time.Time, limit int) ([]Job, error)
	Len(ctx context.Context) (int64, error)
}

func exerciseQueue(t *testing.T, q delayQueue) {
	ctx := context.Background()
	now := time.Now()

	late := Job{Kind: JobExpirePayment, OrderID: uuid.New()}
	early := Job{Kind: JobExpirePayment, OrderID: uuid.New()}
	future := Job{Kind: JobExpirePayment, OrderID: uuid.New()}

	require.NoError(t, q.Schedule(ctx, now.Add(-time.Second), late))
	require.NoError(t, q.Schedule(ctx, now.Add(-time.Minute), early))
	require.NoError(t, q.Schedule(ctx, now.Add(time.Hour), future))

	due, err := q.Due(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, early.OrderID, due[0].OrderID)
	assert.Equal(t, late.OrderID, due[1].OrderID)

	// claimed jobs are gone
	due, err = q.Due(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, due)

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	due, err = q.Due(ctx, now.Add(2*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, future, due[0])
}

func TestMemoryDelayQueue(t *testing.T) {
	exerciseQueue(t, NewMemoryDelayQueue())
}

func TestMemoryDelayQueue_RespectsLimit(t *testing.T) {
	q := NewMemoryDelayQueue()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Schedule(ctx, time.Now().Add(-time.Second), Job{Kind: JobExpirePayment, OrderID: uuid.New()}))
	}

	due, err := q.Due(ctx, time.Now(), 3)
	require.NoError(t, err)
	assert.Len(t, due, 3)

	n, _ := q.Len(ctx)
	assert.EqualValues(t, 2, n)
}

// TestRedisDelayQueue runs against a live server when REDIS_TEST_ADDR is set.
func TestRedisDelayQueue(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	key := "test:delay:" + uuid.NewString()
	t.Cleanup(func() { client.Del(context.Background(), key) })

	exerciseQueue(t, NewRedisDelayQueue(client, key, logger.Discard()))
}

func TestJobKey_DistinguishesAttempts(t *testing.T) {
	j := Job{Kind: JobExpirePayment, OrderID: uuid.New()}
	retry := j
	retry.Attempt = 1
	assert.NotEqual(t, j.Key(), retry.Key())
}
