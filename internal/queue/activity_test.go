package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"climbing/logbook/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupQueue(t *testing.T, maxLen int64) ActivityQueue {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisActivityQueue(client, "test:", maxLen)
}

func TestActivity_PublishRecent(t *testing.T) {
	q := setupQueue(t, 100)
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 18, 20, 0, 0, time.UTC)

	id, err := q.Publish(ctx, domain.Activity{Kind: domain.ActivityRouteAdded, Username: "alex", At: at, Summary: "1 route added"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = q.Publish(ctx, domain.Activity{Kind: domain.ActivityAttemptLogged, Username: "sam", Summary: "attempt 2 on route 7"})
	require.NoError(t, err)

	recent, err := q.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	assert.Equal(t, domain.ActivityAttemptLogged, recent[0].Kind)
	assert.Equal(t, "sam", recent[0].Username)
	assert.False(t, recent[0].At.IsZero())

	assert.Equal(t, id, recent[1].ID)
	assert.Equal(t, at, recent[1].At)
	assert.Equal(t, "1 route added", recent[1].Summary)
}

func TestActivity_RecentLimit(t *testing.T) {
	q := setupQueue(t, 100)
	ctx := context.Background()

	for i := range 5 {
		_, err := q.Publish(ctx, domain.Activity{Kind: domain.ActivityEntityAdded, Summary: fmt.Sprintf("gym %d", i)})
		require.NoError(t, err)
	}

	recent, err := q.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "gym 4", recent[0].Summary)
	assert.Equal(t, "gym 3", recent[1].Summary)
}

func TestActivity_EmptyStream(t *testing.T) {
	q := setupQueue(t, 100)
	recent, err := q.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}
