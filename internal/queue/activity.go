package queue

import (
	"context"
	"fmt"
	"time"

	"climbing/logbook/internal/domain"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// ActivityQueue appends writes to a capped Redis stream and reads them back newest first.
type ActivityQueue interface {
	Publish(ctx context.Context, activity domain.Activity) (string, error) // Returns message ID
	Recent(ctx context.Context, count int64) ([]domain.Activity, error)
}

type redisActivityQueue struct {
	redisClient *redis.Client
	stream      string
	maxLen      int64
}

func NewRedisActivityQueue(redisClient *redis.Client, keyPrefix string, maxLen int64) ActivityQueue {
	return &redisActivityQueue{
		redisClient: redisClient,
		stream:      keyPrefix + "activity",
		maxLen:      maxLen,
	}
}

func (q *redisActivityQueue) Publish(ctx context.Context, activity domain.Activity) (string, error) {
	if activity.At.IsZero() {
		activity.At = time.Now()
	}

	messageID, err := q.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		MaxLen: q.maxLen,
		Approx: true,
		Values: map[string]any{
			"kind":     activity.Kind,
			"username": activity.Username,
			"at":       activity.At.UTC().Format(time.RFC3339Nano),
			"summary":  activity.Summary,
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to add activity to Redis stream %s: %w", q.stream, err)
	}

	log.Debugf("Added %s activity to stream %s with message ID: %s", activity.Kind, q.stream, messageID)
	return messageID, nil
}

func (q *redisActivityQueue) Recent(ctx context.Context, count int64) ([]domain.Activity, error) {
	messages, err := q.redisClient.XRevRangeN(ctx, q.stream, "+", "-", count).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read Redis stream %s: %w", q.stream, err)
	}

	activity := make([]domain.Activity, 0, len(messages))
	for _, msg := range messages {
		activity = append(activity, decode(msg))
	}
	return activity, nil
}

func decode(msg redis.XMessage) domain.Activity {
	field := func(name string) string {
		s, _ := msg.Values[name].(string)
		return s
	}

	a := domain.Activity{
		ID:       msg.ID,
		Kind:     field("kind"),
		Username: field("username"),
		Summary:  field("summary"),
	}
	if at, err := time.Parse(time.RFC3339Nano, field("at")); err == nil {
		a.At = at
	}
	return a
}
