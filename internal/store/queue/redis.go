// Package queue implements the durable job queue backing the document
// processing pipeline: a FIFO pending list, completed/failed history
// lists, an approximate counter hash and the active-document claim set.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"docflow/internal/models"
	"docflow/internal/store"
)

// Redis key layout. The pending list holds JSON-encoded queue items in
// FIFO order (RPUSH tail, LPOP head). Counters live in a single hash and
// are maintained with HINCRBY next to each list operation; they are
// approximate by design, a crash between the two leaves transient drift.
const (
	pendingKey   = "document_processing_queue"
	completedKey = "completed_documents"
	failedKey    = "failed_documents"
	countersKey  = "queue_counters"
	activeKey    = "active_documents"
)

const (
	fieldWaiting   = "waiting"
	fieldActive    = "active"
	fieldCompleted = "completed"
	fieldFailed    = "failed"
)

var _ store.QueueStore = (*RedisQueue)(nil)

// RedisQueue implements store.QueueStore on a Redis instance. It is safe
// for concurrent use by multiple worker processes.
type RedisQueue struct {
	client *redis.Client
}

// NewRedisQueue connects to Redis and verifies connectivity. Failing to
// reach the queue store at boot is the one unrecoverable startup
// condition, so callers should treat an error here as fatal.
func NewRedisQueue(ctx context.Context, addr, password string, db int) (*RedisQueue, error) {
	cli := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := cli.Ping(ctx).Err(); err != nil {
		cli.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return &RedisQueue{client: cli}, nil
}

func (q *RedisQueue) Enqueue(ctx context.Context, documentID, ownerID string) error {
	item := models.QueueItem{
		DocumentID: documentID,
		OwnerID:    ownerID,
		Timestamp:  time.Now().UnixMilli(),
	}
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode queue item: %w", err)
	}
	if err := q.client.RPush(ctx, pendingKey, payload).Err(); err != nil {
		return fmt.Errorf("push queue item: %w", err)
	}
	if err := q.client.HIncrBy(ctx, countersKey, fieldWaiting, 1).Err(); err != nil {
		return fmt.Errorf("increment waiting counter: %w", err)
	}
	log.Debugf("enqueued document %s for owner %s", documentID, ownerID)
	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context) (*models.QueueItem, error) {
	raw, err := q.client.LPop(ctx, pendingKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pop queue item: %w", err)
	}

	var item models.QueueItem
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		// A corrupt entry is dropped rather than poisoning the loop.
		log.Errorf("discarding unparseable queue item: %v", err)
		return nil, nil
	}

	if err := q.client.HIncrBy(ctx, countersKey, fieldWaiting, -1).Err(); err != nil {
		return nil, fmt.Errorf("decrement waiting counter: %w", err)
	}
	if err := q.client.HIncrBy(ctx, countersKey, fieldActive, 1).Err(); err != nil {
		return nil, fmt.Errorf("increment active counter: %w", err)
	}
	return &item, nil
}

func (q *RedisQueue) MarkCompleted(ctx context.Context, documentID, ownerID string) error {
	return q.settle(ctx, completedKey, fieldCompleted, models.QueueItem{
		DocumentID: documentID,
		OwnerID:    ownerID,
		Timestamp:  time.Now().UnixMilli(),
	})
}

func (q *RedisQueue) MarkFailed(ctx context.Context, documentID, ownerID, reason string) error {
	return q.settle(ctx, failedKey, fieldFailed, models.QueueItem{
		DocumentID:   documentID,
		OwnerID:      ownerID,
		Timestamp:    time.Now().UnixMilli(),
		ErrorMessage: reason,
	})
}

// settle records a consumed job on its terminal history list and moves the
// active counter to the terminal counter.
func (q *RedisQueue) settle(ctx context.Context, listKey, counterField string, item models.QueueItem) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode queue item: %w", err)
	}
	if err := q.client.RPush(ctx, listKey, payload).Err(); err != nil {
		return fmt.Errorf("push to %s: %w", listKey, err)
	}
	if err := q.client.HIncrBy(ctx, countersKey, counterField, 1).Err(); err != nil {
		return fmt.Errorf("increment %s counter: %w", counterField, err)
	}
	if err := q.client.HIncrBy(ctx, countersKey, fieldActive, -1).Err(); err != nil {
		return fmt.Errorf("decrement active counter: %w", err)
	}
	return nil
}

// Claim atomically registers documentID as actively processed. SADD
// returns 0 when the member already exists, which is exactly the
// duplicate-in-flight signal the coordinator needs.
func (q *RedisQueue) Claim(ctx context.Context, documentID string) (bool, error) {
	added, err := q.client.SAdd(ctx, activeKey, documentID).Result()
	if err != nil {
		return false, fmt.Errorf("claim document %s: %w", documentID, err)
	}
	return added == 1, nil
}

func (q *RedisQueue) Release(ctx context.Context, documentID string) error {
	if err := q.client.SRem(ctx, activeKey, documentID).Err(); err != nil {
		return fmt.Errorf("release document %s: %w", documentID, err)
	}
	return nil
}

func (q *RedisQueue) Status(ctx context.Context) (models.QueueCounters, error) {
	fields, err := q.client.HGetAll(ctx, countersKey).Result()
	if err != nil {
		return models.QueueCounters{}, fmt.Errorf("read queue counters: %w", err)
	}
	counters := models.QueueCounters{
		Waiting:   parseCounter(fields[fieldWaiting]),
		Active:    parseCounter(fields[fieldActive]),
		Completed: parseCounter(fields[fieldCompleted]),
		Failed:    parseCounter(fields[fieldFailed]),
		Timestamp: time.Now(),
	}
	return counters, nil
}

// Reset clears all lists and zeroes every counter. Controlled startup
// only: jobs in flight at reset time are silently dropped.
func (q *RedisQueue) Reset(ctx context.Context) error {
	keys := []string{pendingKey, completedKey, failedKey, countersKey, activeKey}
	if err := q.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("reset queue: %w", err)
	}
	zeroes := map[string]interface{}{
		fieldWaiting:   0,
		fieldActive:    0,
		fieldCompleted: 0,
		fieldFailed:    0,
	}
	if err := q.client.HSet(ctx, countersKey, zeroes).Err(); err != nil {
		return fmt.Errorf("zero queue counters: %w", err)
	}
	log.Info("queue reset: lists cleared, counters zeroed")
	return nil
}

func (q *RedisQueue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}

func parseCounter(s string) int64 {
	if s == "" {
		return 0
	}
	var n int64
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0
	}
	return n
}
