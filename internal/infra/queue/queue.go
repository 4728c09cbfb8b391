// Package queue is the Claim Queue (C6): a durable FIFO built directly
// on the KV gateway, not a separate broker, per spec.md §4.7 ("backed
// by the KV infrastructure").
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gin-clean-starter/internal/infra/kv"

	"github.com/redis/go-redis/v9"
)

const (
	waitingKey   = "queue:claim:waiting"
	activeKey    = "queue:claim:active"
	delayedKey   = "queue:claim:delayed"
	completedKey = "queue:claim:completed"
	failedKey    = "queue:claim:failed"

	DefaultPriority = 5
	MaxAttempts     = 3
	baseBackoff     = time.Second

	successRetention     = 24 * time.Hour
	successRetentionMax  = 1000
	failureRetention     = 7 * 24 * time.Hour
	failureRetentionMax  = 5000
)

type State string

const (
	StateWaiting   State = "waiting"
	StateActive    State = "active"
	StateDelayed   State = "delayed"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Job is the full claim payload carried on the queue.
type Job struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Code      string `json:"code"`
	IP        string `json:"ip"`
	UserAgent string `json:"userAgent"`
	DeviceID  string `json:"deviceId"`
	Priority  int    `json:"priority"`
	Attempts  int    `json:"attempts"`
}

type JobStatus struct {
	State      State           `json:"state"`
	Result     json.RawMessage `json:"result,omitempty"`
	FailReason string          `json:"failReason,omitempty"`
}

type Counts struct {
	Waiting   int64
	Active    int64
	Completed int64
	Failed    int64
	Delayed   int64
}

func jobKey(id string) string { return fmt.Sprintf("queue:claim:job:%s", id) }
func seenKey(id string) string { return fmt.Sprintf("queue:claim:seen:%s", id) }

type Queue struct {
	kv *kv.Gateway
}

func New(gateway *kv.Gateway) *Queue {
	return &Queue{kv: gateway}
}

// Enqueue assigns jobId = job.ID (the caller's requestId) to guarantee
// dedup and rejects a duplicate jobId silently — this is how
// idempotency combines with asynchrony (spec.md §4.6 step 8).
func (q *Queue) Enqueue(ctx context.Context, job Job) (string, error) {
	if job.Priority == 0 {
		job.Priority = DefaultPriority
	}

	set, err := q.kv.Raw().SetNX(ctx, seenKey(job.ID), "1", successRetention).Result()
	if err != nil {
		return "", err
	}
	if !set {
		return job.ID, nil
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return "", err
	}

	err = q.kv.Pipeline(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, jobKey(job.ID), map[string]any{
			"state":   string(StateWaiting),
			"payload": payload,
		})
		p.RPush(ctx, waitingKey, job.ID)
		return nil
	})
	if err != nil {
		return "", err
	}

	return job.ID, nil
}

// Dequeue blocks up to timeout for the next job, FIFO, and marks it
// active. Returns nil, nil on timeout.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	res, err := q.kv.Raw().BLPop(ctx, timeout, waitingKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	if len(res) < 2 {
		return nil, nil
	}
	jobID := res[1]

	payload, err := q.kv.HGet(ctx, jobKey(jobID), "payload")
	if err != nil {
		return nil, err
	}

	var job Job
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		return nil, err
	}

	err = q.kv.Pipeline(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, jobKey(jobID), map[string]any{"state": string(StateActive)})
		p.SAdd(ctx, activeKey, jobID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &job, nil
}

func (q *Queue) Get(ctx context.Context, jobID string) (JobStatus, error) {
	fields, err := q.kv.HGetAll(ctx, jobKey(jobID))
	if err != nil {
		return JobStatus{}, err
	}
	if len(fields) == 0 {
		return JobStatus{}, kv.ErrNotFound
	}

	status := JobStatus{State: State(fields["state"])}
	if r, ok := fields["result"]; ok {
		status.Result = json.RawMessage(r)
	}
	status.FailReason = fields["failReason"]
	return status, nil
}

// Complete records a successful job result and trims the completed
// retention set by time and count (24h or 1000 entries, whichever
// first).
func (q *Queue) Complete(ctx context.Context, jobID string, result any) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}

	now := float64(time.Now().UnixMilli())
	err = q.kv.Pipeline(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, jobKey(jobID), map[string]any{"state": string(StateCompleted), "result": raw})
		p.ZAdd(ctx, completedKey, redis.Z{Score: now, Member: jobID})
		p.SRem(ctx, activeKey, jobID)
		return nil
	})
	if err != nil {
		return err
	}

	return q.trimRetention(ctx, completedKey, successRetention, successRetentionMax)
}

// Fail terminates the job permanently with the given reason, trimming
// the failed retention set (7d or 5000 entries).
func (q *Queue) Fail(ctx context.Context, jobID, reason string) error {
	now := float64(time.Now().UnixMilli())
	err := q.kv.Pipeline(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, jobKey(jobID), map[string]any{"state": string(StateFailed), "failReason": reason})
		p.ZAdd(ctx, failedKey, redis.Z{Score: now, Member: jobID})
		p.SRem(ctx, activeKey, jobID)
		return nil
	})
	if err != nil {
		return err
	}

	return q.trimRetention(ctx, failedKey, failureRetention, failureRetentionMax)
}

// Retry schedules the job for another attempt after exponential backoff
// starting at 1s (backoff = baseBackoff * 2^(attempts-1)), or fails it
// permanently once MaxAttempts is exhausted.
func (q *Queue) Retry(ctx context.Context, job Job, reason string) error {
	job.Attempts++
	if job.Attempts >= MaxAttempts {
		return q.Fail(ctx, job.ID, reason)
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}

	backoff := baseBackoff << (job.Attempts - 1)
	nextAttempt := float64(time.Now().Add(backoff).UnixMilli())

	return q.kv.Pipeline(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, jobKey(job.ID), map[string]any{"state": string(StateDelayed), "payload": payload})
		p.ZAdd(ctx, delayedKey, redis.Z{Score: nextAttempt, Member: job.ID})
		p.SRem(ctx, activeKey, job.ID)
		return nil
	})
}

// PromoteDelayed moves every delayed job whose next-retry-at has
// elapsed back onto the waiting list. Called periodically by the
// worker pool's scheduling loop.
func (q *Queue) PromoteDelayed(ctx context.Context) (int, error) {
	now := fmt.Sprintf("%d", time.Now().UnixMilli())

	ids, err := q.kv.ZRangeByScore(ctx, delayedKey, &redis.ZRangeBy{Min: "0", Max: now})
	if err != nil || len(ids) == 0 {
		return 0, err
	}

	for _, id := range ids {
		err := q.kv.Pipeline(ctx, func(p redis.Pipeliner) error {
			p.ZRem(ctx, delayedKey, id)
			p.RPush(ctx, waitingKey, id)
			p.HSet(ctx, jobKey(id), map[string]any{"state": string(StateWaiting)})
			return nil
		})
		if err != nil {
			return 0, err
		}
	}

	return len(ids), nil
}

func (q *Queue) Counts(ctx context.Context) (Counts, error) {
	raw := q.kv.Raw()

	waiting, err := raw.LLen(ctx, waitingKey).Result()
	if err != nil {
		return Counts{}, err
	}
	completed, err := raw.ZCard(ctx, completedKey).Result()
	if err != nil {
		return Counts{}, err
	}
	failed, err := raw.ZCard(ctx, failedKey).Result()
	if err != nil {
		return Counts{}, err
	}
	delayed, err := raw.ZCard(ctx, delayedKey).Result()
	if err != nil {
		return Counts{}, err
	}
	active, err := raw.SCard(ctx, activeKey).Result()
	if err != nil {
		return Counts{}, err
	}

	return Counts{Waiting: waiting, Active: active, Completed: completed, Failed: failed, Delayed: delayed}, nil
}

func (q *Queue) trimRetention(ctx context.Context, key string, maxAge time.Duration, maxCount int64) error {
	raw := q.kv.Raw()

	cutoff := float64(time.Now().Add(-maxAge).UnixMilli())
	if err := raw.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", int64(cutoff))).Err(); err != nil {
		return err
	}

	count, err := raw.ZCard(ctx, key).Result()
	if err != nil {
		return err
	}
	if count > maxCount {
		return raw.ZRemRangeByRank(ctx, key, 0, count-maxCount-1).Err()
	}
	return nil
}
