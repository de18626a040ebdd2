// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package tasks is a small Redis-list work queue for jobs that must not
// block a request: sending email, mostly. Producers LPUSH JSON-encoded
// tasks; the worker BRPOPs them one at a time, so the list behaves as a
// FIFO queue that survives process restarts.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// queueKey is the Redis list holding pending tasks.
	queueKey = "tasks:queue"

	// popTimeout bounds each BRPOP so the worker can notice shutdown.
	popTimeout = 5 * time.Second

	// TaskTimeLimit is the hard per-task ceiling. A handler that is
	// still running after this long is abandoned.
	TaskTimeLimit = 30 * time.Minute
)

// Task kinds. All current kinds carry an EmailPayload; the kind mostly
// records what prompted the mail.
const (
	KindActivationEmail    = "activation_email"
	KindPasswordResetEmail = "password_reset_email"
	KindFeedbackEmail      = "feedback_email"
)

// Task is the unit of queued work.
type Task struct {
	Kind       string          `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// EmailPayload is the payload shared by the email task kinds.
type EmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Queue enqueues tasks into Redis.
type Queue struct {
	client *redis.Client
}

// NewQueue creates a task queue backed by the given Redis client.
func NewQueue(client *redis.Client) *Queue {
	return &Queue{client: client}
}

// Enqueue pushes a task onto the queue.
func (q *Queue) Enqueue(ctx context.Context, kind string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("task payload: %w", err)
	}
	task := Task{Kind: kind, Payload: raw, EnqueuedAt: time.Now()}
	encoded, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("task encode: %w", err)
	}
	if err := q.client.LPush(ctx, queueKey, encoded).Err(); err != nil {
		return fmt.Errorf("task enqueue: %w", err)
	}
	return nil
}

// EnqueueEmail queues an email for background delivery under the given
// kind.
func (q *Queue) EnqueueEmail(ctx context.Context, kind, to, subject, body string) error {
	return q.Enqueue(ctx, kind, EmailPayload{To: to, Subject: subject, Body: body})
}

// Pending returns the number of tasks waiting in the queue.
func (q *Queue) Pending(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, queueKey).Result()
	if err != nil {
		return 0, fmt.Errorf("task pending: %w", err)
	}
	return n, nil
}

// dequeue blocks until a task is available or the pop timeout elapses.
// Returns nil on timeout.
func (q *Queue) dequeue(ctx context.Context) (*Task, error) {
	res, err := q.client.BRPop(ctx, popTimeout, queueKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("task dequeue: %w", err)
	}
	// BRPop returns [key, value].
	var task Task
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		return nil, fmt.Errorf("task decode: %w", err)
	}
	return &task, nil
}
