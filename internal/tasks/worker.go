// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"inkwell/internal/mailer"
)

// Worker consumes the task queue. Tasks run sequentially; a failed task
// is logged and dropped rather than retried, so a poisoned payload
// cannot wedge the queue.
type Worker struct {
	queue  *Queue
	sender mailer.Sender
}

// NewWorker creates a worker draining the given queue.
func NewWorker(queue *Queue, sender mailer.Sender) *Worker {
	return &Worker{queue: queue, sender: sender}
}

// Run drains the queue until ctx is cancelled. Call it in a goroutine.
func (w *Worker) Run(ctx context.Context) {
	slog.Info("task worker started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("task worker stopped")
			return
		default:
		}

		task, err := w.queue.dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("task worker stopped")
				return
			}
			slog.Error("task dequeue failed", "error", err)
			continue
		}
		if task == nil {
			continue
		}

		taskCtx, cancel := context.WithTimeout(ctx, TaskTimeLimit)
		if err := w.handle(taskCtx, task); err != nil {
			slog.Error("task failed", "kind", task.Kind, "error", err)
		} else {
			slog.Debug("task done", "kind", task.Kind)
		}
		cancel()
	}
}

func (w *Worker) handle(ctx context.Context, task *Task) error {
	switch task.Kind {
	case KindActivationEmail, KindPasswordResetEmail, KindFeedbackEmail:
		var p EmailPayload
		if err := json.Unmarshal(task.Payload, &p); err != nil {
			return fmt.Errorf("email payload: %w", err)
		}
		return w.sendWithDeadline(ctx, p)
	default:
		return fmt.Errorf("unknown task kind %q", task.Kind)
	}
}

// sendWithDeadline runs the SMTP exchange in a goroutine so the task
// ceiling applies even though the mailer itself does not take a context.
func (w *Worker) sendWithDeadline(ctx context.Context, p EmailPayload) error {
	done := make(chan error, 1)
	go func() {
		done <- w.sender.Send(p.To, p.Subject, p.Body)
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("task timed out: %w", ctx.Err())
	}
}
