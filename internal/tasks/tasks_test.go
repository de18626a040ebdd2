// tasks_test.go exercises the Redis-backed task queue. Tests are
// skipped if Redis is not available.
package tasks

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func testClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("skipping integration test: redis not reachable: %v", err)
	}
	t.Cleanup(func() {
		client.Del(context.Background(), queueKey)
		client.Close()
	})
	return client
}

// recordingSender captures sent mail for assertions.
type recordingSender struct {
	mu   sync.Mutex
	sent []string
}

func (r *recordingSender) Send(to, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, to+"|"+subject)
	return nil
}

func (r *recordingSender) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sent...)
}

func TestQueueFIFO(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()
	q := NewQueue(client)

	for _, to := range []string{"first@example.com", "second@example.com"} {
		if err := q.EnqueueEmail(ctx, KindFeedbackEmail, to, "hello", "body"); err != nil {
			t.Fatalf("EnqueueEmail: %v", err)
		}
	}

	n, err := q.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if n != 2 {
		t.Errorf("pending: got %d, want 2", n)
	}

	// Oldest first.
	task, err := q.dequeue(ctx)
	if err != nil || task == nil {
		t.Fatalf("dequeue: task=%v err=%v", task, err)
	}
	if task.Kind != KindFeedbackEmail {
		t.Errorf("kind: got %q", task.Kind)
	}
	if want := `"first@example.com"`; !strings.Contains(string(task.Payload), want) {
		t.Errorf("payload order: got %s", task.Payload)
	}
}

func TestWorkerDeliversEmail(t *testing.T) {
	client := testClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewQueue(client)
	sender := &recordingSender{}
	worker := NewWorker(q, sender)
	go worker.Run(ctx)

	if err := q.EnqueueEmail(ctx, KindActivationEmail, "worker@example.com", "queued hello", "body"); err != nil {
		t.Fatalf("EnqueueEmail: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		if got := sender.all(); len(got) == 1 {
			if got[0] != "worker@example.com|queued hello" {
				t.Errorf("sent: %v", got)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("worker did not deliver the email in time")
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func TestWorkerSkipsPoisonTask(t *testing.T) {
	client := testClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewQueue(client)
	sender := &recordingSender{}
	worker := NewWorker(q, sender)

	// An unknown kind must be dropped, not wedge the queue.
	if err := q.Enqueue(ctx, "no_such_kind", map[string]string{"x": "y"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := q.EnqueueEmail(ctx, KindFeedbackEmail, "after-poison@example.com", "still works", "body"); err != nil {
		t.Fatalf("EnqueueEmail: %v", err)
	}

	go worker.Run(ctx)

	deadline := time.After(5 * time.Second)
	for {
		if got := sender.all(); len(got) == 1 {
			if got[0] != "after-poison@example.com|still works" {
				t.Errorf("sent: %v", got)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("worker stalled on a poison task")
		case <-time.After(50 * time.Millisecond):
		}
	}
}
