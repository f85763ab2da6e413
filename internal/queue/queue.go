// Package queue carries work between the gateway and the analysis workers
// as request/reply tasks.
package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"clausewise/internal/retry"
)

// TaskType enumerates supported task categories.
type TaskType string

const (
	TaskTypeAnalyze TaskType = "analyze"
)

// Task represents a unit of work shared across services.
type Task struct {
	ID      uuid.UUID
	Type    TaskType
	Payload []byte
}

// Handler processes a task and returns the reply payload.
type Handler func(context.Context, Task) ([]byte, error)

// Queue exposes a minimal request/reply contract.
type Queue interface {
	// Request sends task to a worker for its type and waits for the reply.
	Request(ctx context.Context, task Task) ([]byte, error)

	// Serve handles tasks of taskType until ctx is done.
	Serve(ctx context.Context, taskType TaskType, handler Handler) error
}

var (
	// ErrNoHandler is returned when nothing serves the requested task type.
	ErrNoHandler = errors.New("no handler for task type")

	// ErrTooLarge is returned when a task or its reply exceeds what the
	// broker accepts in one message.
	ErrTooLarge = errors.New("task exceeds broker message size")
)

// RemoteError is a handler failure reported back to the requester.
type RemoteError struct {
	Type    TaskType
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s task failed: %s", e.Type, e.Message)
}

func prepare(task Task) (Task, error) {
	if task.Type == "" {
		return task, errors.New("task type required")
	}
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	return task, nil
}

// Retryable reports whether err is a transport failure worth retrying.
// Handler failures, oversized tasks and cancellations are final.
func Retryable(err error) bool {
	var remote *RemoteError
	if errors.As(err, &remote) || errors.Is(err, ErrTooLarge) {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// RequestWithRetry sends task, retrying transport failures with exponential backoff.
func RequestWithRetry(ctx context.Context, q Queue, task Task, attempts int, base time.Duration) ([]byte, error) {
	task, err := prepare(task)
	if err != nil {
		return nil, err
	}
	var out []byte
	err = retry.Do(ctx, attempts, base, func(ctx context.Context) error {
		var reqErr error
		out, reqErr = q.Request(ctx, task)
		return reqErr
	}, Retryable)
	if err != nil {
		return nil, err
	}
	return out, nil
}
