package queue

import (
	"context"
	"sync"
)

// Local dispatches tasks to handlers in the same process. It is used when no
// broker is configured and in tests.
type Local struct {
	mu       sync.RWMutex
	handlers map[TaskType]Handler
}

func NewLocal() *Local {
	return &Local{handlers: make(map[TaskType]Handler)}
}

// Handle registers handler for taskType, replacing any earlier one.
func (l *Local) Handle(taskType TaskType, handler Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers[taskType] = handler
}

func (l *Local) Serve(ctx context.Context, taskType TaskType, handler Handler) error {
	l.Handle(taskType, handler)
	<-ctx.Done()
	l.mu.Lock()
	delete(l.handlers, taskType)
	l.mu.Unlock()
	return nil
}

func (l *Local) Request(ctx context.Context, task Task) ([]byte, error) {
	task, err := prepare(task)
	if err != nil {
		return nil, err
	}
	l.mu.RLock()
	handler, ok := l.handlers[task.Type]
	l.mu.RUnlock()
	if !ok {
		return nil, ErrNoHandler
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := handler(ctx, task)
	if err != nil {
		return nil, &RemoteError{Type: task.Type, Message: err.Error()}
	}
	return out, nil
}
