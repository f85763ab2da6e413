package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const subjectPrefix = "tasks."

// Task metadata and reply status travel in message headers so the payload
// goes over the wire as is.
const (
	headerTaskID    = "Task-Id"
	headerError     = "Task-Error"
	headerErrorCode = "Task-Error-Code"

	codeTooLarge = "too_large"
)

// NewNATS constructs a thin NATS-based queue.
func NewNATS(log *slog.Logger, nc *nats.Conn) Queue {
	return &natsQueue{log: log, nc: nc}
}

type natsQueue struct {
	log *slog.Logger
	nc  *nats.Conn
}

func (q *natsQueue) Request(ctx context.Context, task Task) ([]byte, error) {
	task, err := prepare(task)
	if err != nil {
		return nil, err
	}
	msg := requestMsg(task)
	if err := checkSize(msg, q.nc.MaxPayload()); err != nil {
		return nil, fmt.Errorf("request %s: %w", task.Type, err)
	}
	resp, err := q.nc.RequestMsgWithContext(ctx, msg)
	if errors.Is(err, nats.ErrMaxPayload) {
		err = fmt.Errorf("%w: %w", ErrTooLarge, err)
	}
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", task.Type, err)
	}
	return decodeReply(task.Type, resp)
}

func (q *natsQueue) Serve(ctx context.Context, taskType TaskType, handler Handler) error {
	subject := subjectPrefix + string(taskType)
	group := "workers-" + string(taskType)
	sub, err := q.nc.QueueSubscribe(subject, group, func(msg *nats.Msg) {
		q.handleMessage(ctx, msg, handler)
	})
	if err != nil {
		return err
	}
	<-ctx.Done()
	return sub.Unsubscribe()
}

func (q *natsQueue) handleMessage(ctx context.Context, msg *nats.Msg, handler Handler) {
	if err := msg.RespondMsg(handle(ctx, q.log, msg, handler, q.nc.MaxPayload())); err != nil {
		q.log.Error("failed to send reply", "subject", msg.Subject, "err", err)
	}
}

func requestMsg(task Task) *nats.Msg {
	msg := nats.NewMsg(subjectPrefix + string(task.Type))
	msg.Header.Set(headerTaskID, task.ID.String())
	msg.Data = task.Payload
	return msg
}

func decodeTask(msg *nats.Msg) (Task, error) {
	id, err := uuid.Parse(msg.Header.Get(headerTaskID))
	if err != nil {
		return Task{}, fmt.Errorf("task id: %w", err)
	}
	return Task{
		ID:      id,
		Type:    TaskType(strings.TrimPrefix(msg.Subject, subjectPrefix)),
		Payload: msg.Data,
	}, nil
}

// handle decodes a task, runs handler and builds the reply. A reply larger
// than maxPayload is replaced by a too-large error.
func handle(ctx context.Context, log *slog.Logger, msg *nats.Msg, handler Handler, maxPayload int64) *nats.Msg {
	reply := nats.NewMsg(msg.Reply)

	task, err := decodeTask(msg)
	if err != nil {
		log.Error("failed to decode task", "subject", msg.Subject, "err", err)
		reply.Header.Set(headerError, headerValue("malformed task: "+err.Error()))
		return reply
	}
	out, err := handler(ctx, task)
	if err != nil {
		log.Warn("task failed", "id", task.ID, "type", task.Type, "err", err)
		reply.Header.Set(headerError, headerValue(err.Error()))
		return reply
	}

	reply.Data = out
	if err := checkSize(reply, maxPayload); err != nil {
		log.Warn("reply exceeds broker limit", "id", task.ID, "type", task.Type, "err", err)
		reply.Data = nil
		reply.Header.Set(headerErrorCode, codeTooLarge)
		reply.Header.Set(headerError, headerValue(err.Error()))
	}
	return reply
}

func decodeReply(taskType TaskType, msg *nats.Msg) ([]byte, error) {
	reason := msg.Header.Get(headerError)
	switch {
	case reason == "":
		return msg.Data, nil
	case msg.Header.Get(headerErrorCode) == codeTooLarge:
		return nil, fmt.Errorf("%s reply: %w", taskType, ErrTooLarge)
	default:
		return nil, &RemoteError{Type: taskType, Message: reason}
	}
}

// checkSize rejects msg when its encoded headers and data exceed limit.
// A non-positive limit disables the check.
func checkSize(msg *nats.Msg, limit int64) error {
	if limit <= 0 {
		return nil
	}
	if size := int64(len(msg.Data) + headerSize(msg.Header)); size > limit {
		return fmt.Errorf("%w: %d bytes, broker limit is %d", ErrTooLarge, size, limit)
	}
	return nil
}

func headerSize(h nats.Header) int {
	if len(h) == 0 {
		return 0
	}
	n := len("NATS/1.0\r\n\r\n")
	for k, values := range h {
		for _, v := range values {
			n += len(k) + len(": ") + len(v) + len("\r\n")
		}
	}
	return n
}

func headerValue(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
