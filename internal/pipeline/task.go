package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"clausewise/internal/llm"
	"clausewise/internal/parser"
	"clausewise/internal/queue"
)

// Request asks for one analysis. Pasted Text takes precedence over a file.
type Request struct {
	Filename string       `json:"filename,omitempty"`
	Data     []byte       `json:"data,omitempty"`
	Text     string       `json:"text,omitempty"`
	Settings llm.Settings `json:"settings"`
}

// Response is the reply to an analyze task. Reason is one of the
// Outcome values when Report is nil.
type Response struct {
	Report *Report       `json:"report,omitempty"`
	Reason string        `json:"reason,omitempty"`
	Format parser.Format `json:"format,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// Run dispatches req to AnalyzeText or Analyze.
func (a *Analyzer) Run(ctx context.Context, req Request) (Report, error) {
	if strings.TrimSpace(req.Text) != "" {
		return a.AnalyzeText(ctx, req.Text, req.Settings)
	}
	if req.Filename == "" && len(req.Data) == 0 {
		a.observe("", OutcomeNoInput, time.Now())
		return Report{}, ErrNoInput
	}
	return a.Analyze(ctx, parser.RawDocument{Filename: req.Filename, Data: req.Data}, req.Settings)
}

// TaskHandler serves analyze tasks. Rejected documents are encoded in the
// Response; only undecodable payloads fail the task.
func (a *Analyzer) TaskHandler() queue.Handler {
	return func(ctx context.Context, task queue.Task) ([]byte, error) {
		var req Request
		if err := json.Unmarshal(task.Payload, &req); err != nil {
			return nil, fmt.Errorf("decode analyze request: %w", err)
		}
		return json.Marshal(NewResponse(a.Run(ctx, req)))
	}
}

// NewResponse encodes the result of Run.
func NewResponse(rep Report, err error) Response {
	var perr *parser.Error
	switch {
	case err == nil:
		return Response{Report: &rep}
	case errors.Is(err, ErrNoInput):
		return Response{Reason: OutcomeNoInput, Error: err.Error()}
	case errors.Is(err, ErrTooShort):
		return Response{Reason: OutcomeTooShort, Error: err.Error()}
	case errors.As(err, &perr):
		return Response{Reason: OutcomeUnreadable, Format: perr.Format, Error: perr.Err.Error()}
	default:
		return Response{Error: err.Error()}
	}
}

// Err rebuilds the error carried by r, so callers on the far side of the
// queue can use errors.Is and errors.As as if the analysis ran locally.
func (r Response) Err() error {
	switch {
	case r.Report != nil:
		return nil
	case r.Reason == OutcomeNoInput:
		return ErrNoInput
	case r.Reason == OutcomeTooShort:
		return ErrTooShort
	case r.Reason == OutcomeUnreadable:
		return &parser.Error{Format: r.Format, Err: errors.New(r.Error)}
	case r.Error != "":
		return errors.New(r.Error)
	default:
		return errors.New("empty analysis response")
	}
}

// Submit sends req to an analysis worker over q and waits for the report.
func Submit(ctx context.Context, q queue.Queue, req Request, attempts int, base time.Duration) (Report, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return Report{}, fmt.Errorf("encode analyze request: %w", err)
	}
	out, err := queue.RequestWithRetry(ctx, q, queue.Task{Type: queue.TaskTypeAnalyze, Payload: payload}, attempts, base)
	if err != nil {
		return Report{}, err
	}
	var resp Response
	if err := json.Unmarshal(out, &resp); err != nil {
		return Report{}, fmt.Errorf("decode analyze response: %w", err)
	}
	if err := resp.Err(); err != nil {
		return Report{}, err
	}
	return *resp.Report, nil
}
