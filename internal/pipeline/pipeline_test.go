package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clausewise/internal/entity"
	"clausewise/internal/llm"
	"clausewise/internal/parser"
	"clausewise/internal/queue"
)

const agreement = "This Agreement is made on 01/02/2024 between Acme Corp. and Beta LLC.\n" +
	"1. The Receiving Party shall keep all information confidential.\n" +
	"2. Payment of $5,000 is due within 30 days."

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func gatewayReplying(reply string) *llm.MockGateway {
	gw := new(llm.MockGateway)
	gw.On("Chat", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(llm.Success(llm.ProviderOllama, reply))
	return gw
}

type recorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recorder) ObserveAnalysis(format, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, format+":"+outcome)
}

func TestAnalyzeText(t *testing.T) {
	gw := gatewayReplying("Non-Disclosure Agreement (NDA)")
	rec := &recorder{}
	a := New(gw, quietLogger(), WithObserver(rec))

	rep, err := a.AnalyzeText(context.Background(), agreement, llm.Settings{})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, rep.ID)
	assert.Equal(t, DirectTextFilename, rep.Filename)
	assert.Equal(t, parser.FormatText, rep.Format)
	assert.Equal(t, "Non-Disclosure Agreement (NDA)", rep.DocType)
	assert.True(t, rep.Canonical)
	assert.Equal(t, agreement, rep.Text)
	assert.Equal(t, llm.DefaultSettings(), rep.Settings)

	assert.Equal(t, []string{"01/02/2024"}, rep.Entities[entity.Dates])
	assert.Equal(t, []string{"$5,000"}, rep.Entities[entity.MonetaryValues])
	assert.Contains(t, rep.Entities[entity.LegalTerms], "confidential")
	assert.Len(t, rep.Entities, len(entity.Categories))

	require.NotEmpty(t, rep.Clauses)
	joined := strings.Join(rep.Clauses, " ")
	assert.Contains(t, joined, "Payment of $5,000")

	assert.Equal(t, []string{"txt:ok"}, rec.outcomes)
	gw.AssertNumberOfCalls(t, "Chat", 1)
}

func TestAnalyzeTextTooShort(t *testing.T) {
	gw := new(llm.MockGateway)
	rec := &recorder{}
	a := New(gw, quietLogger(), WithObserver(rec))

	for _, text := range []string{"", "   \n\t ", "  too short  ", "123456789"} {
		_, err := a.AnalyzeText(context.Background(), text, llm.DefaultSettings())
		assert.ErrorIs(t, err, ErrTooShort, "input %q", text)
	}
	gw.AssertNotCalled(t, "Chat", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Len(t, rec.outcomes, 4)
}

func TestAnalyzeTextMinimumLength(t *testing.T) {
	a := New(gatewayReplying("Other"), quietLogger())

	rep, err := a.AnalyzeText(context.Background(), "  1234567890  ", llm.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, "Other", rep.DocType)
}

func TestAnalyzeClassificationFailureStillReports(t *testing.T) {
	gw := new(llm.MockGateway)
	gw.On("Chat", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(llm.Failure(llm.ProviderOllama, errors.New("connection refused")))
	a := New(gw, quietLogger())

	rep, err := a.AnalyzeText(context.Background(), agreement, llm.DefaultSettings())
	require.NoError(t, err)
	assert.False(t, rep.Canonical)
	assert.Equal(t, "[Ollama error] connection refused", rep.DocType)
	assert.NotEmpty(t, rep.Clauses)
}

func docx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString("<w:p><w:r><w:t>" + p + "</w:t></w:r></w:p>")
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestAnalyzeDOCX(t *testing.T) {
	a := New(gatewayReplying("Employment Agreement"), quietLogger())
	doc := parser.RawDocument{
		Filename: "offer.docx",
		Data:     docx(t, "The Employee shall report to the Manager.", "Salary is USD 90,000 per year."),
	}

	rep, err := a.Analyze(context.Background(), doc, llm.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, "offer.docx", rep.Filename)
	assert.Equal(t, parser.FormatDOCX, rep.Format)
	assert.Equal(t, "Employment Agreement", rep.DocType)
	assert.Equal(t, []string{"USD 90,000"}, rep.Entities[entity.MonetaryValues])
}

func TestAnalyzeUnreadable(t *testing.T) {
	gw := new(llm.MockGateway)
	rec := &recorder{}
	a := New(gw, quietLogger(), WithObserver(rec))

	_, err := a.Analyze(context.Background(), parser.RawDocument{Filename: "broken.pdf", Data: []byte("nope")}, llm.DefaultSettings())
	var perr *parser.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, parser.FormatPDF, perr.Format)
	assert.Equal(t, []string{"pdf:unreadable"}, rec.outcomes)
	gw.AssertNotCalled(t, "Chat", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRun(t *testing.T) {
	a := New(gatewayReplying("Other"), quietLogger())
	ctx := context.Background()

	rep, err := a.Run(ctx, Request{Filename: "ignored.txt", Data: []byte("file body that is long"), Text: agreement})
	require.NoError(t, err)
	assert.Equal(t, DirectTextFilename, rep.Filename, "pasted text wins")

	rep, err = a.Run(ctx, Request{Filename: "notes.txt", Data: []byte("file body that is long"), Text: "   "})
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", rep.Filename)

	_, err = a.Run(ctx, Request{})
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestResponseRoundTripsErrors(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(t *testing.T, err error)
	}{
		{"no input", ErrNoInput, func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrNoInput) }},
		{"too short", fmt.Errorf("analyze: %w", ErrTooShort), func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrTooShort) }},
		{"unreadable", &parser.Error{Format: parser.FormatDOCX, Err: errors.New("zip: not a valid zip file")}, func(t *testing.T, err error) {
			var perr *parser.Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, parser.FormatDOCX, perr.Format)
			assert.Equal(t, "zip: not a valid zip file", perr.Err.Error())
		}},
		{"other", errors.New("boom"), func(t *testing.T, err error) { assert.EqualError(t, err, "boom") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, NewResponse(Report{}, tt.err).Err())
		})
	}

	assert.NoError(t, NewResponse(Report{Filename: "x"}, nil).Err())
	assert.Error(t, Response{}.Err())
}

func TestSubmitOverLocalQueue(t *testing.T) {
	a := New(gatewayReplying("Lease Agreement"), quietLogger())
	q := queue.NewLocal()
	q.Handle(queue.TaskTypeAnalyze, a.TaskHandler())
	ctx := context.Background()

	rep, err := Submit(ctx, q, Request{Text: agreement}, 1, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "Lease Agreement", rep.DocType)
	assert.Equal(t, agreement, rep.Text)

	_, err = Submit(ctx, q, Request{Text: "tiny"}, 1, time.Millisecond)
	assert.ErrorIs(t, err, ErrTooShort)

	_, err = Submit(ctx, q, Request{Filename: "x.docx", Data: []byte("junk")}, 1, time.Millisecond)
	var perr *parser.Error
	assert.ErrorAs(t, err, &perr)
}

func TestSubmitMalformedPayload(t *testing.T) {
	a := New(new(llm.MockGateway), quietLogger())
	_, err := a.TaskHandler()(context.Background(), queue.Task{Type: queue.TaskTypeAnalyze, Payload: []byte("{")})
	assert.Error(t, err)
}

func TestSubmitTransportFailure(t *testing.T) {
	m := new(queue.MockQueue)
	m.On("Request", mock.Anything, mock.Anything).Return(nil, errors.New("nats: no responders available"))

	_, err := Submit(context.Background(), m, Request{Text: agreement}, 2, time.Millisecond)
	assert.Error(t, err)
	m.AssertNumberOfCalls(t, "Request", 2)
}

func TestSubmitEncodesUploadOnce(t *testing.T) {
	upload := bytes.Repeat([]byte("The Tenant shall pay rent. "), 620_000/27)

	var sent queue.Task
	m := new(queue.MockQueue)
	m.On("Request", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(queue.Task) }).
		Return(nil, fmt.Errorf("request analyze: %w", queue.ErrTooLarge)).Once()

	_, err := Submit(context.Background(), m, Request{Filename: "lease.txt", Data: upload}, 3, time.Millisecond)
	assert.ErrorIs(t, err, queue.ErrTooLarge)
	m.AssertNumberOfCalls(t, "Request", 1)

	// One base64 layer keeps a 620 KB upload under the 1 MiB NATS default.
	assert.Less(t, len(sent.Payload), 1<<20)
	var req Request
	require.NoError(t, json.Unmarshal(sent.Payload, &req))
	assert.Equal(t, upload, req.Data)
}
