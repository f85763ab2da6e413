package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"clausewise/internal/app"
	"clausewise/internal/assistant"
	"clausewise/internal/httputil"
	"clausewise/internal/llm"
	"clausewise/internal/parser"
	"clausewise/internal/pipeline"
	"clausewise/internal/queue"
)

// settingsInput overrides the configured model settings field by field.
type settingsInput struct {
	Host        *string  `json:"ollama_host,omitempty" validate:"omitempty,url"`
	Model       *string  `json:"model_name,omitempty" validate:"omitempty,min=1,max=200"`
	MaxTokens   *int     `json:"max_tokens,omitempty" validate:"omitempty,min=1,max=8192"`
	Temperature *float64 `json:"temperature,omitempty" validate:"omitempty,min=0,max=2"`
}

func (in *settingsInput) apply(base llm.Settings) llm.Settings {
	if in == nil {
		return base
	}
	if in.Host != nil {
		base.Host = *in.Host
	}
	if in.Model != nil {
		base.Model = *in.Model
	}
	if in.MaxTokens != nil {
		base.MaxTokens = *in.MaxTokens
	}
	if in.Temperature != nil {
		base.Temperature = *in.Temperature
	}
	return base
}

type analyzeRequest struct {
	DocumentText string         `json:"document_text" validate:"max=2000000"`
	Settings     *settingsInput `json:"settings,omitempty"`
}

type simplifyRequest struct {
	Clause   string         `json:"clause" validate:"required,max=20000"`
	Settings *settingsInput `json:"settings,omitempty"`
}

// maxJSONBody caps simplify and chat bodies.
const maxJSONBody = 4 << 20

type chatRequest struct {
	Message         string           `json:"message" validate:"required,max=4000"`
	DocumentContext string           `json:"document_context" validate:"max=1000000"`
	ChatHistory     []assistant.Turn `json:"chat_history" validate:"max=100"`
	Settings        *settingsInput   `json:"settings,omitempty"`
}

func analyzeHandler(deps app.Deps) http.HandlerFunc {
	maxSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxSize)

		req, err := readAnalyzeRequest(r, maxSize)
		if err != nil {
			failDecode(deps, w, err)
			return
		}
		req.Settings = req.settings.apply(deps.Config.Settings())

		report, err := pipeline.Submit(r.Context(), deps.Queue, req.Request, deps.Config.QueueAttempts, deps.Config.QueueBackoff)
		if err != nil {
			failAnalysis(deps, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, report)
	}
}

type parsedAnalyzeRequest struct {
	pipeline.Request
	settings *settingsInput
}

// readAnalyzeRequest accepts a JSON body or a multipart form with an optional
// "file" part, an optional "document_text" field and an optional "settings"
// field holding JSON.
func readAnalyzeRequest(r *http.Request, maxSize int64) (parsedAnalyzeRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var in analyzeRequest
		if err := httputil.DecodeJSON(r, &in); err != nil {
			return parsedAnalyzeRequest{}, err
		}
		return parsedAnalyzeRequest{Request: pipeline.Request{Text: in.DocumentText}, settings: in.Settings}, nil
	}

	if err := r.ParseMultipartForm(maxSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return parsedAnalyzeRequest{}, fmt.Errorf("invalid form: %w", err)
	}
	out := parsedAnalyzeRequest{Request: pipeline.Request{Text: r.FormValue("document_text")}}

	if raw := strings.TrimSpace(r.FormValue("settings")); raw != "" {
		var s settingsInput
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return parsedAnalyzeRequest{}, fmt.Errorf("invalid settings: %w", err)
		}
		if err := httputil.Validator.Struct(&s); err != nil {
			return parsedAnalyzeRequest{}, err
		}
		out.settings = &s
	}

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart):
		return out, nil
	case err != nil:
		return parsedAnalyzeRequest{}, fmt.Errorf("invalid file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return parsedAnalyzeRequest{}, err
	}
	out.Filename = header.Filename
	out.Data = data
	return out, nil
}

// failDecode answers 413 for bodies over their cap and 400 otherwise.
func failDecode(deps app.Deps, w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		httputil.Fail(deps.Log, w, fmt.Sprintf("request too large (max %d bytes)", tooLarge.Limit), err, http.StatusRequestEntityTooLarge)
		return
	}
	httputil.ValidationError(deps.Log, w, err)
}

// failAnalysis maps pipeline and transport errors onto HTTP statuses.
func failAnalysis(deps app.Deps, w http.ResponseWriter, err error) {
	var (
		perr   *parser.Error
		remote *queue.RemoteError
	)
	switch {
	case errors.Is(err, pipeline.ErrNoInput):
		httputil.Fail(deps.Log, w, "please either upload a file or enter document text", err, http.StatusBadRequest)
	case errors.Is(err, pipeline.ErrTooShort):
		httputil.Fail(deps.Log, w, pipeline.ErrTooShort.Error(), err, http.StatusBadRequest)
	case errors.Is(err, queue.ErrTooLarge):
		httputil.Fail(deps.Log, w, "document too large for the analysis service", err, http.StatusRequestEntityTooLarge)
	case errors.As(err, &perr):
		httputil.Fail(deps.Log, w, fmt.Sprintf("could not read %s document", perr.Format), err, http.StatusUnprocessableEntity)
	case errors.As(err, &remote):
		httputil.Fail(deps.Log, w, "analysis failed", err, http.StatusInternalServerError)
	default:
		httputil.Fail(deps.Log, w, "analysis service unavailable; please retry", err, http.StatusServiceUnavailable)
	}
}

func simplifyHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
		var req simplifyRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			failDecode(deps, w, err)
			return
		}

		res, cached := deps.Simplifier.Simplify(r.Context(), req.Clause, req.Settings.apply(deps.Config.Settings()))
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"simplified": res.String(),
			"ok":         res.OK(),
			"cached":     cached,
		})
	}
}

func chatHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
		var req chatRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			failDecode(deps, w, err)
			return
		}

		res := deps.Chat.Respond(r.Context(), req.Message, req.DocumentContext, req.ChatHistory, req.Settings.apply(deps.Config.Settings()))
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"response": res.String(),
			"ok":       res.OK(),
		})
	}
}
