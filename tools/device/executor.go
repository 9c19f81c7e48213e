// Package device executes tool calls against the local environment.
// Outward-facing actions (opening URLs, composing messages, sharing)
// are delegated to a Presenter so headless runs and tests can observe
// them without a display.
package device

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/100xA/deviceagent/tools"
)

// TextGenerator produces free text for the produce_text tool. llm.Client
// satisfies this through its GenerateText method.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Presenter surfaces outward-facing actions to the user. Returning an
// error marks the tool call failed.
type Presenter interface {
	OpenURL(ctx context.Context, u string) error
	ComposeMessage(ctx context.Context, recipient, message string) error
	Share(ctx context.Context, text string) error
}

// ConsolePresenter prints actions to stdout. Suitable for the CLI chat
// loop and scenario runs.
type ConsolePresenter struct{}

func (ConsolePresenter) OpenURL(_ context.Context, u string) error {
	fmt.Printf("[open] %s\n", u)
	return nil
}

func (ConsolePresenter) ComposeMessage(_ context.Context, recipient, message string) error {
	fmt.Printf("[message] to=%s body=%s\n", recipient, message)
	return nil
}

func (ConsolePresenter) Share(_ context.Context, text string) error {
	fmt.Printf("[share] %s\n", text)
	return nil
}

// Location is a fixed position reported by get_location.
type Location struct {
	Latitude  float64
	Longitude float64
	AccuracyM int
}

// Executor runs tool calls. Zero accuracy means location is unavailable.
type Executor struct {
	generator TextGenerator
	presenter Presenter
	location  Location
	logger    *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithLocation sets the position reported by get_location.
func WithLocation(loc Location) Option {
	return func(e *Executor) { e.location = loc }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) { e.logger = logger.With("category", "tool") }
}

// New creates an Executor. generator may be nil; produce_text then falls
// back to deterministic summaries.
func New(generator TextGenerator, presenter Presenter, opts ...Option) *Executor {
	e := &Executor{
		generator: generator,
		presenter: presenter,
		logger:    slog.Default().With("category", "tool"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

const summaryMarker = "Write a short note summarizing: "

// Execute implements tools.Executor.
func (e *Executor) Execute(ctx context.Context, call tools.Call) tools.Result {
	callID := call.ID
	if callID == "" {
		callID = uuid.New().String()
	}

	switch call.Name {
	case "produce_text":
		return e.produceText(ctx, callID, call.Parameters)
	case "search_web":
		query := stringParam(call.Parameters, "query")
		u := "https://www.google.com/search?q=" + url.QueryEscape(query)
		if err := e.presenter.OpenURL(ctx, u); err != nil {
			return failure(callID, "Search failed", "search_failed")
		}
		return success(callID, "Opened search", nil)
	case "open_url":
		raw := strings.TrimSpace(stringParam(call.Parameters, "urlString"))
		if !strings.HasPrefix(strings.ToLower(raw), "http://") && !strings.HasPrefix(strings.ToLower(raw), "https://") {
			raw = "https://" + raw
		}
		if _, err := url.Parse(raw); err != nil {
			return failure(callID, "Invalid URL", "invalid_url")
		}
		if err := e.presenter.OpenURL(ctx, raw); err != nil {
			return failure(callID, "Failed to open URL", "invalid_url")
		}
		return success(callID, "Opened URL", nil)
	case "get_location":
		loc := e.location
		if loc.AccuracyM <= 0 {
			return tools.Result{
				ToolCallID: callID,
				Success:    false,
				Result:     "lat: 0, lon: 0, accuracy: 0m",
				Error:      "location_unavailable",
				Artifacts: map[string]string{
					"latitude":   "0",
					"longitude":  "0",
					"accuracy_m": "0",
				},
			}
		}
		return success(callID,
			fmt.Sprintf("lat: %v, lon: %v, accuracy: %dm", loc.Latitude, loc.Longitude, loc.AccuracyM),
			map[string]string{
				"latitude":   fmt.Sprintf("%v", loc.Latitude),
				"longitude":  fmt.Sprintf("%v", loc.Longitude),
				"accuracy_m": fmt.Sprintf("%d", loc.AccuracyM),
			})
	case "send_message":
		recipient := stringParam(call.Parameters, "recipient")
		message := stringParam(call.Parameters, "message")
		if err := e.presenter.ComposeMessage(ctx, recipient, message); err != nil {
			return failure(callID, "Composer unavailable", "composer_unavailable")
		}
		return success(callID, "Composer presented", nil)
	case "send_whatsapp":
		message := stringParam(call.Parameters, "message")
		phone := stringParam(call.Parameters, "phone")
		u := "https://wa.me/?text=" + url.QueryEscape(message)
		if phone != "" {
			u = "https://wa.me/" + strings.TrimPrefix(phone, "+") + "?text=" + url.QueryEscape(message)
		}
		if err := e.presenter.OpenURL(ctx, u); err != nil {
			return failure(callID, "Fallback opened", "whatsapp_not_available")
		}
		return success(callID, "Opened WhatsApp", nil)
	case "share_content":
		text := stringParam(call.Parameters, "text")
		if err := e.presenter.Share(ctx, text); err != nil {
			return failure(callID, "Share failed", "share_failed")
		}
		return success(callID, "Share sheet opened", nil)
	case "wait":
		secs := 2
		if v, ok := call.Parameters["seconds"]; ok {
			if n, ok := v.AsInt(); ok && n > 0 {
				secs = int(n)
			}
		}
		select {
		case <-time.After(time.Duration(secs) * time.Second):
		case <-ctx.Done():
		}
		return success(callID, fmt.Sprintf("Waited %ds", secs), nil)
	default:
		return failure(callID, "Unknown tool", "unknown_tool")
	}
}

func (e *Executor) produceText(ctx context.Context, callID string, params tools.Params) tools.Result {
	prompt := stringParam(params, "prompt")

	var generated string
	if e.generator != nil {
		out, err := e.generator.GenerateText(ctx, prompt, 1024)
		if err != nil {
			e.logger.Debug("Text generation failed, using fallback", "error", err)
		} else {
			generated = out
		}
	}

	text := strings.TrimSpace(generated)
	if text == "" {
		text = fallbackText(prompt)
	} else {
		text = generated
	}

	return success(callID, "Generated text", map[string]string{"text": text})
}

// fallbackText derives a deterministic note from the prompt when the
// model produced nothing usable.
func fallbackText(prompt string) string {
	if idx := strings.Index(prompt, summaryMarker); idx >= 0 {
		tail := strings.TrimSpace(prompt[idx+len(summaryMarker):])
		if tail != "" {
			return "Summary: " + tail
		}
	}
	if prompt == "" {
		return "Generated note"
	}
	return "Summary: " + prompt
}

func stringParam(params tools.Params, key string) string {
	v, ok := params[key]
	if !ok {
		return ""
	}
	s, _ := v.AsString()
	return s
}

func success(callID, result string, artifacts map[string]string) tools.Result {
	return tools.Result{ToolCallID: callID, Success: true, Result: result, Artifacts: artifacts}
}

func failure(callID, result, errCode string) tools.Result {
	return tools.Result{ToolCallID: callID, Success: false, Result: result, Error: errCode}
}
