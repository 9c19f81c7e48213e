package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/100xA/deviceagent/metrics"
)

// maxRecordedResultLength caps the result preview written to the log.
const maxRecordedResultLength = 200

// RecordingExecutor wraps an Executor and records every call: a structured
// log line with timing and outcome, plus tool metrics. The wrapped result
// passes through untouched.
type RecordingExecutor struct {
	inner  Executor
	logger *slog.Logger
}

// NewRecordingExecutor wraps an executor with call recording.
func NewRecordingExecutor(inner Executor, logger *slog.Logger) *RecordingExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordingExecutor{
		inner:  inner,
		logger: logger.With("category", "tool"),
	}
}

// Execute runs the underlying executor and records the call.
func (r *RecordingExecutor) Execute(ctx context.Context, call Call) Result {
	startedAt := time.Now()
	result := r.inner.Execute(ctx, call)
	elapsed := time.Since(startedAt)

	metrics.ObserveTool(call.Name, elapsed, result.Success)

	preview := result.Result
	if len(preview) > maxRecordedResultLength {
		preview = preview[:maxRecordedResultLength] + "..."
	}

	level := slog.LevelInfo
	if !result.Success {
		level = slog.LevelWarn
	}
	r.logger.Log(ctx, level, "Tool executed",
		"tool", call.Name,
		"call_id", call.ID,
		"duration_ms", elapsed.Milliseconds(),
		"success", result.Success,
		"result", preview,
		"error", result.Error)

	return result
}
