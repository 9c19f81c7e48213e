// Package metrics exposes Prometheus collectors for the agent core:
// request counts by intent, plan outcomes, step and tool execution, and
// model-call degradations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts processed inputs by classified intent.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "deviceagent",
		Name:      "requests_total",
		Help:      "Processed user inputs by classified intent.",
	}, []string{"intent"})

	// RequestDuration observes end-to-end request handling time.
	RequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "deviceagent",
		Name:      "request_duration_seconds",
		Help:      "End-to-end duration of one processed input.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	// StepsTotal counts scheduled plan steps by outcome
	// (executed, failed, skipped).
	StepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "deviceagent",
		Name:      "plan_steps_total",
		Help:      "Plan steps by outcome.",
	}, []string{"outcome"})

	// PlanHaltsTotal counts plans halted on unsatisfiable or cyclic
	// dependencies.
	PlanHaltsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "deviceagent",
		Name:      "plan_halts_total",
		Help:      "Plans halted before completion due to stuck dependencies.",
	})

	// ModelDegradationsTotal counts model calls that degraded to no result
	// (timeout, transport failure, rejected proposal).
	ModelDegradationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "deviceagent",
		Name:      "model_degradations_total",
		Help:      "Model calls degraded to no result, by call kind.",
	}, []string{"kind"})

	toolDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "deviceagent",
		Name:      "tool_duration_seconds",
		Help:      "Tool execution duration by tool name.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
	}, []string{"tool"})

	toolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "deviceagent",
		Name:      "tool_calls_total",
		Help:      "Tool calls by tool name and success.",
	}, []string{"tool", "success"})
)

// Step outcome label values.
const (
	StepExecuted = "executed"
	StepFailed   = "failed"
	StepSkipped  = "skipped"
)

// ObserveTool records one tool execution.
func ObserveTool(tool string, elapsed time.Duration, success bool) {
	toolDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
	ok := "false"
	if success {
		ok = "true"
	}
	toolCalls.WithLabelValues(tool, ok).Inc()
}
