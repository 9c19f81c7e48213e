// Package scenario benchmarks end-to-end request handling: each
// scenario replays one input a number of times and reports latency
// percentiles, success rate, and how often the model was consulted.
package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/100xA/deviceagent/memory"
)

// Scenario is one benchmarked input.
type Scenario struct {
	Name        string `yaml:"name"`
	Input       string `yaml:"input"`
	Repetitions int    `yaml:"repetitions"`
}

// Result aggregates the runs of one scenario.
type Result struct {
	Name        string  `json:"name"`
	Runs        int     `json:"runs"`
	P50Millis   int     `json:"p50_ms"`
	P90Millis   int     `json:"p90_ms"`
	P95Millis   int     `json:"p95_ms"`
	SuccessRate float64 `json:"successRate"`
	ModelUsed   float64 `json:"modelUsedPct"`
}

// Agent is the surface the runner drives. agent.Runtime implements it.
type Agent interface {
	ProcessInput(ctx context.Context, text string) error
	Memory() *memory.Memory
}

// ModelUseCounter reports how many model calls have been made. Optional;
// used to compute the model-used percentage per scenario.
type ModelUseCounter interface {
	Calls() int
}

// Runner replays scenarios against an agent.
type Runner struct {
	agent   Agent
	counter ModelUseCounter
	logger  *slog.Logger

	// cooldown between repetitions, mirrors pacing used on-device.
	cooldown time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithModelUseCounter wires a model call counter.
func WithModelUseCounter(c ModelUseCounter) Option {
	return func(r *Runner) { r.counter = c }
}

// WithCooldown sets the pause between repetitions.
func WithCooldown(d time.Duration) Option {
	return func(r *Runner) { r.cooldown = d }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger.With("category", "scenario") }
}

// NewRunner creates a Runner.
func NewRunner(agent Agent, opts ...Option) *Runner {
	r := &Runner{
		agent:  agent,
		logger: slog.Default().With("category", "scenario"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one scenario. A repetition counts as successful when the
// final assistant message signals neither cancellation nor invalid
// input.
func (r *Runner) Run(ctx context.Context, s Scenario) Result {
	reps := s.Repetitions
	if reps <= 0 {
		reps = 1
	}

	var durations []int
	successes := 0
	modelUses := 0

	for i := 0; i < reps; i++ {
		callsBefore := 0
		if r.counter != nil {
			callsBefore = r.counter.Calls()
		}

		start := time.Now()
		if err := r.agent.ProcessInput(ctx, s.Input); err != nil {
			r.logger.Warn("Scenario repetition failed", "scenario", s.Name, "error", err)
		}
		durations = append(durations, int(time.Since(start).Milliseconds()))

		if r.counter != nil && r.counter.Calls() > callsBefore {
			modelUses++
		}
		if lastAssistantIndicatesSuccess(r.agent.Memory()) {
			successes++
		}

		if r.cooldown > 0 && i < reps-1 {
			select {
			case <-time.After(r.cooldown):
			case <-ctx.Done():
			}
		}
	}

	return Result{
		Name:        s.Name,
		Runs:        reps,
		P50Millis:   percentile(durations, 0.5),
		P90Millis:   percentile(durations, 0.9),
		P95Millis:   percentile(durations, 0.95),
		SuccessRate: float64(successes) / float64(reps),
		ModelUsed:   float64(modelUses) / float64(reps),
	}
}

// RunAll executes scenarios in order.
func (r *Runner) RunAll(ctx context.Context, scenarios []Scenario) []Result {
	results := make([]Result, 0, len(scenarios))
	for _, s := range scenarios {
		r.logger.Info("Running scenario", "name", s.Name, "repetitions", s.Repetitions)
		results = append(results, r.Run(ctx, s))
	}
	return results
}

func lastAssistantIndicatesSuccess(mem *memory.Memory) bool {
	msgs := mem.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role != memory.RoleAssistant {
			continue
		}
		lower := strings.ToLower(msgs[i].Content)
		return !strings.Contains(lower, "canceled") && !strings.Contains(lower, "invalid")
	}
	return false
}

func percentile(xs []int, p float64) int {
	if len(xs) == 0 {
		return 0
	}
	s := make([]int, len(xs))
	copy(s, xs)
	sort.Ints(s)
	i := int(float64(len(s)-1) * p)
	if i < 0 {
		i = 0
	}
	if i >= len(s) {
		i = len(s) - 1
	}
	return s[i]
}

// MarkdownTable renders results as a GitHub-flavored markdown table.
func MarkdownTable(results []Result) string {
	var b strings.Builder
	b.WriteString("| Scenario | Runs | p50 (ms) | p90 (ms) | p95 (ms) | Success (%) | Model Used (%) |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|\n")
	for _, r := range results {
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %d | %.0f | %.0f |\n",
			r.Name, r.Runs, r.P50Millis, r.P90Millis, r.P95Millis,
			r.SuccessRate*100, r.ModelUsed*100)
	}
	return strings.TrimRight(b.String(), "\n")
}

// CSV renders results as comma-separated values with a header row.
func CSV(results []Result) string {
	var b strings.Builder
	b.WriteString("scenario,runs,p50_ms,p90_ms,p95_ms,success_rate,model_used_pct\n")
	for _, r := range results {
		fmt.Fprintf(&b, "%s,%d,%d,%d,%d,%.2f,%.2f\n",
			r.Name, r.Runs, r.P50Millis, r.P90Millis, r.P95Millis,
			r.SuccessRate, r.ModelUsed)
	}
	return b.String()
}

// Defaults are the stock scenarios exercised by the scenario command.
func Defaults() []Scenario {
	return []Scenario{
		{Name: "simple_search", Input: "search for battery saving tips", Repetitions: 3},
		{Name: "open_link", Input: "open example.com", Repetitions: 3},
		{Name: "location", Input: "where am i", Repetitions: 3},
		{Name: "note_chain", Input: "write a note about the meeting and share it", Repetitions: 3},
		{Name: "conversation", Input: "explain how tides work", Repetitions: 3},
	}
}
