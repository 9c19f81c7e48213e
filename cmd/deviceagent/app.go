package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/100xA/deviceagent/agent"
	"github.com/100xA/deviceagent/config"
	"github.com/100xA/deviceagent/confirm"
	"github.com/100xA/deviceagent/llm"
	"github.com/100xA/deviceagent/logging"
	"github.com/100xA/deviceagent/memory"
	"github.com/100xA/deviceagent/planner"
	"github.com/100xA/deviceagent/scenario"
	"github.com/100xA/deviceagent/tools"
	"github.com/100xA/deviceagent/tools/device"
)

// app holds the wired runtime for one CLI invocation.
type app struct {
	cfg       *config.Config
	runtime   *agent.Runtime
	inference *countingInference
	ring      *logging.RingHandler
	closeFns  []func()
}

func newApp(configPath, logLevel string, confirmer confirm.Confirmer) (*app, error) {
	ring := logging.NewRingHandler(0, slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(logLevel),
	}))
	logger := slog.New(ring)
	slog.SetDefault(logger)

	cfg, err := loadConfig(configPath, logger)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	client := llm.NewClient(llm.Endpoint{
		Provider: cfg.Model.Provider,
		URL:      cfg.Model.Endpoint,
		Model:    cfg.Model.Name,
	},
		llm.WithLogger(logger),
		llm.WithTemperature(cfg.Model.Temperature),
	)
	inference := &countingInference{client: client}

	a := &app{cfg: cfg, inference: inference, ring: ring}

	memOpts := []memory.Option{memory.WithCapacity(cfg.Agent.MemoryCapacity)}
	if cfg.NATS.URL != "" {
		sink, err := memory.ConnectNATSSink(cfg.NATS.URL, cfg.NATS.Subject, logger)
		if err != nil {
			logger.Warn("Transcript sink unavailable", "url", cfg.NATS.URL, "error", err)
		} else {
			memOpts = append(memOpts, memory.WithSink(sink))
		}
	}
	mem := memory.New(memOpts...)

	registry := tools.DefaultRegistry()
	executor := tools.NewRecordingExecutor(
		device.New(inference, device.ConsolePresenter{},
			device.WithLocation(device.Location{
				Latitude:  cfg.Location.Latitude,
				Longitude: cfg.Location.Longitude,
				AccuracyM: cfg.Location.AccuracyM,
			}),
			device.WithLogger(logger),
		),
		logger,
	)

	pl := planner.New(inference, registry,
		planner.WithLogger(logger),
		planner.WithBackfillTimeout(cfg.Planner.BackfillTimeout),
		planner.WithMaxProposedSteps(cfg.Planner.MaxProposedSteps),
	)

	a.runtime = agent.New(pl, inference, executor, registry, confirmer, mem,
		agent.WithLogger(logger),
		agent.WithToolSelectTimeout(cfg.Agent.ToolSelectTimeout),
		agent.WithMessageCallback(printTranscriptMessage),
	)

	return a, nil
}

func (a *app) scenarioRunner() *scenario.Runner {
	return scenario.NewRunner(a.runtime,
		scenario.WithModelUseCounter(a.inference),
		scenario.WithLogger(slog.Default()),
	)
}

func (a *app) Close() {
	for _, fn := range a.closeFns {
		fn()
	}
}

// lineSource owns an input stream and hands out lines one at a time.
// The chat prompt and confirmation prompts share a single source, so a
// confirmation abandoned on context cancellation leaves the next line
// queued for whoever asks next instead of losing it to a stale reader.
type lineSource struct {
	lines chan string
}

func newLineSource(r io.Reader) *lineSource {
	ls := &lineSource{lines: make(chan string)}
	go func() {
		defer close(ls.lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			ls.lines <- sc.Text()
		}
	}()
	return ls
}

// ReadLine blocks until a line, end of input, or context cancellation.
// ok is false once the stream is exhausted.
func (l *lineSource) ReadLine(ctx context.Context) (line string, ok bool, err error) {
	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case line, ok = <-l.lines:
		return line, ok, nil
	}
}

// terminalConfirmer prompts on the shared input source for plan and
// tool approval.
type terminalConfirmer struct {
	input *lineSource
}

func (c terminalConfirmer) Request(ctx context.Context, kind confirm.Kind, description string) (bool, error) {
	fmt.Printf("%s [y/N]: ", description)
	answer, ok, err := c.input.ReadLine(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	answer = strings.TrimSpace(answer)
	return answer == "y" || answer == "Y" || answer == "yes", nil
}

// countingInference wraps the model client and counts calls so scenario
// runs can report how often the model was consulted.
type countingInference struct {
	client *llm.Client

	mu    sync.Mutex
	calls int
}

func (c *countingInference) bump() {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}

// Calls reports the total model calls made so far.
func (c *countingInference) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *countingInference) GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error) {
	c.bump()
	return c.client.GenerateText(ctx, prompt, maxTokens)
}

func (c *countingInference) ProposeToolCall(ctx context.Context, input string, reg *tools.Registry) (*llm.ToolSelection, error) {
	c.bump()
	return c.client.ProposeToolCall(ctx, input, reg)
}

func (c *countingInference) ProposePlan(ctx context.Context, input string, reg *tools.Registry, maxSteps int) ([]llm.ProposedStep, error) {
	c.bump()
	return c.client.ProposePlan(ctx, input, reg, maxSteps)
}
