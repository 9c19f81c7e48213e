package scenario

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/100xA/deviceagent/memory"
)

// scriptedAgent appends one scripted assistant reply per ProcessInput.
type scriptedAgent struct {
	mem     *memory.Memory
	replies []string
	calls   int
	err     error
}

func newScriptedAgent(replies ...string) *scriptedAgent {
	return &scriptedAgent{mem: memory.New(), replies: replies}
}

func (a *scriptedAgent) ProcessInput(_ context.Context, text string) error {
	a.mem.Append(memory.RoleUser, text)
	reply := "done"
	if a.calls < len(a.replies) {
		reply = a.replies[a.calls]
	}
	a.calls++
	a.mem.Append(memory.RoleAssistant, reply)
	return a.err
}

func (a *scriptedAgent) Memory() *memory.Memory { return a.mem }

type fixedCounter struct{ n int }

func (c *fixedCounter) Calls() int { return c.n }

// tickingCounter increments on every read, so every repetition looks
// like it consulted the model.
type tickingCounter struct{ n int }

func (c *tickingCounter) Calls() int {
	c.n++
	return c.n
}

func TestRunCountsSuccesses(t *testing.T) {
	agent := newScriptedAgent("All steps completed.", "Canceled.", "Step skipped due to invalid parameters.")
	runner := NewRunner(agent)

	res := runner.Run(context.Background(), Scenario{Name: "mixed", Input: "do it", Repetitions: 3})

	assert.Equal(t, 3, res.Runs)
	assert.InDelta(t, 1.0/3.0, res.SuccessRate, 0.001)
	assert.Equal(t, 3, agent.calls)
}

func TestRunDefaultsToOneRepetition(t *testing.T) {
	agent := newScriptedAgent("ok")
	runner := NewRunner(agent)

	res := runner.Run(context.Background(), Scenario{Name: "single", Input: "hi"})

	assert.Equal(t, 1, res.Runs)
	assert.Equal(t, 1, agent.calls)
}

func TestRunProcessErrorCountsAsRun(t *testing.T) {
	agent := newScriptedAgent("ok")
	agent.err = errors.New("busy")
	runner := NewRunner(agent)

	res := runner.Run(context.Background(), Scenario{Name: "erroring", Input: "hi", Repetitions: 2})

	assert.Equal(t, 2, res.Runs)
}

func TestRunModelUsePercentage(t *testing.T) {
	agent := newScriptedAgent("ok", "ok")

	res := NewRunner(agent, WithModelUseCounter(&fixedCounter{n: 7})).
		Run(context.Background(), Scenario{Name: "no_model", Input: "hi", Repetitions: 2})
	assert.Equal(t, 0.0, res.ModelUsed)

	agent = newScriptedAgent("ok", "ok")
	res = NewRunner(agent, WithModelUseCounter(&tickingCounter{})).
		Run(context.Background(), Scenario{Name: "always_model", Input: "hi", Repetitions: 2})
	assert.Equal(t, 1.0, res.ModelUsed)
}

func TestRunAllPreservesOrder(t *testing.T) {
	agent := newScriptedAgent()
	runner := NewRunner(agent)

	results := runner.RunAll(context.Background(), []Scenario{
		{Name: "first", Input: "a"},
		{Name: "second", Input: "b"},
	})

	require.Len(t, results, 2)
	assert.Equal(t, "first", results[0].Name)
	assert.Equal(t, "second", results[1].Name)
}

func TestLastAssistantIndicatesSuccess(t *testing.T) {
	tests := []struct {
		reply string
		want  bool
	}{
		{"All steps completed.", true},
		{"Opened a web search.", true},
		{"Canceled.", false},
		{"Step skipped due to invalid parameters.", false},
		{"Invalid link.", false},
	}
	for _, tt := range tests {
		mem := memory.New()
		mem.Append(memory.RoleUser, "input")
		mem.Append(memory.RoleAssistant, tt.reply)
		mem.Append(memory.RoleToolResult, "trailing tool output")
		if got := lastAssistantIndicatesSuccess(mem); got != tt.want {
			t.Errorf("%q: success = %v, want %v", tt.reply, got, tt.want)
		}
	}

	if lastAssistantIndicatesSuccess(memory.New()) {
		t.Error("empty transcript must not count as success")
	}
}

func TestPercentile(t *testing.T) {
	xs := []int{50, 10, 40, 20, 30}

	assert.Equal(t, 30, percentile(xs, 0.5))
	assert.Equal(t, 40, percentile(xs, 0.9))
	assert.Equal(t, 50, percentile(xs, 1.0))
	assert.Equal(t, 10, percentile(xs, 0.0))
	assert.Equal(t, 0, percentile(nil, 0.5))
}

func TestMarkdownTable(t *testing.T) {
	out := MarkdownTable([]Result{
		{Name: "simple_search", Runs: 3, P50Millis: 12, P90Millis: 20, P95Millis: 22, SuccessRate: 1, ModelUsed: 0.5},
	})

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "| Scenario |")
	assert.Contains(t, lines[2], "| simple_search | 3 | 12 | 20 | 22 | 100 | 50 |")
}

func TestCSV(t *testing.T) {
	out := CSV([]Result{
		{Name: "open_link", Runs: 3, P50Millis: 5, P90Millis: 9, P95Millis: 9, SuccessRate: 0.67, ModelUsed: 0},
	})

	assert.True(t, strings.HasPrefix(out, "scenario,runs,"))
	assert.Contains(t, out, "open_link,3,5,9,9,0.67,0.00")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	content := `scenarios:
  - name: simple_search
    input: search for battery saving tips
    repetitions: 3
  - name: location
    input: where am i
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	scenarios, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "simple_search", scenarios[0].Name)
	assert.Equal(t, 3, scenarios[0].Repetitions)
	assert.Equal(t, 0, scenarios[1].Repetitions)
}

func TestLoadFileRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("scenarios: []\n"), 0o644))
	_, err := LoadFile(empty)
	assert.Error(t, err)

	nameless := filepath.Join(dir, "nameless.yaml")
	require.NoError(t, os.WriteFile(nameless, []byte("scenarios:\n  - input: hi\n"), 0o644))
	_, err = LoadFile(nameless)
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
