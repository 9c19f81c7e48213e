package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFixtures_BaseOnly(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "mock-planner.json", `{"steps":[],"confidence":0.9}`)
	writeFixture(t, dir, "mock-selector.json", `{"name":"search_web","parameters":{},"confidence":0.8}`)

	fixtures, err := loadFixtures(dir)
	if err != nil {
		t.Fatalf("loadFixtures: %v", err)
	}

	if len(fixtures) != 2 {
		t.Fatalf("expected 2 models, got %d", len(fixtures))
	}
	for model, seq := range fixtures {
		if len(seq) != 1 {
			t.Errorf("model %q: expected 1 fixture, got %d", model, len(seq))
		}
	}
}

func TestLoadFixtures_Sequential(t *testing.T) {
	dir := t.TempDir()

	writeFixture(t, dir, "mock-planner.1.json", `{"steps":[{"name":"get_location"}],"confidence":0.9}`)
	writeFixture(t, dir, "mock-planner.2.json", `{"steps":[{"name":"search_web"}],"confidence":0.9}`)
	writeFixture(t, dir, "mock-planner.json", `{"steps":[],"confidence":0.0}`)

	writeFixture(t, dir, "mock-selector.json", `{"name":"open_url"}`)

	fixtures, err := loadFixtures(dir)
	if err != nil {
		t.Fatalf("loadFixtures: %v", err)
	}

	plannerSeq := fixtures["mock-planner"]
	if len(plannerSeq) != 3 {
		t.Fatalf("mock-planner: expected 3 fixtures, got %d", len(plannerSeq))
	}
	if !strings.Contains(plannerSeq[0], "get_location") {
		t.Errorf("fixture[0] should be get_location, got: %s", plannerSeq[0])
	}
	if !strings.Contains(plannerSeq[1], "search_web") {
		t.Errorf("fixture[1] should be search_web, got: %s", plannerSeq[1])
	}
	if !strings.Contains(plannerSeq[2], `"confidence":0.0`) {
		t.Errorf("fixture[2] should be the base fallback, got: %s", plannerSeq[2])
	}

	if len(fixtures["mock-selector"]) != 1 {
		t.Fatalf("mock-selector: expected 1 fixture, got %d", len(fixtures["mock-selector"]))
	}
}

func TestLoadFixtures_EmptyDir(t *testing.T) {
	dir := t.TempDir()

	_, err := loadFixtures(dir)
	if err == nil {
		t.Fatal("expected error for empty directory")
	}
}

func TestSequentialFixtureSelection(t *testing.T) {
	fixtures := map[string][]string{
		"mock-planner": {
			`{"steps":[{"name":"get_location"}],"confidence":0.9}`,
			`{"steps":[],"confidence":0.0}`,
		},
	}

	s := newServer(fixtures)

	resp1 := doCompletion(t, s, "mock-planner")
	if !strings.Contains(resp1, "get_location") {
		t.Errorf("call 1: expected get_location, got: %s", resp1)
	}

	resp2 := doCompletion(t, s, "mock-planner")
	if !strings.Contains(resp2, `"confidence":0.0`) {
		t.Errorf("call 2: expected empty plan, got: %s", resp2)
	}

	// Beyond the sequence the last fixture repeats.
	resp3 := doCompletion(t, s, "mock-planner")
	if !strings.Contains(resp3, `"confidence":0.0`) {
		t.Errorf("call 3: expected repeat of last fixture, got: %s", resp3)
	}
}

func TestStatsEndpoint(t *testing.T) {
	fixtures := map[string][]string{
		"mock-planner":  {`{"steps":[],"confidence":0.0}`},
		"mock-selector": {`{"name":"search_web","parameters":{"query":"x"},"confidence":0.8}`},
	}

	s := newServer(fixtures)

	doCompletion(t, s, "mock-planner")
	doCompletion(t, s, "mock-planner")
	doCompletion(t, s, "mock-selector")

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	w := httptest.NewRecorder()
	s.handleStats(w, req)

	var stats struct {
		TotalCalls   int64          `json:"total_calls"`
		CallsByModel map[string]int `json:"calls_by_model"`
	}
	if err := json.NewDecoder(w.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}

	if stats.TotalCalls != 3 {
		t.Errorf("total_calls: expected 3, got %d", stats.TotalCalls)
	}
	if stats.CallsByModel["mock-planner"] != 2 {
		t.Errorf("mock-planner calls: expected 2, got %d", stats.CallsByModel["mock-planner"])
	}
	if stats.CallsByModel["mock-selector"] != 1 {
		t.Errorf("mock-selector calls: expected 1, got %d", stats.CallsByModel["mock-selector"])
	}
}

func TestStripMockPrefix(t *testing.T) {
	fixtures := map[string][]string{
		"planner": {`{"steps":[],"confidence":0.9}`},
	}

	s := newServer(fixtures)

	resp := doCompletion(t, s, "mock-planner")
	if !strings.Contains(resp, "steps") {
		t.Errorf("expected mock-prefix stripping to resolve, got: %s", resp)
	}
}

func TestUnknownModel(t *testing.T) {
	s := newServer(map[string][]string{"planner": {`{}`}})

	body := strings.NewReader(`{"model":"missing","messages":[{"role":"user","content":"x"}]}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", body)
	w := httptest.NewRecorder()
	s.handleChatCompletions(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown model, got %d", w.Code)
	}
}

func TestNumberedFileRegex(t *testing.T) {
	tests := []struct {
		filename string
		wantBase string
		wantNum  string
		match    bool
	}{
		{"mock-planner.1.json", "mock-planner", "1", true},
		{"mock-planner.10.json", "mock-planner", "10", true},
		{"mock-planner.json", "", "", false},
		{"mock-selector.json", "", "", false},
	}

	for _, tt := range tests {
		matches := numberedFileRe.FindStringSubmatch(tt.filename)
		if tt.match {
			if matches == nil {
				t.Errorf("%s: expected match, got nil", tt.filename)
				continue
			}
			if matches[1] != tt.wantBase {
				t.Errorf("%s: base=%q, want %q", tt.filename, matches[1], tt.wantBase)
			}
			if matches[2] != tt.wantNum {
				t.Errorf("%s: num=%q, want %q", tt.filename, matches[2], tt.wantNum)
			}
		} else if matches != nil {
			t.Errorf("%s: expected no match, got %v", tt.filename, matches)
		}
	}
}

// --- helpers ---

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func doCompletion(t *testing.T, s *server, model string) string {
	t.Helper()
	body := strings.NewReader(`{"model":"` + model + `","messages":[{"role":"user","content":"test"}]}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", body)
	w := httptest.NewRecorder()
	s.handleChatCompletions(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("model %s: status %d, body: %s", model, w.Code, w.Body.String())
	}

	var resp chatResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Choices) == 0 {
		t.Fatalf("no choices in response")
	}
	return resp.Choices[0].Message.Content
}
