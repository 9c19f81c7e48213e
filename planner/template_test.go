package planner

import (
	"testing"

	"github.com/100xA/deviceagent/tools"
)

func TestResolveTemplates(t *testing.T) {
	outputs := map[string]tools.Result{
		"step-1": {Success: true, Artifacts: map[string]string{"text": "hello world"}},
		"step-2": {Success: true, Artifacts: map[string]string{"latitude": "52.52", "longitude": "13.40"}},
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "single reference",
			input: "${step-1.artifacts.text}",
			want:  "hello world",
		},
		{
			name:  "embedded reference",
			input: "note: ${step-1.artifacts.text}!",
			want:  "note: hello world!",
		},
		{
			name:  "multiple references",
			input: "${step-2.artifacts.latitude},${step-2.artifacts.longitude}",
			want:  "52.52,13.40",
		},
		{
			name:  "unknown step becomes empty",
			input: "x${missing.artifacts.text}y",
			want:  "xy",
		},
		{
			name:  "unknown key becomes empty",
			input: "${step-1.artifacts.nope}",
			want:  "",
		},
		{
			name:  "no reference untouched",
			input: "plain text $notatemplate",
			want:  "plain text $notatemplate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := tools.Params{"text": tools.String(tt.input)}
			resolved := ResolveTemplates(params, outputs)
			got, _ := resolved["text"].AsString()
			if got != tt.want {
				t.Errorf("resolve(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolveTemplatesNonStringPassThrough(t *testing.T) {
	params := tools.Params{
		"seconds": tools.Int(3),
		"text":    tools.String("${a.artifacts.text}"),
	}
	resolved := ResolveTemplates(params, map[string]tools.Result{
		"a": {Success: true, Artifacts: map[string]string{"text": "ok"}},
	})

	if n, ok := resolved["seconds"].AsInt(); !ok || n != 3 {
		t.Errorf("non-string parameter should pass through unchanged")
	}
	if s, _ := resolved["text"].AsString(); s != "ok" {
		t.Errorf("string parameter should resolve, got %q", s)
	}
}

func TestResolveTemplatesDoesNotMutateInput(t *testing.T) {
	params := tools.Params{"text": tools.String("${a.artifacts.text}")}
	ResolveTemplates(params, map[string]tools.Result{
		"a": {Success: true, Artifacts: map[string]string{"text": "resolved"}},
	})

	if s, _ := params["text"].AsString(); s != "${a.artifacts.text}" {
		t.Errorf("input params mutated: %q", s)
	}
}
