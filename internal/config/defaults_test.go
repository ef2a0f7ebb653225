package config

import (
	"strings"
	"testing"
)

func TestWeights_ByQuantization(t *testing.T) {
	c := Defaults()
	repo, file, err := c.Weights()
	if err != nil { t.Fatalf("weights: %v", err) }
	if repo != "google/gemma-3-4b-it-qat-q4_0-gguf" || file != "gemma-3-4b-it-q4_0.gguf" {
		t.Fatalf("repo=%s file=%s", repo, file)
	}
	c.Quantization = "Q8_0"
	if _, file, _ = c.Weights(); file != "gemma-3-4b-it-Q8_0.gguf" { t.Fatalf("file=%s", file) }
	c.Quantization = "nf4"
	if _, _, err := c.Weights(); err == nil { t.Fatalf("expected unknown quantization error") }
}

func TestWeights_ExplicitWins(t *testing.T) {
	c := Config{Quantization: "nf4", HubRepo: "me/repo", HubFile: "w.gguf"}
	repo, file, err := c.Weights()
	if err != nil || repo != "me/repo" || file != "w.gguf" { t.Fatalf("repo=%s file=%s err=%v", repo, file, err) }
}

func TestEffectiveSystemPrompt(t *testing.T) {
	c := Defaults()
	p := c.EffectiveSystemPrompt()
	if !strings.HasPrefix(p, "DiffEQGemma is a helpful assistant") || strings.Count(p, "DiffEQGemma") != 5 {
		t.Fatalf("prompt=%q", p)
	}
	c.SystemPrompt = "  Be brief. "
	if got := c.EffectiveSystemPrompt(); got != "Be brief." { t.Fatalf("got %q", got) }
}

func TestValidate(t *testing.T) {
	if err := Defaults().Validate(); err != nil { t.Fatalf("defaults invalid: %v", err) }
	cases := []Config{
		Merge(Defaults(), Config{Backend: "torch"}),
		Merge(Defaults(), Config{Backend: BackendOpenAI}),
		Merge(Defaults(), Config{Quantization: "int4"}),
		Merge(Defaults(), Config{MaxQueueDepth: 1, MaxConcurrency: 2}),
	}
	for i, c := range cases {
		if err := c.Validate(); err == nil { t.Fatalf("case %d: expected error", i) }
	}
	bad := Defaults()
	bad.MaxNewTokens = 0
	if err := bad.Validate(); err == nil { t.Fatalf("expected max_new_tokens error") }
}
