package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"gemmad/internal/backend/gemini"
	"gemmad/internal/backend/openaicompat"
	"gemmad/internal/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// run executes the root command with args and returns the resolved app.
func run(t *testing.T, args ...string) (*app, string) {
	t.Helper()
	a := &app{}
	root := newRootCmd(a)
	var out, logs bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("execute %v: %v", args, err)
	}
	return a, out.String()
}

func TestApplyFlags_OnlyExplicitFlagsOverride(t *testing.T) {
	serve := newServeCmd(&app{})
	fs := serve.Flags()
	if err := fs.Parse([]string{"--max-new-tokens=64", "--cors-origins= https://a.example, ,https://b.example", "--generate-timeout=90s"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	base := config.Defaults()
	base.Addr = ":9999"
	got, err := applyFlags(base, fs)
	if err != nil {
		t.Fatalf("applyFlags: %v", err)
	}
	if got.MaxNewTokens != 64 {
		t.Fatalf("max_new_tokens=%d", got.MaxNewTokens)
	}
	if got.Addr != ":9999" {
		t.Fatalf("unset --addr overrode config: %q", got.Addr)
	}
	if !got.CORSEnabled || len(got.CORSOrigins) != 2 || got.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("cors: %v %v", got.CORSEnabled, got.CORSOrigins)
	}
	if got.GenerateTimeoutSeconds != 90 {
		t.Fatalf("generate timeout=%d", got.GenerateTimeoutSeconds)
	}
}

func TestApplyFlags_GenerateTimeoutWholeSeconds(t *testing.T) {
	cases := []struct {
		arg     string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{"2m", 120, false},
		{"500ms", 0, true},
		{"1500ms", 0, true},
		{"-5s", 0, true},
	}
	for _, c := range cases {
		fs := newServeCmd(&app{}).Flags()
		if err := fs.Parse([]string{"--generate-timeout=" + c.arg}); err != nil {
			t.Fatalf("%s: parse: %v", c.arg, err)
		}
		base := config.Defaults()
		base.GenerateTimeoutSeconds = 7
		got, err := applyFlags(base, fs)
		if c.wantErr {
			if err == nil || !strings.Contains(err.Error(), "--generate-timeout") {
				t.Fatalf("%s: expected error, got %v (timeout=%d)", c.arg, err, got.GenerateTimeoutSeconds)
			}
			continue
		}
		if err != nil || got.GenerateTimeoutSeconds != c.want {
			t.Fatalf("%s: got %d, %v", c.arg, got.GenerateTimeoutSeconds, err)
		}
	}
}

func TestRoot_FileEnvFlagPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "gemmad.yaml")
	writeFile(t, cfgPath, "model_name: from-file\nmax_new_tokens: 10\nquantization: q8_0\n")
	t.Setenv("GEMMAD_MAX_NEW_TOKENS", "20")

	a, out := run(t, "version", "--config", cfgPath, "--env-file", filepath.Join(dir, "missing.env"), "--model", "from-flag")
	if !strings.Contains(out, "gemmad "+version) {
		t.Fatalf("version output: %q", out)
	}
	if a.cfg.ModelName != "from-flag" {
		t.Fatalf("model=%q, want flag value", a.cfg.ModelName)
	}
	if a.cfg.MaxNewTokens != 20 {
		t.Fatalf("max_new_tokens=%d, want env value", a.cfg.MaxNewTokens)
	}
	if a.cfg.Quantization != "q8_0" {
		t.Fatalf("quantization=%q, want file value", a.cfg.Quantization)
	}
	if a.cfg.Addr != config.DefaultAddr {
		t.Fatalf("addr=%q, want default", a.cfg.Addr)
	}
}

func TestRoot_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, "test.env")
	writeFile(t, env, "GEMMAD_AGENT_NAME=Tester\n")
	t.Setenv("GEMMAD_AGENT_NAME", "")
	os.Unsetenv("GEMMAD_AGENT_NAME")

	a, _ := run(t, "version", "--env-file", env)
	if a.cfg.AgentName != "Tester" {
		t.Fatalf("agent=%q", a.cfg.AgentName)
	}
	if !strings.Contains(a.cfg.EffectiveSystemPrompt(), "Tester is a helpful assistant") {
		t.Fatalf("prompt=%q", a.cfg.EffectiveSystemPrompt())
	}
}

func TestBuildBackend(t *testing.T) {
	cfg := config.Defaults()

	cfg.Backend = config.BackendLlama
	be, err := buildBackend(cfg)
	if err != nil || be.Name() != "llama" || !be.Local() {
		t.Fatalf("llama: %v %v", be, err)
	}

	cfg.Backend = config.BackendOpenAI
	be, err = buildBackend(cfg)
	if err != nil {
		t.Fatalf("openai: %v", err)
	}
	if _, ok := be.(*openaicompat.Backend); !ok || be.Local() {
		t.Fatalf("openai backend = %T", be)
	}

	cfg.Backend = config.BackendGenAI
	be, err = buildBackend(cfg)
	if err != nil {
		t.Fatalf("genai: %v", err)
	}
	if _, ok := be.(*gemini.Backend); !ok {
		t.Fatalf("genai backend = %T", be)
	}

	cfg.Backend = "tensorrt"
	if _, err := buildBackend(cfg); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestManagerConfig_LocalWiresHubAndWeights(t *testing.T) {
	cfg := config.Defaults()
	cfg.CacheDir = t.TempDir()
	cfg.MaxWaitMs = 1500
	a := &app{cfg: cfg, log: zerolog.Nop()}
	mc, err := a.managerConfig()
	if err != nil {
		t.Fatalf("managerConfig: %v", err)
	}
	if mc.Hub == nil {
		t.Fatalf("local backend needs a hub client")
	}
	if mc.Repo == "" || !strings.HasSuffix(mc.File, ".gguf") {
		t.Fatalf("weights: %q %q", mc.Repo, mc.File)
	}
	if !mc.RequireAccelerator || mc.Prober == nil {
		t.Fatalf("accelerator check should be on by default")
	}
	if mc.MaxWait.Milliseconds() != 1500 {
		t.Fatalf("max wait=%v", mc.MaxWait)
	}
	if mc.SystemPrompt == "" {
		t.Fatalf("system prompt not resolved")
	}
}

func TestManagerConfig_RemoteSkipsHub(t *testing.T) {
	cfg := config.Defaults()
	cfg.Backend = config.BackendOpenAI
	cfg.ServerURL = "http://127.0.0.1:1/v1"
	cfg.SkipAcceleratorCheck = true
	a := &app{cfg: cfg, log: zerolog.Nop()}
	mc, err := a.managerConfig()
	if err != nil {
		t.Fatalf("managerConfig: %v", err)
	}
	if mc.Hub != nil || mc.Repo != "" {
		t.Fatalf("remote backend should not fetch weights: %+v", mc)
	}
	if mc.RequireAccelerator {
		t.Fatalf("skip flag ignored")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Defaults()
	cfg.LogLevel = "warn"
	l := newLogger(cfg, &buf)
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")
	s := buf.String()
	if strings.Contains(s, "hidden") || !strings.Contains(s, `"message":"shown"`) {
		t.Fatalf("log output: %q", s)
	}
	if !strings.Contains(s, `"service":"gemmad"`) {
		t.Fatalf("missing service field: %q", s)
	}

	buf.Reset()
	cfg.LogLevel = "bogus"
	l2 := newLogger(cfg, &buf)
	l2.Info().Msg("info")
	if !strings.Contains(buf.String(), "info") {
		t.Fatalf("bad level should fall back to info: %q", buf.String())
	}
}

func TestListCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "models--org--m", "snapshots", "main", "m.gguf")
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, p, "gguf")

	_, out := run(t, "list", "--json", "--cache-dir", dir, "--env-file", filepath.Join(dir, "none.env"))
	var files []map[string]any
	if err := json.Unmarshal([]byte(out), &files); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(files) != 1 || files[0]["repo"] != "org/m" || files[0]["file"] != "m.gguf" {
		t.Fatalf("list: %v", files)
	}
}
