package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolve_Precedence(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "addr: :9000\nmax_new_tokens: 300\ncache_dir: /file\n")
	t.Setenv("GEMMAD_MAX_NEW_TOKENS", "50")
	t.Setenv("HF_TOKEN", "hf_secret")
	cfg, err := Resolve(p)
	if err != nil { t.Fatalf("resolve: %v", err) }
	if cfg.Addr != ":9000" { t.Fatalf("file value lost: %q", cfg.Addr) }
	if cfg.MaxNewTokens != 50 { t.Fatalf("env must override file, got %d", cfg.MaxNewTokens) }
	if cfg.CacheDir != "/file" { t.Fatalf("cache_dir=%q", cfg.CacheDir) }
	if cfg.HubToken != "hf_secret" { t.Fatalf("HF_TOKEN not read: %q", cfg.HubToken) }
	if cfg.ModelName != DefaultModelName { t.Fatalf("default lost: %q", cfg.ModelName) }
}

func TestFromEnv_PrefixedAndBareKeys(t *testing.T) {
	t.Setenv("GEMMAD_BACKEND", "openai")
	t.Setenv("GEMMAD_SERVER_URL", "http://127.0.0.1:9")
	t.Setenv("HF_HUB_OFFLINE", "1")
	t.Setenv("GEMMAD_CORS_ORIGINS", "http://a,http://b")
	cfg, err := FromEnv()
	if err != nil { t.Fatalf("env: %v", err) }
	if cfg.Backend != "openai" || cfg.ServerURL != "http://127.0.0.1:9" || !cfg.HubOffline {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 { t.Fatalf("origins=%v", cfg.CORSOrigins) }
}

func TestFromEnv_BadValue(t *testing.T) {
	t.Setenv("GEMMAD_MAX_QUEUE_DEPTH", "lots")
	if _, err := FromEnv(); err == nil { t.Fatalf("expected parse error") }
}

func TestLoadDotEnv(t *testing.T) {
	d := t.TempDir()
	p := filepath.Join(d, "test.env")
	if err := os.WriteFile(p, []byte("GEMMAD_DOTENV_PROBE=yes\n"), 0o644); err != nil { t.Fatal(err) }
	t.Setenv("GEMMAD_DOTENV_PROBE", "")
	os.Unsetenv("GEMMAD_DOTENV_PROBE")
	if err := LoadDotEnv(p, filepath.Join(d, "missing.env")); err != nil { t.Fatalf("dotenv: %v", err) }
	if got := os.Getenv("GEMMAD_DOTENV_PROBE"); got != "yes" { t.Fatalf("got %q", got) }
}
