package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"gemmad/internal/chat"
	"gemmad/internal/httpapi"
	"gemmad/internal/hub"
	"gemmad/internal/manager"
)

// ggufBackend is a local backend that checks the fetched weights exist and
// echoes a Gemma-formatted reply.
type ggufBackend struct {
	mu   sync.Mutex
	path string
	gen  func(ctx context.Context, in manager.Input, p manager.GenerateParams) (manager.FinalResult, error)
}

func (b *ggufBackend) Name() string { return "gguf-fake" }
func (b *ggufBackend) Local() bool  { return true }

func (b *ggufBackend) Open(_ context.Context, spec manager.ModelSpec) (manager.Model, manager.Processor, error) {
	if _, err := os.Stat(spec.Path); err != nil {
		return nil, nil, err
	}
	b.mu.Lock()
	b.path = spec.Path
	b.mu.Unlock()
	return modelFunc(b.gen), manager.NewTemplateProcessor(chat.GemmaTemplate{}), nil
}

type modelFunc func(ctx context.Context, in manager.Input, p manager.GenerateParams) (manager.FinalResult, error)

func (f modelFunc) Generate(ctx context.Context, in manager.Input, p manager.GenerateParams) (manager.FinalResult, error) {
	if f == nil {
		return manager.FinalResult{Content: "<start_of_turn>model\nok<end_of_turn>"}, nil
	}
	return f(ctx, in, p)
}

func (modelFunc) Close() error { return nil }

// newHub returns a hub client over cache whose downloads write payload into
// the snapshot layout and bump hits.
func newHub(t *testing.T, cache string, payload []byte, hits *atomic.Int64) *hub.Client {
	t.Helper()
	hc, err := hub.New(cache, hub.WithDownloader(func(_ context.Context, r hub.Request) (string, error) {
		hits.Add(1)
		const commit = "0123456789abcdef0123456789abcdef01234567"
		dir := hub.RepoDir(r.CacheDir, r.Repo)
		snap := filepath.Join(dir, "snapshots", commit, r.File)
		if err := os.MkdirAll(filepath.Dir(snap), 0o755); err != nil {
			return "", err
		}
		if err := os.MkdirAll(filepath.Join(dir, "refs"), 0o755); err != nil {
			return "", err
		}
		if err := os.WriteFile(snap, payload, 0o644); err != nil {
			return "", err
		}
		return snap, os.WriteFile(filepath.Join(dir, "refs", r.Revision), []byte(commit), 0o644)
	}))
	if err != nil {
		t.Fatalf("hub: %v", err)
	}
	return hc
}

func newServer(t *testing.T, mgr *manager.Manager) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(httpapi.NewMux(mgr))
	t.Cleanup(func() {
		srv.Close()
		_ = mgr.Close(context.Background())
	})
	return srv
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}

func httpPostJSON(t *testing.T, url, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}

// postStatus posts body and returns the status code; safe off the test goroutine.
func postStatus(url, body string) int {
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		return 0
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		t.Fatalf("json: %v body=%s", err, string(b))
	}
	return v
}
