package manager

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gemmad/internal/chat"
	"gemmad/internal/device"
)

// fakeModel records calls and delegates to fn when set.
type fakeModel struct {
	mu     sync.Mutex
	calls  atomic.Int64
	last   GenerateParams
	closed atomic.Bool
	fn     func(ctx context.Context, in Input, p GenerateParams) (FinalResult, error)
}

func (f *fakeModel) Generate(ctx context.Context, in Input, p GenerateParams) (FinalResult, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.last = p
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(ctx, in, p)
	}
	return FinalResult{Content: "<start_of_turn>model\nhello<end_of_turn>", Usage: Usage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5}}, nil
}

func (f *fakeModel) Close() error { f.closed.Store(true); return nil }

func (f *fakeModel) lastParams() GenerateParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

type fakeBackend struct {
	local  bool
	model  *fakeModel
	proc   Processor
	err    error
	opened atomic.Int64
	spec   ModelSpec
}

func (b *fakeBackend) Name() string { return "fake" }
func (b *fakeBackend) Local() bool  { return b.local }

func (b *fakeBackend) Open(_ context.Context, spec ModelSpec) (Model, Processor, error) {
	b.opened.Add(1)
	b.spec = spec
	if b.err != nil {
		return nil, nil, b.err
	}
	proc := b.proc
	if proc == nil {
		proc = NewTemplateProcessor(chat.GemmaTemplate{BOS: true})
	}
	return b.model, proc, nil
}

type fakeHub struct {
	token   bool
	path    string
	err     error
	fetched atomic.Int64
}

func (h *fakeHub) Fetch(context.Context, string, string, string) (string, error) {
	h.fetched.Add(1)
	return h.path, h.err
}

func (h *fakeHub) HasToken() bool { return h.token }

func gpu() device.Prober {
	return device.ProberFunc(func(context.Context) (device.Info, error) {
		return device.Info{Kind: "cuda", Names: []string{"NVIDIA L4"}}, nil
	})
}

func noGPU() device.Prober {
	return device.ProberFunc(func(context.Context) (device.Info, error) {
		return device.Info{}, device.ErrNoAccelerator
	})
}

// newLoaded returns a loaded manager over a remote fake backend.
func newLoaded(t *testing.T, cfg ManagerConfig, fm *fakeModel) *Manager {
	t.Helper()
	if cfg.Backend == nil {
		cfg.Backend = &fakeBackend{model: fm}
	}
	if cfg.ModelName == "" {
		cfg.ModelName = "google/gemma-3-4b-it"
	}
	m := NewWithConfig(cfg)
	if res := m.Load(context.Background()); res.State != LoadLoaded {
		t.Fatalf("load: %+v", res)
	}
	t.Cleanup(func() { _ = m.Close(context.Background()) })
	return m
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

var errBoom = errors.New("boom")
