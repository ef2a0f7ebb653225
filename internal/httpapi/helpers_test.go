package httpapi

import (
	"context"
	"sync"
	"testing"
	"time"

	"gemmad/internal/manager"
	"gemmad/pkg/types"
)

// blockService blocks Generate until the context is done.
type blockService struct{ mockService }

func (b *blockService) Generate(ctx context.Context, _ types.GenerateRequest) (types.GenerateResponse, error) {
	<-ctx.Done()
	return types.GenerateResponse{}, ctx.Err()
}

type blockingModel struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingModel) Generate(ctx context.Context, _ manager.Input, _ manager.GenerateParams) (manager.FinalResult, error) {
	b.once.Do(func() { close(b.started) })
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return manager.FinalResult{Content: "done"}, nil
}

func (b *blockingModel) Close() error { return nil }

type staticBackend struct{ model manager.Model }

func (staticBackend) Name() string { return "static" }
func (staticBackend) Local() bool  { return false }
func (s staticBackend) Open(context.Context, manager.ModelSpec) (manager.Model, manager.Processor, error) {
	return s.model, manager.NewMessageProcessor(false), nil
}

// saturatedManager returns a loaded manager whose only queue slot is held by
// a running generation. The returned func releases it.
func saturatedManager(t *testing.T) (*manager.Manager, func()) {
	t.Helper()
	bm := &blockingModel{started: make(chan struct{}), release: make(chan struct{})}
	m := manager.NewWithConfig(manager.ManagerConfig{
		ModelName:     "g",
		Backend:       staticBackend{model: bm},
		MaxQueueDepth: 1,
		MaxWait:       20 * time.Millisecond,
	})
	m.Load(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = m.Generate(context.Background(), types.GenerateRequest{Text: "hold"})
	}()
	select {
	case <-bm.started:
	case <-time.After(2 * time.Second):
		t.Fatal("generation did not start")
	}
	return m, func() {
		close(bm.release)
		<-done
		_ = m.Close(context.Background())
	}
}
