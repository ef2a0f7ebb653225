package manager

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"gemmad/pkg/types"
)

// Manager holds the process-wide model handle. It is constructed once at
// startup, loaded once by Load, and shared read-only by request handlers.
type Manager struct {
	cfg ManagerConfig
	log zerolog.Logger

	mu     sync.RWMutex
	result LoadResult
	model  Model
	proc   Processor
	pub    EventPublisher
	loaded sync.Once

	// Admission
	queueCh  chan struct{}
	gen      *semaphore.Weighted
	inflight atomic.Int64
	draining atomic.Bool

	generations atomic.Uint64
	startTime   time.Time
}

// Ready reports whether the model and processor are loaded and the manager
// is accepting requests.
func (m *Manager) Ready() bool {
	if m.draining.Load() {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.result.Loaded() && m.model != nil && m.proc != nil
}

// Result returns the current load result.
func (m *Manager) Result() LoadResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.result
}

// Health reports whether the model is usable. It never fails and never
// blocks on a load in progress.
func (m *Manager) Health() types.HealthResponse {
	m.mu.RLock()
	res := m.result
	ok := res.Loaded() && m.model != nil && m.proc != nil
	m.mu.RUnlock()
	if !ok {
		detail := "Model not loaded. Check server logs."
		if res.State == LoadFailed && res.Reason != "" {
			detail = res.Reason
		}
		return types.HealthResponse{Status: types.HealthError, ModelName: m.cfg.ModelName, Detail: detail}
	}
	return types.HealthResponse{Status: types.HealthOK, ModelName: m.cfg.ModelName}
}

// handles returns the model and processor if loaded.
func (m *Manager) handles() (Model, Processor, LoadState) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.result.Loaded() || m.model == nil || m.proc == nil {
		return nil, nil, m.result.State
	}
	return m.model, m.proc, m.result.State
}
