package manager

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"gemmad/internal/device"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultMaxQueueDepth  = 32
	defaultMaxConcurrency = 1
	defaultMaxWait        = 30 * time.Second
	defaultMaxNewTokens   = 1200
	defaultDrainTimeout   = 30 * time.Second
)

// WeightsFetcher resolves hub weights to a local file.
type WeightsFetcher interface {
	Fetch(ctx context.Context, repo, revision, file string) (string, error)
	HasToken() bool
}

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	// ModelName is reported by /health and /status.
	ModelName string
	Backend   Backend

	// Hub and weight coordinates; used by local backends only.
	Hub          WeightsFetcher
	Repo         string
	File         string
	Revision     string
	Quantization string

	// Prober checks for an accelerator before loading a local backend.
	// A nil Prober or RequireAccelerator=false skips the check.
	Prober             device.Prober
	RequireAccelerator bool

	SystemPrompt string
	MaxNewTokens int
	Temperature  float32
	TopP         float32
	TopK         int

	MaxQueueDepth  int
	MaxConcurrency int
	MaxWait        time.Duration
	DrainTimeout   time.Duration

	Logger    *zerolog.Logger
	Publisher EventPublisher
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	if cfg.MaxQueueDepth <= 0 {
		cfg.MaxQueueDepth = defaultMaxQueueDepth
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = defaultMaxConcurrency
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = defaultMaxWait
	}
	if cfg.MaxNewTokens <= 0 {
		cfg.MaxNewTokens = defaultMaxNewTokens
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = defaultDrainTimeout
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	var pub EventPublisher = noopPublisher{}
	if cfg.Publisher != nil {
		pub = cfg.Publisher
	}
	backendName := ""
	if cfg.Backend != nil {
		backendName = cfg.Backend.Name()
	}
	return &Manager{
		cfg:       cfg,
		log:       log.With().Str("component", "manager").Str("model", cfg.ModelName).Logger(),
		pub:       pub,
		result:    LoadResult{State: LoadUnset, ModelName: cfg.ModelName, Backend: backendName},
		queueCh:   make(chan struct{}, cfg.MaxQueueDepth),
		gen:       semaphore.NewWeighted(int64(cfg.MaxConcurrency)),
		startTime: time.Now(),
	}
}
