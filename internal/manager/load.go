package manager

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Load performs the startup load exactly once. Later calls return the result
// of the first one without retrying. It never panics; failures are reported
// in the returned LoadResult and logged.
func (m *Manager) Load(ctx context.Context) LoadResult {
	m.loaded.Do(func() { m.load(ctx) })
	return m.Result()
}

func (m *Manager) load(ctx context.Context) {
	start := time.Now()
	m.mu.Lock()
	m.result.State = LoadLoading
	m.mu.Unlock()
	m.publish(EventLoadStart, nil)
	m.log.Info().Msg("loading model")

	model, proc, dev, err := m.open(ctx)
	dur := time.Since(start)
	if err != nil {
		m.mu.Lock()
		m.result.State = LoadFailed
		m.result.Reason = err.Error()
		m.result.Duration = dur
		m.mu.Unlock()
		modelLoaded.Set(0)
		loadDuration.WithLabelValues("failed").Observe(dur.Seconds())
		m.log.Error().Err(err).Dur("duration", dur).Msg("model load failed")
		m.publish(EventLoadFailed, map[string]any{"error": err.Error()})
		return
	}

	m.mu.Lock()
	if m.draining.Load() {
		// Close already swept the handles; installing now would leak the model.
		m.result.State = LoadFailed
		m.result.Reason = "manager closed during load"
		m.result.Duration = dur
		m.mu.Unlock()
		if cerr := model.Close(); cerr != nil {
			m.log.Warn().Err(cerr).Msg("model close failed")
		}
		loadDuration.WithLabelValues("failed").Observe(dur.Seconds())
		m.log.Warn().Dur("duration", dur).Msg("model loaded after close; released")
		m.publish(EventLoadFailed, map[string]any{"error": "manager closed during load"})
		return
	}
	m.model, m.proc = model, proc
	m.result.State = LoadLoaded
	m.result.Device = dev
	m.result.LoadedAt = time.Now()
	m.result.Duration = dur
	m.mu.Unlock()
	modelLoaded.Set(1)
	loadDuration.WithLabelValues("loaded").Observe(dur.Seconds())
	m.log.Info().Str("device", dev).Dur("duration", dur).Msg("model loaded")
	m.publish(EventLoadReady, map[string]any{"device": dev, "duration_ms": dur.Milliseconds()})
}

// open runs the load steps in order and returns both handles or neither.
func (m *Manager) open(ctx context.Context) (Model, Processor, string, error) {
	b := m.cfg.Backend
	if b == nil {
		return nil, nil, "", errors.New("no backend configured")
	}
	spec := ModelSpec{Name: m.cfg.ModelName, Quant: m.cfg.Quantization}
	dev := b.Name()

	if b.Local() {
		if m.cfg.RequireAccelerator && m.cfg.Prober != nil {
			info, err := m.cfg.Prober.Probe(ctx)
			if err != nil {
				return nil, nil, "", fmt.Errorf("accelerator not available: %w", err)
			}
			dev = info.String()
			m.log.Info().Str("device", dev).Msg("accelerator found")
		} else {
			dev = "unchecked"
		}
		if m.cfg.Hub == nil {
			return nil, nil, "", errors.New("fetch weights: no hub client configured")
		}
		if !m.cfg.Hub.HasToken() {
			m.log.Warn().Msg("HF_TOKEN is not set; gated model downloads may fail")
		}
		path, err := m.cfg.Hub.Fetch(ctx, m.cfg.Repo, m.cfg.Revision, m.cfg.File)
		if err != nil {
			return nil, nil, "", fmt.Errorf("fetch weights: %w", err)
		}
		spec.Path = path
		m.mu.Lock()
		m.result.Path = path
		m.mu.Unlock()
	}

	model, proc, err := b.Open(ctx, spec)
	if err != nil {
		if model != nil {
			_ = model.Close()
		}
		return nil, nil, "", fmt.Errorf("open runtime: %w", err)
	}
	if model == nil || proc == nil {
		if model != nil {
			_ = model.Close()
		}
		return nil, nil, "", errors.New("open runtime: backend returned no model or processor")
	}
	return model, proc, dev, nil
}
