package manager

import (
	"time"

	"gemmad/pkg/types"
)

// Snapshot returns a read-only view of the manager state.
func (m *Manager) Snapshot() Snapshot {
	return Snapshot{Result: m.Result(), QueueLen: len(m.queueCh), Inflight: int(m.inflight.Load())}
}

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	res := m.Result()
	state := string(res.State)
	if m.draining.Load() {
		state = "draining"
	}
	resp := types.StatusResponse{
		State:            state,
		ModelName:        m.cfg.ModelName,
		Backend:          res.Backend,
		Quantization:     m.cfg.Quantization,
		Device:           res.Device,
		Error:            res.Reason,
		LoadDurationMs:   res.Duration.Milliseconds(),
		QueueLen:         len(m.queueCh),
		Inflight:         int(m.inflight.Load()),
		MaxQueueDepth:    m.cfg.MaxQueueDepth,
		MaxConcurrency:   m.cfg.MaxConcurrency,
		MaxNewTokens:     m.cfg.MaxNewTokens,
		GenerationsTotal: m.generations.Load(),
		UptimeSeconds:    int64(time.Since(m.startTime).Seconds()),
		ServerTimeUnix:   time.Now().Unix(),
	}
	if m.cfg.Backend != nil && m.cfg.Backend.Local() {
		resp.Model = &types.Model{
			Name:  m.cfg.ModelName,
			Repo:  m.cfg.Repo,
			File:  m.cfg.File,
			Path:  res.Path,
			Quant: m.cfg.Quantization,
		}
	}
	if !res.LoadedAt.IsZero() {
		resp.LoadedAt = res.LoadedAt.Unix()
	}
	return resp
}
