package manager

import (
	"context"
	"time"
)

// Close stops admitting new generations, waits for queued and in-flight
// requests to finish (bounded by ctx and DrainTimeout), then releases the
// model. It returns ctx.Err() if the drain was cut short; the model is
// released in either case.
func (m *Manager) Close(ctx context.Context) error {
	if !m.draining.CompareAndSwap(false, true) {
		return nil
	}
	m.publish(EventDrainStart, nil)
	m.log.Info().Int("queue_len", len(m.queueCh)).Msg("draining")

	dctx, cancel := context.WithTimeout(ctx, m.cfg.DrainTimeout)
	defer cancel()
	err := m.waitIdle(dctx)

	m.mu.Lock()
	model := m.model
	m.model, m.proc = nil, nil
	if m.result.State == LoadLoaded {
		m.result.State = LoadUnset
	}
	m.mu.Unlock()
	modelLoaded.Set(0)
	if model != nil {
		if cerr := model.Close(); cerr != nil {
			m.log.Warn().Err(cerr).Msg("model close failed")
		}
	}
	return err
}

func (m *Manager) waitIdle(ctx context.Context) error {
	t := time.NewTicker(10 * time.Millisecond)
	defer t.Stop()
	for len(m.queueCh) > 0 || m.inflight.Load() > 0 {
		select {
		case <-ctx.Done():
			m.log.Warn().Int("queue_len", len(m.queueCh)).Msg("drain timed out")
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}
