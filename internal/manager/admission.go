package manager

import "context"

// beginGeneration reserves a queue slot and then an in-flight slot, waiting
// at most MaxWait in total.
// Returns a release func to be deferred.
func (m *Manager) beginGeneration(ctx context.Context) (func(), error) {
	if m.draining.Load() {
		return func() {}, tooBusyError{reason: ReasonDraining}
	}

	// One MaxWait deadline covers both the queue and the in-flight slot.
	wctx, cancel := context.WithTimeout(ctx, m.cfg.MaxWait)
	defer cancel()
	select {
	case m.queueCh <- struct{}{}:
		admissionQueueLength.Inc()
	case <-wctx.Done():
		if ctx.Err() != nil {
			return func() {}, ctx.Err()
		}
		return func() {}, tooBusyError{reason: ReasonQueueFull}
	}

	if err := m.gen.Acquire(wctx, 1); err != nil {
		<-m.queueCh
		admissionQueueLength.Dec()
		if ctx.Err() != nil {
			return func() {}, ctx.Err()
		}
		return func() {}, tooBusyError{reason: ReasonWaitTimeout}
	}
	m.inflight.Add(1)
	return func() {
		m.inflight.Add(-1)
		m.gen.Release(1)
		<-m.queueCh
		admissionQueueLength.Dec()
	}, nil
}
