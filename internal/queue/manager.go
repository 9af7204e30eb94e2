// Package queue applies quick price updates asynchronously through an
// autoscaling worker pool.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/fairyhunter13/market-helper/internal/config"
	"github.com/fairyhunter13/market-helper/internal/model"
	"github.com/fairyhunter13/market-helper/internal/obs"
)

// Applier receives price events from the workers.
type Applier interface {
	ApplyPriceEvent(ev model.PriceEvent)
}

// Manager coordinates workers applying queued price events and scales
// them between cfg.WorkerMin and cfg.WorkerMax.
type Manager struct {
	cfg    config.Config
	q      *Queue
	dst    Applier
	seq    Sequencer
	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	workerCancels []context.CancelFunc
}

func NewManager(cfg config.Config, q *Queue, dst Applier) *Manager {
	return &Manager{cfg: cfg, q: q, dst: dst}
}

// Start begins processing and autoscaling in the background.
func (m *Manager) Start(parent context.Context) {
	m.ctx, m.cancel = context.WithCancel(parent)
	m.q.Start(m.ctx, m.cfg.QueueHighWatermark)
	m.addWorkers(m.cfg.InitialWorkerCount)
	go m.scaler()
}

// Stop cancels background routines and stops workers.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.mu.Lock()
	for _, c := range m.workerCancels {
		c()
	}
	m.workerCancels = nil
	m.mu.Unlock()
}

func (m *Manager) scaler() {
	t := time.NewTicker(m.cfg.ScaleInterval)
	defer t.Stop()
	idleTicks := 0
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-t.C:
			backlog := m.q.BacklogSize()
			wc := m.WorkerCount()
			if backlog > wc*m.cfg.ScaleUpBacklogPerWorker && wc < m.cfg.WorkerMax {
				m.addWorkers(1)
				idleTicks = 0
				continue
			}
			if backlog != 0 {
				idleTicks = 0
				continue
			}
			idleTicks++
			if idleTicks >= m.cfg.ScaleDownIdleTicks && wc > m.cfg.WorkerMin {
				m.removeWorkers(1)
				idleTicks = 0
			}
		}
	}
}

func (m *Manager) addWorkers(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < n; i++ {
		wctx, cancel := context.WithCancel(m.ctx)
		m.workerCancels = append(m.workerCancels, cancel)
		go m.worker(wctx)
	}
	obs.Logger.Info("workers scaled", "worker_count", len(m.workerCancels))
}

func (m *Manager) removeWorkers(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n = min(n, len(m.workerCancels))
	for i := 0; i < n; i++ {
		last := len(m.workerCancels) - 1
		m.workerCancels[last]()
		m.workerCancels = m.workerCancels[:last]
	}
	obs.Logger.Info("workers scaled", "worker_count", len(m.workerCancels))
}

func (m *Manager) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-m.q.Out():
			m.dst.ApplyPriceEvent(ev)
			m.q.MarkProcessed()
			obs.Logger.Debug("price_event_applied",
				"sequence", ev.Sequence,
				"product_id", ev.ProductID,
				"store_id", ev.StoreID,
			)
		}
	}
}

// Submit stamps ev with the next sequence number and enqueues it. ok is
// false when intake is closed.
func (m *Manager) Submit(ev model.PriceEvent) (model.PriceEvent, bool) {
	ev.Sequence = m.seq.Next()
	return ev, m.q.Enqueue(ev)
}

// WorkerCount returns the current number of workers.
func (m *Manager) WorkerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.workerCancels)
}

// IsShuttingDown reports whether new events are rejected.
func (m *Manager) IsShuttingDown() bool { return m.q.IsClosed() }

// CloseIntake disallows future events.
func (m *Manager) CloseIntake() { m.q.CloseIntake() }

// Stats exposes the underlying queue counters.
func (m *Manager) Stats() Stats { return m.q.Stats() }

// DrainUntil blocks until every accepted event is applied or ctx is done.
func (m *Manager) DrainUntil(ctx context.Context) bool {
	for {
		if m.q.Stats().Drained() {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(brokerTick):
		}
	}
}
