package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/market-helper/internal/model"
	"github.com/fairyhunter13/market-helper/internal/obs"
)

const brokerTick = 50 * time.Millisecond

// Stats is a point-in-time view of the queue counters.
type Stats struct {
	Enqueued  uint64 `json:"price_events_enqueued"`
	Processed uint64 `json:"price_events_processed"`
	Backlog   int    `json:"backlog_size"`
	Depth     int    `json:"queue_depth"`
}

// Drained reports whether every accepted event has been applied.
func (s Stats) Drained() bool {
	return s.Backlog == 0 && s.Depth == 0 && s.Enqueued == s.Processed
}

// Queue buffers price events between the HTTP intake and the workers.
// Enqueue never blocks: events wait in an unbounded backlog that a broker
// goroutine moves into the bounded output channel.
type Queue struct {
	mu      sync.Mutex
	backlog []model.PriceEvent
	notify  chan struct{}
	out     chan model.PriceEvent
	closed  atomic.Bool

	enqueued  atomic.Uint64
	processed atomic.Uint64
}

// New creates a Queue whose output channel holds outBuffer events.
func New(outBuffer int) *Queue {
	if outBuffer <= 0 {
		outBuffer = 64
	}
	return &Queue{
		notify: make(chan struct{}, 1),
		out:    make(chan model.PriceEvent, outBuffer),
	}
}

// Start runs the broker loop until ctx is done.
func (q *Queue) Start(ctx context.Context, highWatermark int) {
	go q.broker(ctx, highWatermark)
}

func (q *Queue) broker(ctx context.Context, highWatermark int) {
	ticker := time.NewTicker(brokerTick)
	defer ticker.Stop()
	for {
		q.flushOnce()
		if highWatermark > 0 {
			if sz := q.BacklogSize(); sz > highWatermark {
				obs.Logger.Warn("price_backlog_high", "backlog_size", sz, "high_watermark", highWatermark)
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-q.notify:
		case <-ticker.C:
		}
	}
}

// flushOnce moves as much backlog as fits into the output channel.
func (q *Queue) flushOnce() {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for n < len(q.backlog) && len(q.out) < cap(q.out) {
		q.out <- q.backlog[n]
		n++
	}
	if n > 0 {
		q.backlog = append(q.backlog[:0], q.backlog[n:]...)
	}
}

// Enqueue appends an event to the backlog. It returns false once intake
// has been closed.
func (q *Queue) Enqueue(ev model.PriceEvent) bool {
	if q.closed.Load() {
		return false
	}
	q.enqueued.Add(1)
	q.mu.Lock()
	q.backlog = append(q.backlog, ev)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

// Out exposes the channel workers read from.
func (q *Queue) Out() <-chan model.PriceEvent { return q.out }

// BacklogSize returns the number of events not yet handed to the channel.
func (q *Queue) BacklogSize() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.backlog)
}

// Depth returns backlog plus events buffered in the channel.
func (q *Queue) Depth() int {
	q.mu.Lock()
	bl := len(q.backlog)
	q.mu.Unlock()
	return bl + len(q.out)
}

// MarkProcessed counts one applied event.
func (q *Queue) MarkProcessed() { q.processed.Add(1) }

// Stats returns the current counters.
func (q *Queue) Stats() Stats {
	return Stats{
		Enqueued:  q.enqueued.Load(),
		Processed: q.processed.Load(),
		Backlog:   q.BacklogSize(),
		Depth:     q.Depth(),
	}
}

// CloseIntake rejects further enqueues.
func (q *Queue) CloseIntake() { q.closed.Store(true) }

// IsClosed reports if intake has been closed.
func (q *Queue) IsClosed() bool { return q.closed.Load() }
