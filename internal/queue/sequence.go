package queue

import "sync/atomic"

// Sequencer hands out increasing sequence numbers starting at 1. The store
// uses them to drop price events that arrive out of order.
type Sequencer struct{ n atomic.Uint64 }

func (s *Sequencer) Next() uint64 { return s.n.Add(1) }
