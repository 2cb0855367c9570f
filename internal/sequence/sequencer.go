// Package sequence assigns the monotonically increasing sequence
// numbers that order inbound journal records. A Sequencer
// is the single source of truth for "what comes next" on one stream;
// recovery resets it to the last durable value before new input is
// accepted so numbering never regresses across a restart.
package sequence

import "sync/atomic"

// Sequencer hands out strictly increasing uint64 values starting just
// after whatever it was last Reset to.
type Sequencer struct {
	next atomic.Uint64
}

// New returns a Sequencer whose first Next() call returns start+1.
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.next.Store(start)
	return s
}

// Next returns the next sequence number in the stream.
func (s *Sequencer) Next() uint64 {
	return s.next.Add(1)
}

// Current returns the last value handed out, or the start value if
// Next has not yet been called.
func (s *Sequencer) Current() uint64 {
	return s.next.Load()
}

// Reset rewinds the sequencer so the next call to Next returns v+1.
// Used during recovery once the last durable sequence number in a
// journal is known.
func (s *Sequencer) Reset(v uint64) {
	s.next.Store(v)
}
