package pipeline

import (
	"sync"
	"time"
)

// Reply is one message delivered back to the connection whose input
// caused it — today only cancel_reject, per spec.md §4.4's reply
// channel column. TargetID and Time carry the envelope-level
// `target_id`/`timestamp` fields spec.md §6 documents for the
// cancel_reject reply, as opposed to Payload's own fields.
type Reply struct {
	Type     string
	TargetID string
	Time     time.Time
	Payload  any
}

// Registry holds one reply sink per live connection, keyed by a
// connection id the transport collaborator assigns. It exists only
// for synchronous rejects tied to that connection's own inputs, never
// for feed fan-out.
type Registry struct {
	mu    sync.Mutex
	sinks map[string]chan Reply
}

// NewRegistry returns an empty reply registry.
func NewRegistry() *Registry {
	return &Registry{sinks: make(map[string]chan Reply)}
}

// Register creates a buffered reply sink for connID and returns the
// receiving end for the transport to forward to the client.
func (r *Registry) Register(connID string) <-chan Reply {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch := make(chan Reply, 8)
	r.sinks[connID] = ch
	return ch
}

// Deregister closes and removes connID's reply sink. Call on
// connection close; it cancels only the pending reply subscription,
// never any input already journaled.
func (r *Registry) Deregister(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ch, ok := r.sinks[connID]; ok {
		close(ch)
		delete(r.sinks, connID)
	}
}

// Send delivers reply to connID's sink if one is registered. A full or
// missing sink silently drops the reply — the connection is gone or
// not draining, and there is no other recipient for it.
func (r *Registry) Send(connID string, reply Reply) {
	r.mu.Lock()
	ch, ok := r.sinks[connID]
	r.mu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- reply:
	default:
	}
}
