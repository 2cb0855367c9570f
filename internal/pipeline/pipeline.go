// Package pipeline implements the MessagePipeline: the single logical
// writer into the engine. It routes decoded inbound messages, journals
// state-affecting ones before applying them, dispatches to the
// OrderBook, translates the resulting events to the feed, and answers
// per-connection replies for rejected cancels.
package pipeline

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"matchcore/internal/engine"
	"matchcore/internal/feed"
	"matchcore/internal/journal"
	"matchcore/internal/orderbook"
	"matchcore/internal/sequence"
	"matchcore/internal/snapshot"
)

// ErrInvariantViolation signals the book rejected an input on a
// precondition it assumes callers already validated — a fatal
// condition per spec.md §7: the writer must abort rather than
// continue in an unknown state.
var ErrInvariantViolation = errors.New("pipeline: orderbook invariant violation")

// Pipeline is the single logical writer, as spec.md §5 describes.
// Every exported handler takes the pipeline's mutex for its whole
// duration, so the transport layer may call it from one goroutine per
// connection and inputs are still applied one at a time.
type Pipeline struct {
	mu sync.Mutex

	book     *orderbook.OrderBook
	journal  *journal.Inbound
	seq      *sequence.Sequencer
	pub      *feed.Publisher
	replies  *Registry
	log      *zap.Logger
	snapDir  string
	product  string
	stateNum uint64
	fatal    chan error
}

// Config bundles Pipeline's collaborators and initial recovered
// counters.
type Config struct {
	Book     *orderbook.OrderBook
	Journal  *journal.Inbound
	Seq      *sequence.Sequencer
	Pub      *feed.Publisher
	Replies  *Registry
	Log      *zap.Logger
	SnapDir  string
	Product  string
	StateNum uint64
}

// New builds a Pipeline from cfg.
func New(cfg Config) *Pipeline {
	return &Pipeline{
		book:     cfg.Book,
		journal:  cfg.Journal,
		seq:      cfg.Seq,
		pub:      cfg.Pub,
		replies:  cfg.Replies,
		log:      cfg.Log,
		snapDir:  cfg.SnapDir,
		product:  cfg.Product,
		stateNum: cfg.StateNum,
		fatal:    make(chan error, 1),
	}
}

// Fatal returns the channel the writer signals on exactly once if it
// hits a condition spec.md §7 marks fatal — a journal append failure
// or an orderbook invariant violation. Recovery after either is
// ambiguous, so the writer does not try to keep trading past one; the
// caller (cmd/matcherd) is responsible for halting the server and
// exiting when this fires. Pipeline itself still returns the same
// error to the call that triggered it, so the triggering connection's
// own RPC fails immediately too.
func (p *Pipeline) Fatal() <-chan error {
	return p.fatal
}

func (p *Pipeline) abort(err error) {
	select {
	case p.fatal <- err:
	default:
	}
}

func (p *Pipeline) publishAll(events []orderbook.Event) {
	for _, item := range engine.Translate(events, time.Now()) {
		if err := p.pub.Publish(item.Type, item.Payload); err != nil {
			p.log.Warn("pipeline: feed publish failed", zap.String("type", item.Type), zap.Error(err))
		}
	}
}

// HandleOrder journals op, emits order_status{received}, applies it to
// the book, and publishes every resulting event. A nil op models a
// message whose type was "order" but whose payload field was absent:
// per spec.md §4.4 it is still journaled (as a markerless record with
// no order body) before being logged and dropped.
func (p *Pipeline) HandleOrder(connID string, op *journal.OrderPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	seq := p.seq.Next()
	if op == nil {
		if err := p.journal.Append(journal.Record{Kind: journal.KindOrder, Seq: seq, Time: time.Now().UnixNano()}); err != nil {
			err = fmt.Errorf("pipeline: journal append failed: %w", err)
			p.abort(err)
			return err
		}
		p.log.Warn("pipeline: order message missing payload", zap.String("conn", connID))
		return nil
	}

	if err := p.journal.Append(journal.OrderRecord(seq, *op)); err != nil {
		err = fmt.Errorf("pipeline: journal append failed: %w", err)
		p.abort(err)
		return err
	}

	return p.applyOrder(connID, *op)
}

// applyOrder runs the order_status{received} → OrderBook.Add → publish
// sequence shared by steady-state handling and journal replay. It
// never touches the inbound journal — callers decide whether the
// input still needs to be journaled.
func (p *Pipeline) applyOrder(connID string, op journal.OrderPayload) error {
	side, err := parseSide(op.Side)
	if err != nil {
		p.log.Warn("pipeline: rejecting order with unrecognized side", zap.String("conn", connID), zap.Error(err))
		return nil
	}

	o := &orderbook.Order{
		ID:         op.ID,
		Sender:     op.Sender,
		Side:       side,
		Kind:       parseKind(op.Kind),
		Price:      op.Price,
		Size:       op.Size,
		ReceivedAt: time.Now(),
	}

	// order_status{received} precedes OrderBook.Add unconditionally:
	// Add may fully fill the order without ever resting it, and
	// clients still need "received" to precede any fill or open event.
	if err := p.pub.Publish("order_status", engine.Received(o, o.ReceivedAt)); err != nil {
		p.log.Warn("pipeline: feed publish failed", zap.String("type", "order_status"), zap.Error(err))
	}

	events, err := p.book.Add(o)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrInvariantViolation, err)
		p.abort(err)
		return err
	}
	p.publishAll(events)
	return nil
}

// HandleCancel journals cp, attempts the cancel, and on rejection
// sends a cancel_reject reply to connID instead of publishing to the
// feed. A nil cp models a missing payload, same as HandleOrder.
func (p *Pipeline) HandleCancel(connID string, cp *journal.CancelPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	seq := p.seq.Next()
	if cp == nil {
		if err := p.journal.Append(journal.Record{Kind: journal.KindCancel, Seq: seq, Time: time.Now().UnixNano()}); err != nil {
			err = fmt.Errorf("pipeline: journal append failed: %w", err)
			p.abort(err)
			return err
		}
		p.log.Warn("pipeline: cancel message missing payload", zap.String("conn", connID))
		return nil
	}

	if err := p.journal.Append(journal.CancelRecord(seq, *cp)); err != nil {
		err = fmt.Errorf("pipeline: journal append failed: %w", err)
		p.abort(err)
		return err
	}

	p.applyCancel(connID, *cp)
	return nil
}

// applyCancel runs the OrderBook.Remove → reply-or-publish sequence
// shared by steady-state handling and journal replay. Like applyOrder,
// it never touches the inbound journal.
func (p *Pipeline) applyCancel(connID string, cp journal.CancelPayload) {
	ev, err := p.book.Remove(cp.OrderID, cp.SenderID)
	if err != nil {
		reason := "not_found"
		if errors.Is(err, orderbook.ErrNotOwner) {
			reason = "not_owner"
		}
		p.replies.Send(connID, Reply{
			Type:     "cancel_reject",
			TargetID: cp.SenderID,
			Time:     time.Now(),
			Payload:  engine.Reject(cp.OrderID, reason),
		})
		return
	}

	p.publishAll([]orderbook.Event{ev})
}

// ReplayOrder applies an already-journaled order record during
// recovery. It must not journal again (the record is already durable)
// and must not draw a fresh sequence number — the sequencer is
// rewound and replayed separately, matching spec.md §4.3's "dispatch
// each subsequent record to the same handler used at steady state"
// minus the journaling step that already happened before the crash.
func (p *Pipeline) ReplayOrder(op journal.OrderPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.applyOrder("replay", op)
}

// ReplayCancel is ReplayOrder's counterpart for cancel records. A
// rejected replayed cancel has no live connection to reply to, so it
// is dropped the same way applyCancel drops any reply to a missing
// sink.
func (p *Pipeline) ReplayCancel(cp journal.CancelPayload) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyCancel("replay", cp)
}

// HandleState takes a snapshot per spec.md §4.3's write_state protocol
// and returns the captured state for the requesting connection's
// reply. It is not journaled as a state-affecting input itself; the
// state(n) marker it writes is the journal side-effect spec.md
// describes.
func (p *Pipeline) HandleState(connID string) (engine.State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

func (p *Pipeline) snapshot() (engine.State, error) {
	n := p.stateNum
	seq := p.seq.Next()

	if err := p.journal.Append(journal.StateMarker(seq, n)); err != nil {
		err = fmt.Errorf("pipeline: state marker append failed: %w", err)
		p.abort(err)
		return engine.State{}, err
	}

	state := engine.Capture(p.book, n+1, p.pub.OutputSeq())
	if err := snapshot.Write(p.snapDir, p.product, state); err != nil {
		p.log.Warn("pipeline: snapshot write failed", zap.Uint64("state_num", state.StateNum), zap.Error(err))
	}
	p.stateNum = n + 1
	return state, nil
}

// Snapshot takes a startup or periodic snapshot outside of any client
// request (e.g. the fresh snapshot written before accepting clients,
// or a background interval snapshotter).
func (p *Pipeline) Snapshot() (engine.State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

// HandleOther logs and discards an unrecognized message type.
func (p *Pipeline) HandleOther(connID, msgType string) {
	p.log.Warn("pipeline: unrecognized message type", zap.String("conn", connID), zap.String("type", msgType))
}

// StateNum returns the current snapshot generation counter.
func (p *Pipeline) StateNum() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateNum
}

// Replies returns the reply registry so the transport layer can
// register/deregister per-connection sinks.
func (p *Pipeline) Replies() *Registry { return p.replies }
