package feed

import (
	"net"
	"sync"

	"go.uber.org/zap"
)

// Publisher is the FeedPublisher: it owns output_seq, journals every
// outgoing envelope, and ships it as a datagram to the multicast feed
// endpoint. It runs entirely on the single logical writer. Publish
// performs the outbound journal append, the fsynced reconcile-ledger
// write and the datagram send synchronously, in that order, before it
// returns; failures of those steps are logged and do not fail the
// publish.
type Publisher struct {
	mu        sync.Mutex
	outputSeq uint64
	conn      net.Conn
	outbound  *Outbound
	store     *ReconcileStore
	log       *zap.Logger
}

// NewPublisher dials the multicast feed address and wires the outbound
// journal and Kafka reconciliation ledger. startSeq is the output_seq
// to resume from, taken from the loaded snapshot or 0 on a fresh
// engine.
func NewPublisher(feedAddr string, outbound *Outbound, store *ReconcileStore, log *zap.Logger, startSeq uint64) (*Publisher, error) {
	conn, err := net.Dial("udp", feedAddr)
	if err != nil {
		return nil, err
	}
	return &Publisher{
		outputSeq: startSeq,
		conn:      conn,
		outbound:  outbound,
		store:     store,
		log:       log,
	}, nil
}

// OutputSeq returns the next sequence number Publish will assign,
// which is also the value snapshots capture as EngineState.OutputSeq.
func (p *Publisher) OutputSeq() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outputSeq
}

// Publish constructs the envelope, journals and multicasts it, and
// advances output_seq. Outbound journal append and feed send failures
// are logged and swallowed — state has already advanced and recovery
// will republish on replay, per the engine's error handling design.
func (p *Publisher) Publish(kind string, payload any) error {
	p.mu.Lock()
	seq := p.outputSeq
	p.outputSeq++
	p.mu.Unlock()

	env, err := newEnvelope(kind, seq, payload)
	if err != nil {
		return err
	}
	line, err := env.Encode()
	if err != nil {
		return err
	}

	if err := p.outbound.Append(line); err != nil {
		p.log.Warn("feed: outbound journal append failed", zap.Uint64("seq", seq), zap.Error(err))
	}
	if err := p.store.PutNew(seq, line); err != nil {
		p.log.Warn("feed: reconcile ledger write failed", zap.Uint64("seq", seq), zap.Error(err))
	}
	if _, err := p.conn.Write(line); err != nil {
		p.log.Warn("feed: multicast send failed", zap.Uint64("seq", seq), zap.Error(err))
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.conn.Close()
}
