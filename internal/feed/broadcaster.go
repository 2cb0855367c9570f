package feed

import (
	"context"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// Broadcaster fans every published envelope out to a Kafka topic for
// downstream market-data consumers, reconciling delivery against the
// ReconcileStore on a fixed tick: new entries are sent, sent entries
// that sarama confirms are acked and dropped from the ledger, and send
// failures are left NEW (or marked FAILED after too many retries) so
// the next tick retries them.
type Broadcaster struct {
	store    *ReconcileStore
	producer sarama.SyncProducer
	topic    string
	interval time.Duration
	log      *zap.Logger

	maxRetries uint32
}

// NewBroadcaster configures a sarama SyncProducer with the ack/retry
// policy the reconciliation loop depends on: every publish blocks
// until every in-sync replica has the message, and transient broker
// errors are retried by sarama itself before this loop ever sees them.
func NewBroadcaster(store *ReconcileStore, brokers []string, topic string, log *zap.Logger) (*Broadcaster, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	return &Broadcaster{
		store:      store,
		producer:   producer,
		topic:      topic,
		interval:   250 * time.Millisecond,
		log:        log,
		maxRetries: 10,
	}, nil
}

// Run ticks the reconciliation loop until ctx is cancelled.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.replayOnce()
		}
	}
}

func (b *Broadcaster) replayOnce() {
	err := b.store.ScanByState(StateNew, func(rec PendingRecord) error {
		if err := b.store.MarkState(rec.Seq, StateSent, rec.Retries); err != nil {
			b.log.Warn("feed: mark sent failed", zap.Uint64("seq", rec.Seq), zap.Error(err))
			return nil
		}

		msg := &sarama.ProducerMessage{Topic: b.topic, Value: sarama.ByteEncoder(rec.Payload)}
		if _, _, err := b.producer.SendMessage(msg); err != nil {
			retries := rec.Retries + 1
			state := StateNew
			if retries >= b.maxRetries {
				state = StateFailed
			}
			if err := b.store.MarkState(rec.Seq, state, retries); err != nil {
				b.log.Warn("feed: mark retry failed", zap.Uint64("seq", rec.Seq), zap.Error(err))
			}
			return nil
		}

		if err := b.store.MarkState(rec.Seq, StateAcked, rec.Retries); err != nil {
			b.log.Warn("feed: mark acked failed", zap.Uint64("seq", rec.Seq), zap.Error(err))
			return nil
		}
		if err := b.store.Delete(rec.Seq); err != nil {
			b.log.Warn("feed: delete acked entry failed", zap.Uint64("seq", rec.Seq), zap.Error(err))
		}
		return nil
	})
	if err != nil {
		b.log.Warn("feed: reconciliation scan failed", zap.Error(err))
	}
}

func (b *Broadcaster) Close() error {
	return b.producer.Close()
}
