package feed

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
)

// DeliveryState tracks one outbound envelope's progress through the
// Kafka fan-out, independent of whether it has been durably journaled
// or multicast — those are unconditional; Kafka delivery is retried.
type DeliveryState uint8

const (
	StateNew DeliveryState = iota
	StateSent
	StateAcked
	StateFailed
)

func (s DeliveryState) String() string {
	switch s {
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	case StateFailed:
		return "FAILED"
	default:
		return "NEW"
	}
}

type deliveryRecord struct {
	State       DeliveryState
	Retries     uint32
	LastAttempt int64
	Payload     []byte
}

// encoding: [state:1][retries:4][lastAttempt:8][payload...]
func encodeDelivery(r deliveryRecord) []byte {
	buf := make([]byte, 1+4+8+len(r.Payload))
	buf[0] = byte(r.State)
	binary.BigEndian.PutUint32(buf[1:5], r.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(r.LastAttempt))
	copy(buf[13:], r.Payload)
	return buf
}

func decodeDelivery(b []byte) (deliveryRecord, error) {
	if len(b) < 13 {
		return deliveryRecord{}, errors.New("feed: invalid delivery record")
	}
	return deliveryRecord{
		State:       DeliveryState(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
		Payload:     append([]byte(nil), b[13:]...),
	}, nil
}

// ReconcileStore is the pebble-backed delivery ledger the Kafka
// broadcaster reconciles against: every published envelope gets a
// NEW entry, advances to SENT once handed to the producer and ACKED
// once sarama confirms, and is deleted once acknowledged. Entries that
// exhaust their retries are marked FAILED and stay in the store.
type ReconcileStore struct {
	db *pebble.DB
}

// OpenReconcileStore opens (creating if necessary) the pebble database
// backing the delivery ledger at dir.
func OpenReconcileStore(dir string) (*ReconcileStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{DisableWAL: false})
	if err != nil {
		return nil, fmt.Errorf("feed: open reconcile store: %w", err)
	}
	return &ReconcileStore{db: db}, nil
}

func (s *ReconcileStore) Close() error { return s.db.Close() }

// PutNew records seq's envelope as pending Kafka delivery.
func (s *ReconcileStore) PutNew(seq uint64, payload []byte) error {
	rec := deliveryRecord{State: StateNew, Payload: payload}
	return s.db.Set(keyFor(seq), encodeDelivery(rec), pebble.Sync)
}

// MarkState transitions seq to state, recording the attempt time and
// retry count.
func (s *ReconcileStore) MarkState(seq uint64, state DeliveryState, retries uint32) error {
	rec, err := s.get(seq)
	if err != nil {
		return err
	}
	rec.State = state
	rec.Retries = retries
	rec.LastAttempt = time.Now().UnixNano()
	return s.db.Set(keyFor(seq), encodeDelivery(rec), pebble.Sync)
}

// Delete removes an acknowledged entry from the ledger.
func (s *ReconcileStore) Delete(seq uint64) error {
	return s.db.Delete(keyFor(seq), pebble.Sync)
}

func (s *ReconcileStore) get(seq uint64) (deliveryRecord, error) {
	val, closer, err := s.db.Get(keyFor(seq))
	if err != nil {
		return deliveryRecord{}, err
	}
	defer closer.Close()
	return decodeDelivery(val)
}

// PendingRecord is one entry returned by ScanByState.
type PendingRecord struct {
	Seq     uint64
	Retries uint32
	Payload []byte
}

// ScanByState iterates every ledger entry currently in state, in key
// (seq) order, invoking fn for each.
func (s *ReconcileStore) ScanByState(state DeliveryState, fn func(PendingRecord) error) error {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("seq/"),
		UpperBound: []byte("seq/~"),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		rec, err := decodeDelivery(iter.Value())
		if err != nil {
			return err
		}
		if rec.State != state {
			continue
		}
		seq, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		if err := fn(PendingRecord{Seq: seq, Retries: rec.Retries, Payload: rec.Payload}); err != nil {
			return err
		}
	}
	return iter.Error()
}

func keyFor(seq uint64) []byte {
	return []byte(fmt.Sprintf("seq/%020d", seq))
}

func parseKey(b []byte) (uint64, error) {
	var seq uint64
	_, err := fmt.Sscanf(string(bytes.TrimPrefix(b, []byte("seq/"))), "%d", &seq)
	return seq, err
}
