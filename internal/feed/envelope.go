// Package feed implements the FeedPublisher: it owns the outbound
// sequence counter, journals every outgoing envelope for later
// reconciliation, ships it to the multicast market-data feed, and
// fans it out to a Kafka topic for downstream consumers via a
// pebble-backed delivery ledger and a sarama producer.
package feed

import (
	"encoding/json"
	"time"
)

// Envelope is the exact wire shape published on the feed: one
// self-delimited, one-line-encoded record per message.
type Envelope struct {
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Seq       uint64          `json:"seq"`
	Payload   json.RawMessage `json:"payload"`
}

func newEnvelope(kind string, seq uint64, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		Type:      kind,
		Timestamp: time.Now().UnixNano(),
		Seq:       seq,
		Payload:   raw,
	}, nil
}

// Encode renders e as the one-line textual form shipped to the
// multicast socket and appended to the outbound journal.
func (e Envelope) Encode() ([]byte, error) {
	line, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return append(line, '\n'), nil
}
