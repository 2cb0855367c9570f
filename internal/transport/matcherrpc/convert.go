// Package matcherrpc is the client transport collaborator spec.md §6
// describes as owning "framed message delivery and the reply
// channel": a gRPC bidirectional stream carrying structpb.Struct
// envelopes instead of codegen'd protobuf messages, so the wire
// protocol exercises real grpc+protobuf marshaling without requiring
// a protoc step.
package matcherrpc

import (
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"matchcore/internal/journal"
)

// decodeEnvelope pulls the {type, payload} shape spec.md §6 names out
// of an inbound structpb.Struct.
func decodeEnvelope(s *structpb.Struct) (msgType string, payload *structpb.Struct, err error) {
	if s == nil {
		return "", nil, fmt.Errorf("matcherrpc: nil envelope")
	}
	t, ok := s.Fields["type"]
	if !ok {
		return "", nil, fmt.Errorf("matcherrpc: envelope missing type field")
	}
	msgType = t.GetStringValue()
	if p, ok := s.Fields["payload"]; ok {
		payload = p.GetStructValue()
	}
	return msgType, payload, nil
}

// decodeOrderPayload returns nil when s is nil — an envelope with a
// "type" field but no "payload" — so the caller can tell a genuinely
// absent payload apart from one that merely decoded to zero values.
func decodeOrderPayload(s *structpb.Struct) *journal.OrderPayload {
	if s == nil {
		return nil
	}
	return &journal.OrderPayload{
		ID:     stringField(s, "id"),
		Sender: stringField(s, "sender"),
		Side:   stringField(s, "side"),
		Kind:   stringField(s, "kind"),
		Price:  int64Field(s, "price"),
		Size:   int64Field(s, "size"),
	}
}

// decodeCancelPayload is decodeOrderPayload's counterpart for cancel
// envelopes.
func decodeCancelPayload(s *structpb.Struct) *journal.CancelPayload {
	if s == nil {
		return nil
	}
	return &journal.CancelPayload{
		OrderID:  stringField(s, "order_id"),
		SenderID: stringField(s, "sender_id"),
	}
}

func stringField(s *structpb.Struct, key string) string {
	v, ok := s.Fields[key]
	if !ok {
		return ""
	}
	return v.GetStringValue()
}

func int64Field(s *structpb.Struct, key string) int64 {
	v, ok := s.Fields[key]
	if !ok {
		return 0
	}
	return int64(v.GetNumberValue())
}

// encodeEnvelope builds the outbound struct for payload, converting
// any JSON-encodable value into a structpb.Struct itself (see toMap).
// targetID and ts are optional: a zero ts or an
// empty targetID is omitted rather than written as a zero value, since
// only the cancel_reject reply spec.md §6 names carries them —
// `{type, timestamp, target_id, payload}}` — while other envelopes
// (e.g. "state") carry only `type`/`payload`.
func encodeEnvelope(msgType, targetID string, ts time.Time, payload any) (*structpb.Struct, error) {
	payloadStruct, err := toStruct(payload)
	if err != nil {
		return nil, fmt.Errorf("matcherrpc: encode payload: %w", err)
	}
	fields := map[string]any{
		"type":    msgType,
		"payload": payloadStruct.AsMap(),
	}
	if targetID != "" {
		fields["target_id"] = targetID
	}
	if !ts.IsZero() {
		fields["timestamp"] = ts.UnixNano()
	}
	return structpb.NewStruct(fields)
}

func toStruct(v any) (*structpb.Struct, error) {
	m, err := toMap(v)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// toMap round-trips v through JSON into a plain map so arbitrary
// payload struct types (engine.OrderStatus, engine.Match, ...) can be
// carried inside a structpb.Struct without each needing a bespoke
// converter.
func toMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
