package matcherrpc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"matchcore/internal/journal"
)

func TestDecodeEnvelopeExtractsTypeAndPayload(t *testing.T) {
	env, err := structpb.NewStruct(map[string]any{
		"type": "order",
		"payload": map[string]any{
			"id":     "A",
			"sender": "u1",
			"side":   "buy",
			"price":  100.0,
			"size":   5.0,
		},
	})
	require.NoError(t, err)

	msgType, payload, err := decodeEnvelope(env)
	require.NoError(t, err)
	assert.Equal(t, "order", msgType)

	op := decodeOrderPayload(payload)
	require.NotNil(t, op)
	assert.Equal(t, &journal.OrderPayload{ID: "A", Sender: "u1", Side: "buy", Price: 100, Size: 5}, op)
}

func TestDecodeEnvelopeMissingTypeErrors(t *testing.T) {
	env, _ := structpb.NewStruct(map[string]any{"payload": map[string]any{}})
	_, _, err := decodeEnvelope(env)
	assert.Error(t, err)
}

func TestDecodeOrderPayloadFields(t *testing.T) {
	cases := []struct {
		name string
		in   map[string]any
		want journal.OrderPayload
	}{
		{
			name: "limit order",
			in:   map[string]any{"id": "A", "sender": "u1", "side": "buy", "kind": "limit", "price": 100.0, "size": 5.0},
			want: journal.OrderPayload{ID: "A", Sender: "u1", Side: "buy", Kind: "limit", Price: 100, Size: 5},
		},
		{
			name: "market order omits price",
			in:   map[string]any{"id": "B", "sender": "u2", "side": "sell", "kind": "market", "size": 3.0},
			want: journal.OrderPayload{ID: "B", Sender: "u2", Side: "sell", Kind: "market", Size: 3},
		},
		{
			name: "missing fields default to zero values",
			in:   map[string]any{"id": "C"},
			want: journal.OrderPayload{ID: "C"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload, err := structpb.NewStruct(tc.in)
			require.NoError(t, err)
			assert.Equal(t, &tc.want, decodeOrderPayload(payload))
		})
	}
}

func TestDecodeCancelPayload(t *testing.T) {
	payload, _ := structpb.NewStruct(map[string]any{"order_id": "A", "sender_id": "u1"})
	cp := decodeCancelPayload(payload)
	require.NotNil(t, cp)
	assert.Equal(t, &journal.CancelPayload{OrderID: "A", SenderID: "u1"}, cp)
}

func TestDecodeOrderPayloadNilOnMissingPayload(t *testing.T) {
	assert.Nil(t, decodeOrderPayload(nil))
}

func TestDecodeCancelPayloadNilOnMissingPayload(t *testing.T) {
	assert.Nil(t, decodeCancelPayload(nil))
}

func TestEncodeEnvelopeRoundTrips(t *testing.T) {
	type payload struct {
		OrderID string `json:"order_id"`
		Reason  string `json:"reject_reason"`
	}
	ts := time.Unix(0, 1700000000000000000)
	env, err := encodeEnvelope("cancel_reject", "u1", ts, payload{OrderID: "A", Reason: "not_owner"})
	require.NoError(t, err)

	assert.Equal(t, "cancel_reject", env.Fields["type"].GetStringValue())
	assert.Equal(t, "u1", env.Fields["target_id"].GetStringValue())
	assert.Equal(t, float64(ts.UnixNano()), env.Fields["timestamp"].GetNumberValue())
	p := env.Fields["payload"].GetStructValue()
	assert.Equal(t, "A", p.Fields["order_id"].GetStringValue())
	assert.Equal(t, "not_owner", p.Fields["reject_reason"].GetStringValue())
}

func TestEncodeEnvelopeOmitsTargetIDAndTimestampWhenUnset(t *testing.T) {
	env, err := encodeEnvelope("state", "", time.Time{}, map[string]any{"seq": 1.0})
	require.NoError(t, err)

	assert.Equal(t, "state", env.Fields["type"].GetStringValue())
	_, hasTarget := env.Fields["target_id"]
	_, hasTimestamp := env.Fields["timestamp"]
	assert.False(t, hasTarget)
	assert.False(t, hasTimestamp)
}
