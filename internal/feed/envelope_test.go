package feed

import (
	"encoding/json"
	"testing"
)

type samplePayload struct {
	Status string `json:"status"`
}

func TestEnvelopeEncodeRoundTrip(t *testing.T) {
	env, err := newEnvelope("order_status", 7, samplePayload{Status: "open"})
	if err != nil {
		t.Fatalf("newEnvelope: %v", err)
	}
	line, err := env.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if line[len(line)-1] != '\n' {
		t.Fatal("expected encoded envelope to be newline-terminated")
	}

	var decoded Envelope
	if err := json.Unmarshal(line[:len(line)-1], &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Type != "order_status" || decoded.Seq != 7 {
		t.Errorf("unexpected envelope: %+v", decoded)
	}
	var p samplePayload
	if err := json.Unmarshal(decoded.Payload, &p); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if p.Status != "open" {
		t.Errorf("unexpected payload: %+v", p)
	}
}
