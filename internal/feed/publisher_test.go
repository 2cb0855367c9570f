package feed

import (
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestPublisherAssignsStrictlyIncreasingSeq(t *testing.T) {
	listener, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()

	dir := t.TempDir()
	outbound, err := OpenOutbound(filepath.Join(dir, "matcher_out.test.log"))
	if err != nil {
		t.Fatalf("open outbound: %v", err)
	}
	defer outbound.Close()

	store, err := OpenReconcileStore(filepath.Join(dir, "reconcile"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	pub, err := NewPublisher(listener.LocalAddr().String(), outbound, store, zap.NewNop(), 0)
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	defer pub.Close()

	for i := 0; i < 3; i++ {
		if err := pub.Publish("order_status", samplePayload{Status: "open"}); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	if got := pub.OutputSeq(); got != 3 {
		t.Errorf("expected output_seq 3 after 3 publishes, got %d", got)
	}

	listener.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 4096)
	var lastSeq int64 = -1
	for i := 0; i < 3; i++ {
		n, _, err := listener.ReadFromUDP(buf)
		if err != nil {
			t.Fatalf("read datagram %d: %v", i, err)
		}
		var env Envelope
		if err := json.Unmarshal(buf[:n], &env); err != nil {
			t.Fatalf("decode datagram: %v", err)
		}
		if int64(env.Seq) <= lastSeq {
			t.Fatalf("sequence did not increase: %d after %d", env.Seq, lastSeq)
		}
		lastSeq = int64(env.Seq)
	}
}

func TestPublisherResumesFromStartSeq(t *testing.T) {
	listener, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()

	dir := t.TempDir()
	outbound, _ := OpenOutbound(filepath.Join(dir, "matcher_out.test.log"))
	defer outbound.Close()
	store, _ := OpenReconcileStore(filepath.Join(dir, "reconcile"))
	defer store.Close()

	pub, err := NewPublisher(listener.LocalAddr().String(), outbound, store, zap.NewNop(), 42)
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	defer pub.Close()

	if pub.OutputSeq() != 42 {
		t.Fatalf("expected resumed output_seq 42, got %d", pub.OutputSeq())
	}
	pub.Publish("order_status", samplePayload{Status: "open"})
	if pub.OutputSeq() != 43 {
		t.Errorf("expected 43 after one publish, got %d", pub.OutputSeq())
	}
}
