package journal

import (
	"path/filepath"
	"testing"
)

func TestMaxSeqFindsHighest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matcher.test.log")
	j, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	j.Append(OrderRecord(1, OrderPayload{ID: "A", Sender: "u1", Side: "buy", Price: 100, Size: 1}))
	j.Append(StateMarker(2, 0))
	j.Append(CancelRecord(3, CancelPayload{OrderID: "A", SenderID: "u1"}))
	j.Close()

	max, found, err := MaxSeq(path)
	if err != nil {
		t.Fatalf("max seq: %v", err)
	}
	if !found || max != 3 {
		t.Errorf("expected max seq 3, got %d (found=%v)", max, found)
	}
}

func TestMaxSeqEmptyJournal(t *testing.T) {
	dir := t.TempDir()
	_, found, err := MaxSeq(filepath.Join(dir, "missing.log"))
	if err != nil {
		t.Fatalf("max seq: %v", err)
	}
	if found {
		t.Error("expected found=false for a missing journal")
	}
}
