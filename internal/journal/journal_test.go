package journal

import (
	"path/filepath"
	"testing"
)

func TestAppendAndScanRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matcher.test.log")

	j, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	records := []Record{
		OrderRecord(1, OrderPayload{ID: "A", Sender: "u1", Side: "buy", Price: 100, Size: 5}),
		StateMarker(2, 0),
		CancelRecord(3, CancelPayload{OrderID: "A", SenderID: "u1"}),
	}
	for _, r := range records {
		if err := j.Append(r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := j.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	var got []Record
	if err := Scan(path, func(r Record) error {
		got = append(got, r)
		return nil
	}); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if got[0].Kind != KindOrder || got[0].Order.ID != "A" {
		t.Errorf("unexpected first record: %+v", got[0])
	}
	if got[1].Kind != KindState || got[1].StateNum != 0 {
		t.Errorf("unexpected marker record: %+v", got[1])
	}
}

func TestScanMissingFileIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	if err := Scan(filepath.Join(dir, "missing.log"), func(Record) error { return nil }); err != nil {
		t.Errorf("expected no error scanning a missing journal, got %v", err)
	}
}

func TestReplaySkipsUntilMarkerThenDispatches(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matcher.test.log")
	j, _ := Open(path)
	defer j.Close()

	j.Append(OrderRecord(1, OrderPayload{ID: "pre", Sender: "u0", Side: "buy", Price: 50, Size: 1}))
	j.Append(StateMarker(2, 5))
	j.Append(OrderRecord(3, OrderPayload{ID: "post1", Sender: "u1", Side: "buy", Price: 100, Size: 2}))
	j.Append(CancelRecord(4, CancelPayload{OrderID: "post1", SenderID: "u1"}))

	var dispatched []string
	err := Replay(path, 5, func(r Record) error {
		if r.Kind == KindOrder {
			dispatched = append(dispatched, r.Order.ID)
		} else {
			dispatched = append(dispatched, r.Cancel.OrderID)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(dispatched) != 2 || dispatched[0] != "post1" || dispatched[1] != "post1" {
		t.Errorf("expected only post-marker records dispatched, got %v", dispatched)
	}
}

func TestReplayReportsMissingMarker(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matcher.test.log")
	j, _ := Open(path)
	j.Append(OrderRecord(1, OrderPayload{ID: "A", Sender: "u1", Side: "buy", Price: 100, Size: 1}))
	j.Close()

	err := Replay(path, 7, func(Record) error { return nil })
	if err != ErrMarkerNotFound {
		t.Errorf("expected ErrMarkerNotFound, got %v", err)
	}
}
