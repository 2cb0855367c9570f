package orderbook

import "testing"

func TestRBTreeOrderingAscendingDescending(t *testing.T) {
	tr := newRBTree()
	prices := []int64{50, 10, 90, 30, 70, 20, 60}
	for _, p := range prices {
		tr.UpsertLevel(p)
	}
	if tr.Size() != len(prices) {
		t.Fatalf("expected size %d, got %d", len(prices), tr.Size())
	}

	var ascending []int64
	tr.ForEachAscending(func(pl *PriceLevel) bool {
		ascending = append(ascending, pl.Price)
		return true
	})
	for i := 1; i < len(ascending); i++ {
		if ascending[i-1] >= ascending[i] {
			t.Fatalf("ascending walk not sorted: %v", ascending)
		}
	}

	var descending []int64
	tr.ForEachDescending(func(pl *PriceLevel) bool {
		descending = append(descending, pl.Price)
		return true
	})
	for i := 1; i < len(descending); i++ {
		if descending[i-1] <= descending[i] {
			t.Fatalf("descending walk not sorted: %v", descending)
		}
	}
}

func TestRBTreeUpsertIsIdempotentPerPrice(t *testing.T) {
	tr := newRBTree()
	a := tr.UpsertLevel(100)
	b := tr.UpsertLevel(100)
	if a != b {
		t.Error("upserting the same price twice should return the same level")
	}
	if tr.Size() != 1 {
		t.Errorf("expected one level, got %d", tr.Size())
	}
}

func TestRBTreeDeleteLevel(t *testing.T) {
	tr := newRBTree()
	tr.UpsertLevel(10)
	tr.UpsertLevel(20)
	if !tr.DeleteLevel(10) {
		t.Fatal("expected delete to succeed")
	}
	if tr.Size() != 1 {
		t.Errorf("expected one level remaining, got %d", tr.Size())
	}
	if tr.DeleteLevel(999) {
		t.Error("deleting a missing price should report false")
	}
}

func TestRBTreeMinMax(t *testing.T) {
	tr := newRBTree()
	for _, p := range []int64{40, 10, 70, 20} {
		tr.UpsertLevel(p)
	}
	if tr.MinLevel().Price != 10 {
		t.Errorf("expected min 10, got %d", tr.MinLevel().Price)
	}
	if tr.MaxLevel().Price != 70 {
		t.Errorf("expected max 70, got %d", tr.MaxLevel().Price)
	}
}

func TestRBTreeManyInsertsStayBalanced(t *testing.T) {
	tr := newRBTree()
	for i := int64(0); i < 500; i++ {
		tr.UpsertLevel(i)
	}
	if tr.Size() != 500 {
		t.Fatalf("expected 500 levels, got %d", tr.Size())
	}
	var count int
	last := int64(-1)
	tr.ForEachAscending(func(pl *PriceLevel) bool {
		if pl.Price <= last {
			t.Fatalf("out of order at %d", pl.Price)
		}
		last = pl.Price
		count++
		return true
	})
	if count != 500 {
		t.Errorf("expected to visit 500 levels, visited %d", count)
	}
}
