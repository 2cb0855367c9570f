package orderbook

// LevelView is a read-only summary of one resting price level, used by
// snapshot writers and depth reporting.
type LevelView struct {
	Price     int64
	TotalSize int64
	Orders    []Order
}

func levelView(pl *PriceLevel) LevelView {
	v := LevelView{Price: pl.Price, TotalSize: pl.TotalSize()}
	pl.Each(func(o *Order) {
		v.Orders = append(v.Orders, o.Clone())
	})
	return v
}

// BestBid returns the highest resting buy price, or (0, false) if the
// bid side is empty.
func (b *OrderBook) BestBid() (int64, bool) {
	lvl := b.bids.MaxLevel()
	if lvl == nil {
		return 0, false
	}
	return lvl.Price, true
}

// BestAsk returns the lowest resting sell price, or (0, false) if the
// ask side is empty.
func (b *OrderBook) BestAsk() (int64, bool) {
	lvl := b.asks.MinLevel()
	if lvl == nil {
		return 0, false
	}
	return lvl.Price, true
}

// Bids walks resting buy levels best-first (highest price first).
func (b *OrderBook) Bids(fn func(LevelView) bool) {
	b.bids.ForEachDescending(func(pl *PriceLevel) bool {
		return fn(levelView(pl))
	})
}

// Asks walks resting sell levels best-first (lowest price first).
func (b *OrderBook) Asks(fn func(LevelView) bool) {
	b.asks.ForEachAscending(func(pl *PriceLevel) bool {
		return fn(levelView(pl))
	})
}

// Depth reports the number of distinct resting orders across both
// sides, used by tests and status reporting.
func (b *OrderBook) Depth() int {
	return len(b.index)
}

// Restore re-inserts an order directly into the book without running
// it through the matching loop, used by snapshot load of
// already-resting state. The caller is responsible for ensuring o does
// not cross the book.
func (b *OrderBook) Restore(o *Order) {
	t := b.sideTree(o.Side)
	lvl := t.FindLevel(o.Price)
	if lvl == nil {
		lvl = t.UpsertLevel(o.Price)
	}
	lvl.Enqueue(o)
	b.index[o.ID] = &entry{side: o.Side, price: o.Price, order: o}
}
