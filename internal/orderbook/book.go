package orderbook

// entry is the index record used to locate a resting order by id for
// cancellation, without walking either side of the book.
type entry struct {
	side  Side
	price int64
	order *Order
}

// OrderBook holds the resting state for one product: a bid tree and an
// ask tree of PriceLevels, plus an id index for O(log n) cancellation.
// It is not safe for concurrent use — callers serialize access to it,
// matching the single logical writer the matching engine is built
// around.
type OrderBook struct {
	bids  *rbtree // buy side, best = highest price
	asks  *rbtree // sell side, best = lowest price
	index map[string]*entry
}

// New returns an empty order book.
func New() *OrderBook {
	return &OrderBook{
		bids:  newRBTree(),
		asks:  newRBTree(),
		index: make(map[string]*entry),
	}
}

func (b *OrderBook) sideTree(s Side) *rbtree {
	if s == Buy {
		return b.bids
	}
	return b.asks
}

func (b *OrderBook) oppositeTree(s Side) *rbtree {
	if s == Buy {
		return b.asks
	}
	return b.bids
}

// best returns the best resting level in tree for the side it belongs
// to: highest price for bids, lowest for asks.
func best(t *rbtree, s Side) *PriceLevel {
	if s == Buy {
		return t.MaxLevel()
	}
	return t.MinLevel()
}

// crosses reports whether a taker on side s at price p can take
// liquidity resting at opposing price lvlPrice.
func crosses(s Side, p, lvlPrice int64) bool {
	if s == Buy {
		return p >= lvlPrice
	}
	return p <= lvlPrice
}

// Add submits a new order to the book. It returns the ordered sequence
// of events the operation produced: zero or more matches (each
// optionally followed by the exhausted provider's removal), then
// exactly one of an add (the order now rests) or a remove (the order
// is fully done, filled or cancelled) for the incoming order itself.
func (b *OrderBook) Add(o *Order) ([]Event, error) {
	if o.Size <= 0 {
		return nil, ErrInvalidOrder
	}
	if o.Kind != Market && o.Price <= 0 {
		return nil, ErrInvalidOrder
	}
	if _, exists := b.index[o.ID]; exists {
		return nil, ErrDuplicateOrder
	}

	if o.Kind == FOK && !b.fillable(o) {
		return []Event{{Kind: EventRemove, Order: o.Clone(), Reason: ReasonCancelled}}, nil
	}

	opp := b.oppositeTree(o.Side)

	if o.Kind == PostOnly {
		if lvl := best(opp, oppositeSide(o.Side)); lvl != nil && !lvl.Empty() && crosses(o.Side, o.Price, lvl.Price) {
			o.Done = true
			return []Event{{Kind: EventRemove, Order: o.Clone(), Reason: ReasonCancelled}}, nil
		}
	}

	var events []Event

	for o.Size > 0 {
		lvl := best(opp, oppositeSide(o.Side))
		if lvl == nil || lvl.Empty() {
			break
		}
		if o.Kind != Market && !crosses(o.Side, o.Price, lvl.Price) {
			break
		}

		provider := lvl.Front()
		matchSize := o.Size
		if provider.Size < matchSize {
			matchSize = provider.Size
		}

		o.Size -= matchSize
		providerClone := *provider
		lvl.reduce(provider, matchSize)

		events = append(events, Event{
			Kind: EventMatch,
			Match: MatchDetail{
				Price:          lvl.Price,
				Size:           matchSize,
				TakerID:        o.ID,
				TakerSender:    o.Sender,
				TakerSide:      o.Side,
				TakerPrice:     o.Price,
				TakerDone:      o.Size == 0,
				ProviderID:     provider.ID,
				ProviderSender: providerClone.Sender,
				ProviderDone:   provider.Done,
			},
		})

		if provider.Done {
			providerClone.Size = 0
			providerClone.Done = true
			delete(b.index, provider.ID)
			events = append(events, Event{Kind: EventRemove, Order: providerClone, Reason: ReasonFilled})
			if lvl.Empty() {
				opp.DeleteLevel(lvl.Price)
			}
		}
	}

	if o.Size == 0 {
		o.Done = true
		events = append(events, Event{Kind: EventRemove, Order: o.Clone(), Reason: ReasonFilled})
		return events, nil
	}

	if o.Kind == Market || o.Kind == IOC || o.Kind == FOK {
		o.Done = true
		events = append(events, Event{Kind: EventRemove, Order: o.Clone(), Reason: ReasonCancelled})
		return events, nil
	}

	own := b.sideTree(o.Side)
	lvl := own.FindLevel(o.Price)
	if lvl == nil {
		lvl = own.UpsertLevel(o.Price)
	}
	lvl.Enqueue(o)
	b.index[o.ID] = &entry{side: o.Side, price: o.Price, order: o}
	events = append(events, Event{Kind: EventAdd, Order: o.Clone()})
	return events, nil
}

// Remove cancels a resting order by id. sender must match the order's
// original Sender.
func (b *OrderBook) Remove(id, sender string) (Event, error) {
	e, ok := b.index[id]
	if !ok {
		return Event{}, ErrOrderNotFound
	}
	if e.order.Sender != sender {
		return Event{}, ErrNotOwner
	}

	t := b.sideTree(e.side)
	lvl := t.FindLevel(e.price)
	if lvl == nil {
		return Event{}, ErrOrderNotFound
	}

	clone := e.order.Clone()
	clone.Done = true
	lvl.remove(e.order)
	if lvl.Empty() {
		t.DeleteLevel(e.price)
	}
	delete(b.index, id)
	return Event{Kind: EventRemove, Order: clone, Reason: ReasonCancelled}, nil
}

// fillable reports whether a FOK order could be filled in full against
// the opposite side's current resting liquidity, without mutating the
// book.
func (b *OrderBook) fillable(o *Order) bool {
	opp := b.oppositeTree(o.Side)
	remaining := o.Size

	walk := func(lvl *PriceLevel) bool {
		if !crosses(o.Side, o.Price, lvl.Price) {
			return false
		}
		remaining -= lvl.TotalSize()
		return remaining > 0
	}
	// Opposite of a buy taker is the ask side, best-first ascending;
	// opposite of a sell taker is the bid side, best-first descending.
	if o.Side == Buy {
		opp.ForEachAscending(walk)
	} else {
		opp.ForEachDescending(walk)
	}
	return remaining <= 0
}

func oppositeSide(s Side) Side {
	if s == Buy {
		return Sell
	}
	return Buy
}
