package orderbook

import "time"

// Side identifies which book an order rests on.
type Side uint8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Sell {
		return "sell"
	}
	return "buy"
}

// Kind distinguishes the matching discipline applied to an order on
// arrival. Limit is the only kind described by the core matching rule;
// the others are layered on top of it (see SPEC_FULL.md §5) and never
// change the Limit code path.
type Kind uint8

const (
	Limit Kind = iota
	Market
	IOC
	FOK
	PostOnly
)

func (k Kind) String() string {
	switch k {
	case Market:
		return "market"
	case IOC:
		return "ioc"
	case FOK:
		return "fok"
	case PostOnly:
		return "post_only"
	default:
		return "limit"
	}
}

// Order is immutable after acceptance except for its residual Size and
// Done flag. Priority within a PriceLevel is strict arrival order, not
// ReceivedAt — ReceivedAt is reporting metadata only.
type Order struct {
	ID         string
	Sender     string
	Side       Side
	Kind       Kind
	Price      int64
	Size       int64
	Done       bool
	ReceivedAt time.Time

	// intrusive FIFO linkage within a PriceLevel.
	next, prev *Order
}

// Clone returns a value copy with no list linkage, safe to hand to
// callers as an event payload or snapshot entry.
func (o *Order) Clone() Order {
	c := *o
	c.next, c.prev = nil, nil
	return c
}
