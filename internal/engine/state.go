// Package engine carries the serializable EngineState snapshot content
// and the translation from orderbook.Event into the feed payload shapes
// external collaborators (FeedPublisher, MessagePipeline) exchange.
// It sits between the OrderBook, which knows nothing about snapshots
// or feed wire shapes, and the components that do.
package engine

import (
	"time"

	"matchcore/internal/orderbook"
)

// OrderEntry is the on-disk representation of one resting order inside
// a snapshot, in the priority order it held within its level.
type OrderEntry struct {
	ID         string    `json:"id"`
	Sender     string    `json:"sender"`
	Kind       string    `json:"kind"`
	Price      int64     `json:"price"`
	Size       int64     `json:"size"`
	ReceivedAt time.Time `json:"received_ts"`
}

// State is the snapshot content named EngineState in the matching
// engine's data model: state_num, the next output sequence number, and
// both sides of the book in priority order.
type State struct {
	StateNum  uint64       `json:"state_num"`
	OutputSeq uint64       `json:"output_seq"`
	Bids      []OrderEntry `json:"bids"`
	Asks      []OrderEntry `json:"asks"`
}

func kindName(k orderbook.Kind) string { return k.String() }

func kindFromName(s string) orderbook.Kind {
	switch s {
	case "market":
		return orderbook.Market
	case "ioc":
		return orderbook.IOC
	case "fok":
		return orderbook.FOK
	case "post_only":
		return orderbook.PostOnly
	default:
		return orderbook.Limit
	}
}

func toEntry(o orderbook.Order) OrderEntry {
	return OrderEntry{
		ID:         o.ID,
		Sender:     o.Sender,
		Kind:       kindName(o.Kind),
		Price:      o.Price,
		Size:       o.Size,
		ReceivedAt: o.ReceivedAt,
	}
}

// Capture builds a State from the book's current resting orders, in
// priority order (bids best-first descending, asks best-first
// ascending), plus the given state_num/output_seq counters.
func Capture(book *orderbook.OrderBook, stateNum, outputSeq uint64) State {
	s := State{StateNum: stateNum, OutputSeq: outputSeq}
	book.Bids(func(lvl orderbook.LevelView) bool {
		for _, o := range lvl.Orders {
			s.Bids = append(s.Bids, toEntry(o))
		}
		return true
	})
	book.Asks(func(lvl orderbook.LevelView) bool {
		for _, o := range lvl.Orders {
			s.Asks = append(s.Asks, toEntry(o))
		}
		return true
	})
	return s
}

// Restore inserts every bid and ask from the state into book in the
// stored priority order, without invoking matching — the snapshot is
// assumed to already be at rest and uncrossed, per the recovery
// protocol's precondition.
func Restore(book *orderbook.OrderBook, s State, side orderbook.Side, entries []OrderEntry) {
	for _, e := range entries {
		book.Restore(&orderbook.Order{
			ID:         e.ID,
			Sender:     e.Sender,
			Side:       side,
			Kind:       kindFromName(e.Kind),
			Price:      e.Price,
			Size:       e.Size,
			ReceivedAt: e.ReceivedAt,
		})
	}
}

// RestoreAll restores both sides of s into an otherwise empty book.
func RestoreAll(book *orderbook.OrderBook, s State) {
	Restore(book, s, orderbook.Buy, s.Bids)
	Restore(book, s, orderbook.Sell, s.Asks)
}
