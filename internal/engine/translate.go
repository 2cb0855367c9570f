package engine

import (
	"time"

	"matchcore/internal/orderbook"
)

// FeedItem pairs a feed payload with the envelope type it belongs
// under, in the order the FeedPublisher must assign sequence numbers
// and publish them.
type FeedItem struct {
	Type    string
	Payload any
}

// Translate converts the ordered event sequence returned by
// OrderBook.Add or OrderBook.Remove into the ordered sequence of feed
// payloads spec.md §6 names, preserving event order exactly: the
// OrderBook's event-ordering guarantee (matches, each optionally
// followed by the provider's removal, then exactly one terminal add or
// remove for the order itself) becomes the feed's match/open/done
// ordering guarantee with no reordering in between.
func Translate(events []orderbook.Event, now time.Time) []FeedItem {
	items := make([]FeedItem, 0, len(events))
	for _, ev := range events {
		switch ev.Kind {
		case orderbook.EventMatch:
			items = append(items, FeedItem{Type: "match", Payload: FromMatch(ev.Match)})
		case orderbook.EventAdd:
			items = append(items, FeedItem{Type: "order_status", Payload: Open(ev.Order, now)})
		case orderbook.EventRemove:
			items = append(items, FeedItem{Type: "order_status", Payload: Done(ev.Order, ev.Reason)})
		}
	}
	return items
}
