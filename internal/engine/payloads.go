package engine

import (
	"time"

	"github.com/google/uuid"

	"matchcore/internal/orderbook"
)

// OrderStatus is the order_status feed payload for the "received" and
// "open" statuses.
type OrderStatus struct {
	Status       string `json:"status"`
	Side         string `json:"side"`
	OrderID      string `json:"order_id"`
	Sender       string `json:"sender"`
	Price        int64  `json:"price"`
	Size         int64  `json:"size"`
	ExchangeTime int64  `json:"exchange_time"`
}

// DoneStatus is the order_status{status:"done", ...} feed payload.
type DoneStatus struct {
	Status  string `json:"status"`
	OrderID string `json:"order_id"`
	Size    int64  `json:"size"`
	Price   int64  `json:"price"`
	Side    string `json:"side"`
	UserID  string `json:"user_id"`
	Reason  string `json:"reason"`
}

// Match is the match feed payload.
type Match struct {
	ID                 string `json:"id"`
	TakerID            string `json:"taker_id"`
	ProviderID         string `json:"provider_id"`
	TakerUserID        string `json:"taker_user_id"`
	ProviderUserID     string `json:"provider_user_id"`
	Size               int64  `json:"size"`
	Price              int64  `json:"price"`
	TakerSide          string `json:"taker_side"`
	TakerOriginalLimit int64  `json:"taker_original_limit"`
	TakerDone          bool   `json:"taker_done"`
	ProviderDone       bool   `json:"provider_done"`
}

// CancelReject is the per-connection reply payload for a failed cancel.
type CancelReject struct {
	OrderID      string `json:"order_id"`
	RejectReason string `json:"reject_reason"`
}

// Received builds the order_status{received} payload emitted before an
// order is handed to the OrderBook.
func Received(o *orderbook.Order, now time.Time) OrderStatus {
	return OrderStatus{
		Status:       "received",
		Side:         o.Side.String(),
		OrderID:      o.ID,
		Sender:       o.Sender,
		Price:        o.Price,
		Size:         o.Size,
		ExchangeTime: now.UnixNano(),
	}
}

// Open builds the order_status{open} payload for an order that rested
// without being fully filled.
func Open(o orderbook.Order, now time.Time) OrderStatus {
	return OrderStatus{
		Status:       "open",
		Side:         o.Side.String(),
		OrderID:      o.ID,
		Sender:       o.Sender,
		Price:        o.Price,
		Size:         o.Size,
		ExchangeTime: now.UnixNano(),
	}
}

// Done builds the order_status{done} payload for an order leaving the
// book, filled or cancelled.
func Done(o orderbook.Order, reason orderbook.DoneReason) DoneStatus {
	return DoneStatus{
		Status:  "done",
		OrderID: o.ID,
		Size:    o.Size,
		Price:   o.Price,
		Side:    o.Side.String(),
		UserID:  o.Sender,
		Reason:  reason.String(),
	}
}

// FromMatch builds the match payload from an orderbook.MatchDetail,
// minting a fresh uuid for the match's own id.
func FromMatch(m orderbook.MatchDetail) Match {
	return Match{
		ID:                 uuid.New().String(),
		TakerID:            m.TakerID,
		ProviderID:         m.ProviderID,
		TakerUserID:        m.TakerSender,
		ProviderUserID:     m.ProviderSender,
		Size:               m.Size,
		Price:              m.Price,
		TakerSide:          m.TakerSide.String(),
		TakerOriginalLimit: m.TakerPrice,
		TakerDone:          m.TakerDone,
		ProviderDone:       m.ProviderDone,
	}
}

// Reject builds the cancel_reject reply payload for a failed cancel.
func Reject(orderID, reason string) CancelReject {
	return CancelReject{OrderID: orderID, RejectReason: reason}
}
