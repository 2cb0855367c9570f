// Package orderbook implements the in-memory, single-writer limit order
// book for one product. It holds the resting book, executes price-time
// priority matching, and reports every state change as a structured
// event rather than through a callback or subscription graph, so that
// callers (the message pipeline, tests) can treat Add/Remove as pure
// functions of the book plus one input.
package orderbook
