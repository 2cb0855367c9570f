package pipeline

import (
	"fmt"

	"matchcore/internal/orderbook"
)

func parseSide(s string) (orderbook.Side, error) {
	switch s {
	case "buy":
		return orderbook.Buy, nil
	case "sell":
		return orderbook.Sell, nil
	default:
		return 0, fmt.Errorf("pipeline: unrecognized side %q", s)
	}
}

func parseKind(s string) orderbook.Kind {
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
