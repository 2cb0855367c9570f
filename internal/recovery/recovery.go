// Package recovery rebuilds engine state at startup from the last
// durable snapshot plus the inbound journal records written after it,
// per the matching engine's recovery protocol: load the highest
// state_num snapshot, restore it into a fresh order book, then replay
// every order/cancel journaled since the marker paired to that
// snapshot, applying each through the same handler steady-state
// traffic uses.
package recovery

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"matchcore/internal/engine"
	"matchcore/internal/journal"
	"matchcore/internal/orderbook"
	"matchcore/internal/snapshot"
)

// Replayer is implemented by Pipeline; recovery dispatches replayed
// journal records to it without going through Pipeline's live-input
// journaling path. The Pipeline passed in must already be wired to
// the exact book LoadSnapshot returned, since ReplayOrder/ReplayCancel
// mutate that book in place.
type Replayer interface {
	ReplayOrder(journal.OrderPayload) error
	ReplayCancel(journal.CancelPayload)
}

// Snapshot is the result of LoadSnapshot: a book restored to its last
// durable state (or an empty book if none was ever taken) plus the
// counters the rest of the engine resumes from.
type Snapshot struct {
	Book      *orderbook.OrderBook
	StateNum  uint64
	OutputSeq uint64
}

// LoadSnapshot loads product's highest-numbered snapshot from snapDir
// into a fresh order book. If no snapshot exists yet, it returns an
// empty book at state_num 0 — the product has never been
// snapshotted, not a failure.
func LoadSnapshot(snapDir, product string, log *zap.Logger) (Snapshot, error) {
	book := orderbook.New()

	n, ok, err := snapshot.Latest(snapDir, product)
	if err != nil {
		return Snapshot{}, fmt.Errorf("recovery: list snapshots: %w", err)
	}
	if !ok {
		log.Info("recovery: no snapshot found, starting from an empty book", zap.String("product", product))
		return Snapshot{Book: book}, nil
	}

	state, err := snapshot.Load(snapDir, product, n)
	if err != nil {
		return Snapshot{}, fmt.Errorf("recovery: load snapshot: %w", err)
	}
	engine.RestoreAll(book, state)
	log.Info("recovery: restored snapshot",
		zap.String("product", product), zap.Uint64("state_num", state.StateNum),
		zap.Int("bids", len(state.Bids)), zap.Int("asks", len(state.Asks)))

	return Snapshot{Book: book, StateNum: state.StateNum, OutputSeq: state.OutputSeq}, nil
}

// ReplayJournal dispatches every order/cancel record journaled after
// the state(stateNum-1) marker to replayer, then returns the highest
// sequence number found anywhere in the journal so the caller can
// rewind its Sequencer to resume one past it. A missing marker in an
// otherwise-present journal is logged and tolerated — recovery
// continues with whatever the snapshot alone restored; any other
// replay error is returned, since the book would otherwise resume in
// an unknown state.
func ReplayJournal(journalPath string, stateNum uint64, replayer Replayer, log *zap.Logger) (lastSeq uint64, err error) {
	var markerStateNum uint64
	if stateNum > 0 {
		markerStateNum = stateNum - 1
	}

	replayed := 0
	replayErr := journal.Replay(journalPath, markerStateNum, func(r journal.Record) error {
		replayed++
		switch r.Kind {
		case journal.KindOrder:
			if r.Order == nil {
				return nil
			}
			return replayer.ReplayOrder(*r.Order)
		case journal.KindCancel:
			if r.Cancel == nil {
				return nil
			}
			replayer.ReplayCancel(*r.Cancel)
			return nil
		default:
			return nil
		}
	})
	if replayErr != nil {
		if errors.Is(replayErr, journal.ErrMarkerNotFound) {
			log.Warn("recovery: state marker not found in journal, continuing from snapshot alone",
				zap.Uint64("marker_state_num", markerStateNum))
		} else {
			return 0, fmt.Errorf("recovery: journal replay: %w", replayErr)
		}
	} else {
		log.Info("recovery: replayed journal records since marker", zap.Int("count", replayed))
	}

	maxSeq, _, err := journal.MaxSeq(journalPath)
	if err != nil {
		return 0, fmt.Errorf("recovery: scan journal for max seq: %w", err)
	}
	return maxSeq, nil
}
