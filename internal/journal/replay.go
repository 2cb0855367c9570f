package journal

import "fmt"

// ErrMarkerNotFound is returned by Replay when the expected
// state(journal_state_num) marker is absent from the journal. Per the
// recovery protocol this is an integrity failure the caller logs and
// continues past, recovering from the snapshot alone rather than
// guessing a different marker.
var ErrMarkerNotFound = fmt.Errorf("journal: state marker not found")

// Handler is invoked once per order/cancel record replayed after the
// state marker, in journal order.
type Handler func(Record) error

// Replay scans path from the beginning, skipping every record until
// the state(markerStateNum) marker is seen, then dispatches every
// subsequent order/cancel record to handle. It returns ErrMarkerNotFound
// if the marker never appears, in which case the caller should fall
// back to snapshot-only recovery rather than treat any record as the
// boundary.
func Replay(path string, markerStateNum uint64, handle Handler) error {
	seenMarker := false
	err := Scan(path, func(r Record) error {
		if !seenMarker {
			if r.Kind == KindState && r.StateNum == markerStateNum {
				seenMarker = true
			}
			return nil
		}
		switch r.Kind {
		case KindOrder, KindCancel:
			return handle(r)
		default:
			return nil
		}
	})
	if err != nil {
		return err
	}
	if !seenMarker {
		return ErrMarkerNotFound
	}
	return nil
}
