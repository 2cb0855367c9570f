package feed

import (
	"fmt"
	"os"
	"sync"
)

// Outbound is the flat matcher_out.<product>.log file: one feed
// envelope per line. It is fire-and-forget from the publisher's point
// of view — a write failure here is logged and does not block or fail
// the publish, since the outbound journal exists only for post-hoc
// reconciliation, never for recovery.
type Outbound struct {
	mu   sync.Mutex
	file *os.File
}

// OpenOutbound opens (creating if necessary) the outbound journal file.
func OpenOutbound(path string) (*Outbound, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("feed: open outbound journal: %w", err)
	}
	return &Outbound{file: f}, nil
}

// Append writes one encoded envelope line. Callers treat a returned
// error as log-and-continue, never as fatal.
func (o *Outbound) Append(line []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, err := o.file.Write(line)
	return err
}

func (o *Outbound) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.file.Close()
}
