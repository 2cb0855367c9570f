package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Inbound is the durable, single-writer inbound journal. Append
// blocks until the record is fsynced, matching the pipeline's
// "append → wait for durability → apply" ordering contract; it is
// never suspended on by matching or snapshot capture, only by the
// writer's own append path.
type Inbound struct {
	mu   sync.Mutex
	file *os.File
}

// Open opens (creating if necessary) the inbound journal file at path
// for append.
func Open(path string) (*Inbound, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("journal: open inbound: %w", err)
	}
	return &Inbound{file: f}, nil
}

// Append durably writes r as the next line of the journal. A failure
// here is fatal to the writer per the engine's error handling design:
// recovery would be ambiguous about what was and was not durable.
func (j *Inbound) Append(r Record) error {
	line, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("journal: encode record: %w", err)
	}
	line = append(line, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()

	if _, err := j.file.Write(line); err != nil {
		return fmt.Errorf("journal: append: %w", err)
	}
	if err := j.file.Sync(); err != nil {
		return fmt.Errorf("journal: sync: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (j *Inbound) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}

// Scan walks the journal from the beginning, decoding one Record per
// line and invoking fn for each. It stops at the first decode error or
// when fn returns a non-nil error.
func Scan(path string, fn func(Record) error) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("journal: open for scan: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var r Record
		if err := json.Unmarshal(line, &r); err != nil {
			return fmt.Errorf("journal: decode record: %w", err)
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return sc.Err()
}
