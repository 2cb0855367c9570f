package journal

// MaxSeq returns the highest Seq value recorded in the journal at
// path, so the sequencer can be rewound to resume exactly after the
// last durable record instead of colliding with it. A missing or
// empty journal yields (0, false).
func MaxSeq(path string) (uint64, bool, error) {
	var max uint64
	found := false
	err := Scan(path, func(r Record) error {
		if !found || r.Seq > max {
			max = r.Seq
			found = true
		}
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return max, found, nil
}
