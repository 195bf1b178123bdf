package engine

import "sync"

// ringCapacity bounds the retained log lines; older lines are evicted.
const ringCapacity = 2000

type logEntry struct {
	seq  uint64
	line string
}

// logRing is the run's observation channel: an append-only sequence of
// log lines, bounded to the newest ringCapacity entries. Sequence
// numbers are monotonic from 1 and survive eviction, so pollers can
// resume from wherever they left off.
type logRing struct {
	mu      sync.Mutex
	seq     uint64
	entries []logEntry
}

func newLogRing() *logRing {
	return &logRing{entries: make([]logEntry, 0, 64)}
}

func (r *logRing) append(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.entries = append(r.entries, logEntry{seq: r.seq, line: line})
	if len(r.entries) > ringCapacity {
		r.entries = r.entries[len(r.entries)-ringCapacity:]
	}
}

func (r *logRing) read(since uint64) (uint64, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := make([]string, 0, len(r.entries))
	for _, en := range r.entries {
		if en.seq > since {
			lines = append(lines, en.line)
		}
	}
	return r.seq, lines
}
