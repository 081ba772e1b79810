package sim

import "sync"

// Log is the append-only output of a run. It is written by the run loop
// only; any goroutine may read it.
type Log struct {
	mu      sync.RWMutex
	samples []Sample
	window  float64
}

// NewLog returns a log that keeps the most recent window seconds, or every
// sample when window is zero.
func NewLog(window float64) *Log {
	return &Log{window: window}
}

func (l *Log) Append(s Sample) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.samples = append(l.samples, s)
	if l.window <= 0 {
		return
	}
	cutoff := s.Time - l.window
	drop := 0
	for drop < len(l.samples) && l.samples[drop].Time < cutoff {
		drop++
	}
	if drop == 0 {
		return
	}
	if drop < len(l.samples)/2 {
		l.samples = l.samples[drop:]
		return
	}
	// Compact into a new array; existing snapshots keep the old one.
	kept := make([]Sample, len(l.samples)-drop, 2*(len(l.samples)-drop)+1)
	copy(kept, l.samples[drop:])
	l.samples = kept
}

// Snapshot returns the current samples. The returned slice is never written
// by later appends and must not be modified by the caller.
func (l *Log) Snapshot() []Sample {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := len(l.samples)
	return l.samples[:n:n]
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.samples)
}

func (l *Log) Latest() (Sample, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.samples) == 0 {
		return Sample{}, false
	}
	return l.samples[len(l.samples)-1], true
}

// Reset discards every sample without touching earlier snapshots.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.samples = nil
}
