package claude

import "sync/atomic"

// Stats tracks log-ingestion counters. All counters are atomic so the
// watch path and on-demand readers can share one instance.
type Stats struct {
	filesParsed      atomic.Int64
	linesExtracted   atomic.Int64
	linesSkipped     atomic.Int64
	incrementalReads atomic.Int64
	offsetResets     atomic.Int64
}

// Snapshot is a point-in-time copy of ingestion counters.
type Snapshot struct {
	FilesParsed      int64
	LinesExtracted   int64
	LinesSkipped     int64
	IncrementalReads int64
	OffsetResets     int64
}

// The record helpers tolerate a nil receiver so callers that do not
// collect stats can pass nil.

func (s *Stats) recordFileParsed() {
	if s != nil {
		s.filesParsed.Add(1)
	}
}

func (s *Stats) recordExtracted(n int64) {
	if s != nil {
		s.linesExtracted.Add(n)
	}
}

func (s *Stats) recordSkipped(n int64) {
	if s != nil {
		s.linesSkipped.Add(n)
	}
}

func (s *Stats) recordIncrementalRead() {
	if s != nil {
		s.incrementalReads.Add(1)
	}
}

func (s *Stats) recordOffsetReset() {
	if s != nil {
		s.offsetResets.Add(1)
	}
}

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		FilesParsed:      s.filesParsed.Load(),
		LinesExtracted:   s.linesExtracted.Load(),
		LinesSkipped:     s.linesSkipped.Load(),
		IncrementalReads: s.incrementalReads.Load(),
		OffsetResets:     s.offsetResets.Load(),
	}
}
