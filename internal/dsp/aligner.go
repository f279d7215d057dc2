package dsp

// BlockAligner sums an arbitrary number of sample streams, each
// starting at its own offset into a shared timeline, into one
// contiguous output stream starting at sample 0. Streams are fed via
// repeated Add calls (one per contributing channel, in any order,
// offsets expressed as absolute sample indices on that timeline) and
// drained via Get, which returns and discards the next run of
// already-summed samples. This is how a channel delayed by a Matrix
// track spec's delay_ms, or a decorrelation filter's extra latency, is
// recombined with undelayed channels into a single aligned output
// without the caller having to reason about the relative offsets
// itself.
type BlockAligner struct {
	buf  []float64
	base int64 // absolute sample index buf[0] corresponds to
}

// NewBlockAligner returns an empty aligner positioned at sample 0.
func NewBlockAligner() *BlockAligner {
	return &BlockAligner{}
}

// Add accumulates samples into the timeline starting at absolute
// sample index offset. offset must be >= the aligner's current base
// (the position of the oldest sample not yet delivered by Get); adding
// before that position would silently lose the part that's already
// been consumed.
func (a *BlockAligner) Add(offset int64, samples []float64) {
	rel := offset - a.base
	if rel < 0 {
		panic("dsp: BlockAligner.Add offset precedes already-consumed samples")
	}

	end := rel + int64(len(samples))
	if end > int64(len(a.buf)) {
		grown := make([]float64, end)
		copy(grown, a.buf)
		a.buf = grown
	}

	for i, v := range samples {
		a.buf[rel+int64(i)] += v
	}
}

// Get removes and returns the next n samples of the aligned output,
// zero-filling any that no stream has contributed to yet, and advances
// the aligner's base by n.
func (a *BlockAligner) Get(n int) []float64 {
	out := make([]float64, n)
	avail := minInt(n, len(a.buf))
	copy(out, a.buf[:avail])

	if n >= len(a.buf) {
		a.buf = a.buf[:0]
	} else {
		a.buf = append(a.buf[:0], a.buf[n:]...)
	}
	a.base += int64(n)

	return out
}

// Base reports the absolute sample index of the next sample Get will
// return.
func (a *BlockAligner) Base() int64 { return a.base }
