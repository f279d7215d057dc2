// Package gain implements the fixed interval of gains a rendering
// item's metadata interpreter produces per block: a constant-gain
// block, a linearly-interpolated ramp between two gain vectors, and a
// fixed-matrix block that both gains and re-routes channels. All three
// share a common Interval so a BlockProcessingChannel can queue and
// dequeue them without caring which kind it's holding.
package gain

import "github.com/llehouerou/go-admrender/internal/rational"

// Interval is the half-open sample range [Start, End) a ProcessingBlock
// applies to. End may be rational.Inf for a block with no specified
// duration (the item's last block, extending to the end of the item).
type Interval struct {
	Start rational.Time
	End   rational.Time
}

// Duration returns End - Start. Must not be called when End is Inf.
func (iv Interval) Duration() rational.Time { return iv.End.Sub(iv.Start) }

// ProcessingBlock is one gain operation covering a bounded time
// interval, driven over one or more input channels. FixedGains and
// InterpGains are always bound to a single logical input channel (so
// len(in) == 1 for them); FixedMatrix mixes several input channels at
// once, so in carries one slice per input channel it reads.
type ProcessingBlock interface {
	Interval() Interval
	// NumOutputs returns how many output channels this block produces.
	NumOutputs() int
	// Apply processes nSamples from each channel of in, starting
	// `offset` samples into this block's interval (0 <= offset,
	// offset+nSamples <= block length in samples), accumulating
	// (summing) into out[c][:nSamples] for each output channel c.
	Apply(in [][]float64, offset int, out [][]float64)
}

// FixedGains applies a constant per-output-channel gain vector to a
// single input channel for the whole interval.
type FixedGains struct {
	Span  Interval
	Gains []float64 // one gain per output channel
}

func (b *FixedGains) Interval() Interval { return b.Span }
func (b *FixedGains) NumOutputs() int    { return len(b.Gains) }

func (b *FixedGains) Apply(in [][]float64, offset int, out [][]float64) {
	src := in[0]
	for c, g := range b.Gains {
		if g == 0 {
			continue
		}
		o := out[c]
		for i, v := range src {
			o[i] += v * g
		}
	}
}

// InterpGains linearly ramps each output channel's gain from GainsStart
// at the beginning of the interval to GainsEnd at its end, applied to a
// single input channel. p(s) for a sample at offset s samples from the
// interval's first sample (0 <= s <= LengthSamples) is s/LengthSamples.
// Both s and LengthSamples are whole sample counts taken from the
// interval's bounds after they are rounded up to sample indices; a
// fractional start or end position does not enter p.
type InterpGains struct {
	Span          Interval
	GainsStart    []float64
	GainsEnd      []float64
	LengthSamples int // total samples spanned by Span, precomputed by the caller
}

func (b *InterpGains) Interval() Interval { return b.Span }
func (b *InterpGains) NumOutputs() int    { return len(b.GainsStart) }

func (b *InterpGains) Apply(in [][]float64, offset int, out [][]float64) {
	src := in[0]
	denom := float64(b.LengthSamples)
	for c := range b.GainsStart {
		gs, ge := b.GainsStart[c], b.GainsEnd[c]
		if gs == 0 && ge == 0 {
			continue
		}
		o := out[c]
		for i, v := range src {
			s := offset + i
			var p float64
			if denom > 0 {
				p = float64(s) / denom
			}
			g := gs + (ge-gs)*p
			o[i] += v * g
		}
	}
}

// FixedMatrix applies a fixed gain matrix to potentially several input
// channels at once: each output channel is the weighted sum
// Matrix[c] . in over all input channels. OutputChannels, when
// non-nil, maps row index c to an absolute output channel index (the
// HOA renderer uses this to scatter into only the non-LFE output
// channels of a layout); a nil OutputChannels means row c writes
// directly to out[c].
type FixedMatrix struct {
	Span           Interval
	Matrix         [][]float64 // Matrix[c][k]: gain from input channel k to output row c
	OutputChannels []int
}

func (b *FixedMatrix) Interval() Interval { return b.Span }
func (b *FixedMatrix) NumOutputs() int    { return len(b.Matrix) }

func (b *FixedMatrix) Apply(in [][]float64, offset int, out [][]float64) {
	for c, row := range b.Matrix {
		target := c
		if b.OutputChannels != nil {
			target = b.OutputChannels[c]
		}
		o := out[target]
		for k, g := range row {
			if g == 0 {
				continue
			}
			src := in[k]
			for i, v := range src {
				o[i] += v * g
			}
		}
	}
}
