// Package trackspec implements the track spec sum type that maps a
// rendering item's logical audio channel onto the physical tracks of a
// multi-track PCM stream, and the processor that extracts it.
package trackspec

import "github.com/llehouerou/go-admrender/internal/dsp"

// Kind identifies which variant of TrackSpec is populated.
type Kind uint8

const (
	// KindDirect reads one physical track unchanged.
	KindDirect Kind = iota
	// KindSilent produces all-zero samples.
	KindSilent
	// KindMatrix scales and delays one physical track.
	KindMatrix
	// KindMix sums several sub-specs.
	KindMix
)

// Spec is a track spec: Direct(index), Silent, Matrix(input, gain,
// delay_ms), or Mix([...sub-specs]), selected by Kind. Build one with
// the Direct/Silent/Matrix/Mix constructors rather than populating the
// fields directly, so Simplify's invariants hold by construction.
type Spec struct {
	Kind Kind

	Index int // KindDirect, KindMatrix: physical track index

	Gain     float64 // KindMatrix: linear gain, default 1
	DelayMS  float64 // KindMatrix: delay in milliseconds
	Sub      *Spec   // KindMatrix: the spec being scaled/delayed
	Children []Spec  // KindMix: sub-specs being summed
}

// Direct returns a spec reading physical track index unchanged.
func Direct(index int) Spec { return Spec{Kind: KindDirect, Index: index} }

// Silent returns a spec that always produces zero.
func Silent() Spec { return Spec{Kind: KindSilent} }

// Matrix returns a spec applying gain and delayMS to sub, then
// simplifies: a silent sub simplifies the whole thing to Silent. gain
// is the linear coefficient to apply (pass 1 for an ADM coefficient
// element with no gain attribute, per its documented default).
func Matrix(sub Spec, gain, delayMS float64) Spec {
	if sub.Kind == KindSilent {
		return Silent()
	}
	s := sub
	return Spec{Kind: KindMatrix, Gain: gain, DelayMS: delayMS, Sub: &s}
}

// Mix returns a spec summing children, after dropping any Silent
// children and flattening Mixes with fewer than 2 remaining children:
// an empty or single-child Mix simplifies to Silent or to that child.
func Mix(children []Spec) Spec {
	var kept []Spec
	for _, c := range children {
		if c.Kind != KindSilent {
			kept = append(kept, c)
		}
	}
	switch len(kept) {
	case 0:
		return Silent()
	case 1:
		return kept[0]
	default:
		return Spec{Kind: KindMix, Children: kept}
	}
}

// MaxTrackIndex returns the highest physical track index s reads from,
// or -1 if s reads no tracks (Silent).
func (s Spec) MaxTrackIndex() int {
	switch s.Kind {
	case KindDirect:
		return s.Index
	case KindMatrix:
		return s.Sub.MaxTrackIndex()
	case KindMix:
		max := -1
		for _, c := range s.Children {
			if m := c.MaxTrackIndex(); m > max {
				max = m
			}
		}
		return max
	default: // KindSilent
		return -1
	}
}

// Processor extracts the logical channel described by a Spec from a
// block of multi-track input, applying Matrix gain/delay via an
// internal delay line per KindMatrix node (so repeated calls across
// blocks carry delay state forward correctly) and sample-rate
// conversion of DelayMS to an integer sample count at construction.
type Processor struct {
	spec       Spec
	sampleRate int64
	delays     map[*Spec]*dsp.DelayLine
}

// NewProcessor builds a Processor for spec at sampleRate samples per
// second, allocating one DelayLine per Matrix node in the tree.
func NewProcessor(spec Spec, sampleRate int64) *Processor {
	p := &Processor{spec: spec, sampleRate: sampleRate, delays: make(map[*Spec]*dsp.DelayLine)}
	p.allocDelays(&p.spec)
	return p
}

func (p *Processor) allocDelays(s *Spec) {
	switch s.Kind {
	case KindMatrix:
		delaySamples := int(s.DelayMS * float64(p.sampleRate) / 1000.0)
		p.delays[s] = dsp.NewDelayLine(1, delaySamples)
		p.allocDelays(s.Sub)
	case KindMix:
		for i := range s.Children {
			p.allocDelays(&s.Children[i])
		}
	}
}

// Process extracts n samples starting at the current stream position
// from tracks (one slice per physical track, each of length >= n) into
// out, which must have length n.
func (p *Processor) Process(tracks [][]float64, out []float64) {
	p.process(&p.spec, tracks, out)
}

func (p *Processor) process(s *Spec, tracks [][]float64, out []float64) {
	switch s.Kind {
	case KindSilent:
		for i := range out {
			out[i] = 0
		}
	case KindDirect:
		copy(out, tracks[s.Index])
	case KindMatrix:
		scaled := make([]float64, len(out))
		p.process(s.Sub, tracks, scaled)
		delayed := make([]float64, len(out))
		p.delays[s].Process([][]float64{scaled}, [][]float64{delayed})
		for i, v := range delayed {
			out[i] = v * s.Gain
		}
	case KindMix:
		for i := range out {
			out[i] = 0
		}
		tmp := make([]float64, len(out))
		for i := range s.Children {
			p.process(&s.Children[i], tracks, tmp)
			for j, v := range tmp {
				out[j] += v
			}
		}
	}
}

// MultiTrackProcessor extracts several logical channels (one
// Processor per rendering item's track spec) from the same physical
// multi-track input each block.
type MultiTrackProcessor struct {
	procs []*Processor
}

// NewMultiTrackProcessor builds one Processor per spec in specs.
func NewMultiTrackProcessor(specs []Spec, sampleRate int64) *MultiTrackProcessor {
	m := &MultiTrackProcessor{procs: make([]*Processor, len(specs))}
	for i, s := range specs {
		m.procs[i] = NewProcessor(s, sampleRate)
	}
	return m
}

// Process extracts len(m.procs) logical channels from tracks into out,
// a (K, n) buffer with one row per spec passed to NewMultiTrackProcessor.
func (m *MultiTrackProcessor) Process(tracks [][]float64, out [][]float64) {
	for i, p := range m.procs {
		p.Process(tracks, out[i])
	}
}
