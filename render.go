package admrender

import (
	"fmt"

	"github.com/llehouerou/go-admrender/internal/directspeakers"
	"github.com/llehouerou/go-admrender/internal/dsp"
	"github.com/llehouerou/go-admrender/internal/hoa"
	"github.com/llehouerou/go-admrender/internal/objectgain"
	"github.com/llehouerou/go-admrender/internal/psp"
	"github.com/llehouerou/go-admrender/internal/rendererr"
)

// Renderer holds one instance of each per-type path (Object,
// DirectSpeakers, HOA) bound to the rendering items set via
// SetRenderingItems, plus one BlockAligner per output layout channel.
//
// The Object path's decorrelator bank and delay line give it a fixed
// output latency, objectDelay samples, relative to the sample it was
// asked to render: its block starting at start_sample actually
// describes the stream's content at start_sample - objectDelay once it
// reaches the aligner. Rather than ask the aligner to accept a negative
// offset on the very first call (which BlockAligner treats as a fault),
// every path's add offset is shifted by the constant +objectDelay:
// Object output is added at the plain start_sample the caller gave it,
// while DirectSpeakers and HOA output (zero inherent latency) is added
// at start_sample + objectDelay. This preserves the same relative
// alignment between paths while keeping every aligner offset
// non-negative from the first call onward. Every aligner position
// below objectDelay therefore corresponds to a spec-frame sample index
// below 0 (pure priming artefact, per spec.md's "samples with indices
// < 0 are silently discarded"), not to deliverable output: each Render
// call pulls exactly len(input) samples out of the aligners (keeping
// their base in lockstep with start_sample, which Add calls depend on),
// discards however much of that pull still falls in the
// not-yet-past-objectDelay prefix, and returns only the remainder to
// the caller. skipped tracks how much of that prefix has been consumed
// so far, capped at objectDelay, so Render only ever hands back
// samples whose aligner position is >= objectDelay: M <= N while
// priming, M == N once start_sample has advanced past objectDelay.
//
// The +objectDelay shift applies only to the aligner offset, never to
// the start_sample each per-type renderer is asked to render: that
// argument is also the sample position each item's metadata source is
// timed against (BlockProcessingChannel's firstSample < startSample
// underrun check), which must stay the stream's true absolute
// position regardless of how its output is later repositioned in the
// aligner. Shifting it would make every DirectSpeakers/HOA block
// starting at or near sample 0 look like it arrived objectDelay
// samples late.
type Renderer struct {
	cfg Config

	objects        []*objectRenderer
	directSpeakers []*directSpeakersRenderer
	hoaRenderer    *hoaRenderer

	numTracks   int
	aligners    []*dsp.BlockAligner // one per output layout channel
	startSample int64
	skipped     int64 // priming samples already discarded from the aligner, capped at objectDelay
	objectDelay int64
}

// New builds a Renderer from cfg. cfg.Layout must have at least one
// channel; the panners and decoders built here are shared across every
// rendering item set later via SetRenderingItems.
func New(cfg Config) (*Renderer, error) {
	if len(cfg.Layout.Channels) == 0 {
		return nil, &rendererr.UnsupportedConfigError{What: "layout has no channels"}
	}

	r := &Renderer{cfg: cfg}
	r.aligners = make([]*dsp.BlockAligner, len(cfg.Layout.Channels))
	for i := range r.aligners {
		r.aligners[i] = dsp.NewBlockAligner()
	}
	return r, nil
}

// nonLFESpeakers returns the point-source panner speakers for every
// non-LFE channel of the layout, in NonLFEIndices order.
func nonLFESpeakers(r *Renderer) []psp.Speaker {
	idx := r.cfg.Layout.NonLFEIndices()
	speakers := make([]psp.Speaker, len(idx))
	for i, li := range idx {
		ch := r.cfg.Layout.Channels[li]
		speakers[i] = psp.Speaker{Name: ch.Name, Position: ch.Position.ToCartesian()}
	}
	return speakers
}

// SetRenderingItems replaces the renderer's rendering items, rebuilding
// every per-item renderer (and so resetting all item-local state: track
// processors' delay lines, decorrelator filter banks, metadata
// interpreters). The aligners and running sample clock are left alone,
// so a host can swap items mid-stream without losing alignment.
func (r *Renderer) SetRenderingItems(items []Item) error {
	fallback := psp.New(nonLFESpeakers(r))
	gainCalc := objectgain.New(fallback, r.cfg.PlaybackScreen)
	dsPanner := directspeakers.New(r.cfg.Layout, fallback, r.cfg.PlaybackScreen, r.cfg.Diagnostics, r.cfg.DirectSpeakersSubs)
	decoder := hoaDecoder(r, fallback)

	numOut := len(r.cfg.Layout.NonLFEIndices())
	numTracks := 0

	var objects []*objectRenderer
	var directs []*directSpeakersRenderer
	var hoaR *hoaRenderer
	objectDelay := int64(0)

	nonLFENames := make([]string, numOut)
	for i, li := range r.cfg.Layout.NonLFEIndices() {
		nonLFENames[i] = r.cfg.Layout.Channels[li].Name
	}
	seeds := channelSeeds(nonLFENames)

	for _, item := range items {
		switch it := item.(type) {
		case ObjectItem:
			if m := it.TrackSpec.MaxTrackIndex(); m >= numTracks {
				numTracks = m + 1
			}
			obj, err := newObjectRenderer(it, gainCalc, r.cfg.SampleRate, numOut,
				r.cfg.DecorrelationBlockSize, r.cfg.DecorrelationFilterLength, seeds)
			if err != nil {
				return fmt.Errorf("admrender: building object renderer for %q: %w", it.Name, err)
			}
			if d := obj.delay(); d > objectDelay {
				objectDelay = d
			}
			objects = append(objects, obj)

		case DirectSpeakersItem:
			if m := it.TrackSpec.MaxTrackIndex(); m >= numTracks {
				numTracks = m + 1
			}
			directs = append(directs, newDirectSpeakersRenderer(it, dsPanner, r.cfg.SampleRate, len(r.cfg.Layout.Channels)))

		case HOAItem:
			for _, spec := range it.TrackSpecs {
				if m := spec.MaxTrackIndex(); m >= numTracks {
					numTracks = m + 1
				}
			}
			if hoaR != nil {
				return &rendererr.UnsupportedConfigError{What: "more than one HOA item"}
			}
			hoaR = newHOARenderer(it, decoder, r.cfg.SampleRate, numOut)

		default:
			return &rendererr.UnsupportedConfigError{What: fmt.Sprintf("unknown rendering item type %T", item)}
		}
	}

	r.objects = objects
	r.directSpeakers = directs
	r.hoaRenderer = hoaR
	r.numTracks = numTracks
	r.objectDelay = objectDelay
	return nil
}

func hoaDecoder(r *Renderer, fallback psp.Panner) *hoa.Decoder {
	var opts []hoa.Option
	if r.cfg.HOAMaxRE {
		opts = append(opts, hoa.WithMaxRE())
	}
	if r.cfg.HOASpherePowerNorm {
		opts = append(opts, hoa.WithSpherePowerNormalization())
	}
	if r.cfg.Diagnostics != nil {
		opts = append(opts, hoa.WithDiagnostics(r.cfg.Diagnostics))
	}
	return hoa.New(r.cfg.Layout, fallback, r.cfg.HOADesignPoints, opts...)
}

// Render processes one block of raw multi-track PCM (one slice per
// physical track, all the same length) and returns the corresponding
// span of the output layout's channels. During the priming phase
// (while start_sample has not yet advanced past the Object path's fixed
// latency) the returned block may have fewer samples than the input;
// once primed, output length always matches input length. Call GetTail
// after the last real input block to flush the remaining primed
// samples.
func (r *Renderer) Render(input [][]float64) ([][]float64, error) {
	if len(input) == 0 {
		return make([][]float64, len(r.aligners)), nil
	}
	n := len(input[0])
	tracks := padTracks(input, r.numTracks)

	start := r.startSample

	for _, obj := range r.objects {
		out, err := obj.render(start, tracks)
		if err != nil {
			return nil, err
		}
		r.scatterNonLFE(out, start)
	}

	for _, ds := range r.directSpeakers {
		out, err := ds.render(start, tracks)
		if err != nil {
			return nil, err
		}
		for c := range out {
			r.aligners[c].Add(start+r.objectDelay, out[c])
		}
	}

	if r.hoaRenderer != nil {
		out, err := r.hoaRenderer.render(start, tracks)
		if err != nil {
			return nil, err
		}
		r.scatterNonLFE(out, start+r.objectDelay)
	}

	r.startSample += int64(n)

	// Pull exactly n samples out of every aligner this round (keeping
	// their base advancing in lockstep with start_sample, which next
	// round's Add calls require), then split that pull into the
	// still-priming prefix (discarded) and the deliverable remainder.
	skipRemaining := r.objectDelay - r.skipped
	if skipRemaining < 0 {
		skipRemaining = 0
	}
	skipNow := int(minInt64(int64(n), skipRemaining))
	r.skipped += int64(skipNow)

	result := make([][]float64, len(r.aligners))
	for c, al := range r.aligners {
		result[c] = al.Get(n)[skipNow:]
	}
	return result, nil
}

// GetTail flushes the Object path's internal decorrelator and delay
// state by feeding objectDelay zero samples through Render, returning
// whatever real output remains buffered once that completes. Call this
// once after the last block of real input.
func (r *Renderer) GetTail() ([][]float64, error) {
	remaining := r.objectDelay
	var chunks [][][]float64
	totalLen := 0

	for remaining > 0 {
		n := remaining
		const maxChunk = 4096
		if n > maxChunk {
			n = maxChunk
		}
		zeros := make([][]float64, r.numTracks)
		for i := range zeros {
			zeros[i] = make([]float64, n)
		}
		out, err := r.Render(zeros)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, out)
		if len(out) > 0 {
			totalLen += len(out[0])
		}
		remaining -= n
	}

	result := make([][]float64, len(r.aligners))
	for c := range result {
		result[c] = make([]float64, 0, totalLen)
		for _, chunk := range chunks {
			result[c] = append(result[c], chunk[c]...)
		}
	}
	return result, nil
}

// scatterNonLFE adds a (L, n) non-LFE renderer output into the layout's
// aligners, at the layout's absolute channel indices, at offset.
func (r *Renderer) scatterNonLFE(out [][]float64, offset int64) {
	for i, li := range r.cfg.Layout.NonLFEIndices() {
		r.aligners[li].Add(offset, out[i])
	}
}

// padTracks returns in, widened with silent rows if it has fewer than
// numTracks rows than the highest physical track index any rendering
// item's track spec reads from.
func padTracks(in [][]float64, numTracks int) [][]float64 {
	if len(in) >= numTracks {
		return in
	}
	n := 0
	if len(in) > 0 {
		n = len(in[0])
	}
	out := make([][]float64, numTracks)
	copy(out, in)
	for i := len(in); i < numTracks; i++ {
		out[i] = make([]float64, n)
	}
	return out
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
