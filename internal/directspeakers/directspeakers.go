// Package directspeakers implements the DirectSpeakers panner: label
// matching against a loudspeaker layout, falling back to bounded
// position matching and then to a point-source panner, with LFE
// channels handled by their own matching and fallback rule.
package directspeakers

import (
	"math"
	"strings"

	"github.com/llehouerou/go-admrender/internal/diag"
	"github.com/llehouerou/go-admrender/internal/geom"
	"github.com/llehouerou/go-admrender/internal/layout"
	"github.com/llehouerou/go-admrender/internal/metadata"
	"github.com/llehouerou/go-admrender/internal/psp"
	"github.com/llehouerou/go-admrender/internal/screen"
)

// positionTolerance widens each component of a block's bounded position
// range (in that component's own units) when matching a speaker's
// nominal position against it, and is the margin within which two
// candidate distances count as a tie.
const positionTolerance = 1e-5

// lfeLowPassThreshold is the highest low-pass corner frequency (in Hz)
// that still marks a channel as LFE.
const lfeLowPassThreshold = 200.0

// defaultSubstitutions maps a stripped speaker label to its layout
// channel name, per the renderer's built-in label substitution table.
var defaultSubstitutions = map[string]string{
	"LFE":  "LFE1",
	"LFEL": "LFE1",
	"LFER": "LFE2",
}

// Panner implements metadata.DirectSpeakersPanner over a fixed
// loudspeaker layout.
type Panner struct {
	layout        layout.Layout
	psp           psp.Panner
	pspIndices    []int // layout index each psp.Panner output corresponds to
	substitutions map[string]string
	playback      screen.Screen
	diag          *diag.Recorder
}

// New builds a Panner over lay, using psp for the non-LFE point-source
// fallback (whose outputs must be ordered the same as
// lay.NonLFEIndices()), recording warnings to rec (which may be nil to
// discard them). extraSubstitutions are merged on top of the built-in
// table, overriding entries with the same key.
func New(lay layout.Layout, pspPanner psp.Panner, playback screen.Screen, rec *diag.Recorder, extraSubstitutions map[string]string) *Panner {
	subs := make(map[string]string, len(defaultSubstitutions)+len(extraSubstitutions))
	for k, v := range defaultSubstitutions {
		subs[k] = v
	}
	for k, v := range extraSubstitutions {
		subs[k] = v
	}
	return &Panner{
		layout:        lay,
		psp:           pspPanner,
		pspIndices:    lay.NonLFEIndices(),
		substitutions: subs,
		playback:      playback,
		diag:          rec,
	}
}

// CalcGains implements metadata.DirectSpeakersPanner.
func (p *Panner) CalcGains(format metadata.DirectSpeakersBlockFormat, extra metadata.DirectSpeakersExtraData) ([]float64, error) {
	isLFE := p.isLFE(format, extra)

	for _, label := range format.SpeakerLabels {
		name := p.resolveLabel(label)
		if idx := p.layout.IndexOf(name); idx >= 0 && p.layout.Channels[idx].IsLFE == isLFE {
			return p.oneHot(idx), nil
		}
	}

	pos := format.Position
	az, el, dist := screen.HandleAzEl(pos.Azimuth.Value, pos.Elevation.Value, pos.Distance.Value, edgeLockMode(format.ScreenEdgeLock), p.playback)
	pos.Azimuth.Value, pos.Elevation.Value, pos.Distance.Value = az, el, dist

	match, ok := p.findBoundedMatch(pos, isLFE)
	if ok {
		return p.oneHot(match), nil
	}

	if isLFE {
		if idx := p.layout.IndexOf("LFE1"); idx >= 0 {
			return p.oneHot(idx), nil
		}
		return make([]float64, len(p.layout.Channels)), nil
	}

	target := pos.Nominal()
	pspGains := p.psp.Handle(target)
	gains := make([]float64, len(p.layout.Channels))
	for i, g := range pspGains {
		gains[p.pspIndices[i]] = g
	}
	return gains, nil
}

// isLFE determines whether this block describes an LFE channel: a
// declared low-pass at or below the LFE threshold, or a speaker label
// resolving to "LFE1"/"LFE2", with a warning recorded on mismatch
// between the two signals when both are present.
func (p *Panner) isLFE(format metadata.DirectSpeakersBlockFormat, extra metadata.DirectSpeakersExtraData) bool {
	freqSaysLFE := false
	haveFreq := extra.ChannelFrequency != nil
	if haveFreq && extra.ChannelFrequency.LowPass != nil && extra.ChannelFrequency.HighPass == nil {
		freqSaysLFE = *extra.ChannelFrequency.LowPass <= lfeLowPassThreshold
	}

	labelSaysLFE := false
	for _, label := range format.SpeakerLabels {
		name := p.resolveLabel(label)
		if name == "LFE1" || name == "LFE2" {
			labelSaysLFE = true
			break
		}
	}

	if haveFreq && freqSaysLFE != labelSaysLFE && p.diag != nil {
		p.diag.Warnf(diag.CodeLFELabelMismatch, "channel_frequency and speaker label disagree on LFE status")
	}

	return freqSaysLFE || labelSaysLFE
}

// resolveLabel strips an ITU BS.2051 URN prefix from label, leaving
// the bare speaker name, then applies the substitution table.
func (p *Panner) resolveLabel(label string) string {
	name := label
	if idx := strings.LastIndex(name, ":speaker:"); idx >= 0 {
		name = name[idx+len(":speaker:"):]
	}
	if sub, ok := p.substitutions[name]; ok {
		return sub
	}
	return name
}

// findBoundedMatch returns the layout index of the single closest
// channel (by Euclidean distance) whose nominal position lies within
// pos's bounded range and whose LFE-ness matches isLFE, per the
// "closest within tolerance, no tie" rule: a tie among the closest
// candidates returns ok=false so the caller falls through to the
// point-source/LFE fallback rather than guessing.
func (p *Panner) findBoundedMatch(pos metadata.BoundedPosition, isLFE bool) (int, bool) {
	type candidate struct {
		idx  int
		dist float64
	}
	var candidates []candidate

	nominal := pos.Nominal()
	for i, ch := range p.layout.Channels {
		if ch.IsLFE != isLFE {
			continue
		}
		if !withinBounds(pos, ch.Position) {
			continue
		}
		d := ch.Position.ToCartesian().Add(nominal.Scale(-1)).Norm()
		candidates = append(candidates, candidate{idx: i, dist: d})
	}
	if len(candidates) == 0 {
		return -1, false
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.dist < best.dist {
			best = c
		}
	}

	tied := 0
	for _, c := range candidates {
		if math.Abs(c.dist-best.dist) <= positionTolerance {
			tied++
		}
	}
	if tied > 1 {
		return -1, false
	}
	return best.idx, true
}

// withinBounds reports whether nominal lies within pos's bounded
// range, component-wise, widened by positionTolerance.
func withinBounds(pos metadata.BoundedPosition, nominal geom.Polar) bool {
	if pos.Cartesian {
		c := nominal.ToCartesian()
		return inRange(pos.X, c.X) && inRange(pos.Y, c.Y) && inRange(pos.Z, c.Z)
	}
	return inRange(pos.Azimuth, nominal.Azimuth) && inRange(pos.Elevation, nominal.Elevation) && inRange(pos.Distance, nominal.Distance)
}

func inRange(b metadata.Bound, v float64) bool {
	return v >= b.Min-positionTolerance && v <= b.Max+positionTolerance
}

// oneHot returns a gain vector with 1 at idx and 0 elsewhere.
func (p *Panner) oneHot(idx int) []float64 {
	gains := make([]float64, len(p.layout.Channels))
	gains[idx] = 1
	return gains
}

// edgeLockMode translates a metadata.ScreenEdgeLockSpec into the
// screen package's boolean mode.
func edgeLockMode(spec metadata.ScreenEdgeLockSpec) screen.EdgeLockMode {
	return screen.EdgeLockMode{
		Horizontal: spec.Horizontal != "",
		Vertical:   spec.Vertical != "",
	}
}
