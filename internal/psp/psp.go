// Package psp implements the point-source panner contract: a pure,
// deterministic function from a Cartesian direction to one gain per
// loudspeaker, with the gains summing to unit power
// (sum(gains^2) == 1). The object gain calculator, the DirectSpeakers
// panner's fallback path, and the HOA decoder's virtual-loudspeaker
// step all drive a panner through this interface rather than any one
// concrete geometry.
package psp

import (
	"math"

	"github.com/llehouerou/go-admrender/internal/geom"
)

// Speaker is one loudspeaker's nominal direction, as seen by the panner.
type Speaker struct {
	Name     string
	Position geom.Cartesian // need not be unit length; only direction matters
}

// Panner maps a Cartesian direction to per-loudspeaker gains.
type Panner interface {
	Handle(pos geom.Cartesian) []float64
	NumOutputs() int
}

// ProjectionPanner is a simple, real point-source panner: each
// speaker's gain is the positive part of the dot product between the
// (unit) target direction and the speaker's (unit) nominal direction,
// rescaled so the gain vector has unit power. Speakers behind the
// target direction contribute nothing. When no speaker has a positive
// projection (the target falls entirely outside the array's coverage,
// e.g. a single-height ring panning to the opposite pole), the single
// nearest speaker by angle is used one-hot, matching the panner
// contract's requirement of always returning unit-power gains.
type ProjectionPanner struct {
	speakers []Speaker
	dirs     []geom.Cartesian // precomputed unit directions
}

// New builds a ProjectionPanner over the given speakers.
func New(speakers []Speaker) *ProjectionPanner {
	p := &ProjectionPanner{speakers: speakers, dirs: make([]geom.Cartesian, len(speakers))}
	for i, s := range speakers {
		p.dirs[i] = s.Position.Normalized()
	}
	return p
}

// NumOutputs returns the number of loudspeakers this panner targets.
func (p *ProjectionPanner) NumOutputs() int { return len(p.speakers) }

// Handle returns the gain for each speaker, for the direction of pos
// (its magnitude is ignored).
func (p *ProjectionPanner) Handle(pos geom.Cartesian) []float64 {
	dir := pos.Normalized()
	gains := make([]float64, len(p.dirs))

	sumSq := 0.0
	for i, d := range p.dirs {
		g := dir.Dot(d)
		if g < 0 {
			g = 0
		}
		gains[i] = g
		sumSq += g * g
	}

	if sumSq == 0 {
		best, bestDot := 0, -2.0
		for i, d := range p.dirs {
			if dot := dir.Dot(d); dot > bestDot {
				bestDot, best = dot, i
			}
		}
		for i := range gains {
			gains[i] = 0
		}
		gains[best] = 1
		return gains
	}

	norm := math.Sqrt(sumSq)
	for i := range gains {
		gains[i] /= norm
	}
	return gains
}
