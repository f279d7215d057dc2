// Package objectgain implements the Object gain calculator: the
// pipeline that turns one Object block's position, extent and
// diffuseness into a direct/diffuse gain vector over a panner's
// loudspeakers, per the rule coordinate conversion -> screen scaling ->
// divergence -> extent panning -> gain split.
package objectgain

import (
	"math"

	"github.com/llehouerou/go-admrender/internal/geom"
	"github.com/llehouerou/go-admrender/internal/metadata"
	"github.com/llehouerou/go-admrender/internal/psp"
	"github.com/llehouerou/go-admrender/internal/screen"
)

// Calculator implements metadata.ObjectGainCalculator over a
// point-source panner targeting a fixed loudspeaker layout.
type Calculator struct {
	panner         psp.Panner
	playbackScreen screen.Screen
}

// New builds a Calculator panning onto panner's loudspeakers, scaling
// screen-referenced positions onto playbackScreen.
func New(panner psp.Panner, playbackScreen screen.Screen) *Calculator {
	return &Calculator{panner: panner, playbackScreen: playbackScreen}
}

// CalcGains implements metadata.ObjectGainCalculator.
func (c *Calculator) CalcGains(format metadata.ObjectBlockFormat, extra metadata.ObjectExtraData) ([]float64, error) {
	pos := format.Position.ToCartesian()

	if format.ScreenRef {
		ref := extra.ReferenceScreen
		if ref == (screen.Screen{}) {
			ref = screen.DefaultReferenceScreen
		}
		pos = screen.Scale(pos, format.Cartesian, ref, c.playbackScreen)
	}

	positions, weights := divergence(pos, format.Divergence)

	l := c.panner.NumOutputs()
	gains := make([]float64, l)
	for i, p := range positions {
		pg := extentPan(c.panner, p, format.Width, format.Height, format.Depth)
		for k := range gains {
			gains[k] += pg[k] * weights[i]
		}
	}

	diffuse := format.Diffuse
	direct := math.Sqrt(1-diffuse) * format.Gain
	diffuseCoeff := math.Sqrt(diffuse) * format.Gain

	out := make([]float64, 2*l)
	for i, g := range gains {
		d := g * direct
		if math.IsNaN(d) {
			d = 0
		}
		out[i] = d

		df := g * diffuseCoeff
		if math.IsNaN(df) {
			df = 0
		}
		out[l+i] = df
	}
	return out, nil
}

// divergence splits pos into up to three virtual positions (centre,
// left, right) with associated weights per objectDivergence{value,
// azimuthRange}: azimuth offset is azimuthRange*value to either side,
// weights are (1-value) centre and value/2 each side. value == 0
// collapses to the single input position.
func divergence(pos geom.Cartesian, div metadata.Divergence) ([]geom.Cartesian, []float64) {
	if div.Value <= 0 {
		return []geom.Cartesian{pos}, []float64{1}
	}

	p := pos.ToPolar()
	offset := div.AzimuthRange * div.Value

	left := geom.Polar{Azimuth: p.Azimuth + offset, Elevation: p.Elevation, Distance: p.Distance}.ToCartesian()
	right := geom.Polar{Azimuth: p.Azimuth - offset, Elevation: p.Elevation, Distance: p.Distance}.ToCartesian()

	centreWeight := 1 - div.Value
	sideWeight := div.Value / 2
	return []geom.Cartesian{pos, left, right}, []float64{centreWeight, sideWeight, sideWeight}
}

// extentPan pans pos through panner, widening a point source into an
// allocentric cube of basis positions along azimuth/elevation/distance
// when any of width/height/depth is non-zero, and averaging (then
// renormalizing to unit power) the per-basis-position gains. A point
// source (width=height=depth=0) pans directly with no averaging.
func extentPan(panner psp.Panner, pos geom.Cartesian, width, height, depth float64) []float64 {
	if width == 0 && height == 0 && depth == 0 {
		return panner.Handle(pos)
	}

	p := pos.ToPolar()
	azOffsets := extentOffsets(width / 2)
	elOffsets := extentOffsets(height / 2)
	distOffsets := extentOffsets(depth / 2)

	sum := make([]float64, panner.NumOutputs())
	for _, daz := range azOffsets {
		for _, del := range elOffsets {
			for _, dd := range distOffsets {
				dist := p.Distance + dd
				if dist <= 0 {
					dist = p.Distance
				}
				basis := geom.Polar{Azimuth: p.Azimuth + daz, Elevation: p.Elevation + del, Distance: dist}.ToCartesian()
				g := panner.Handle(basis)
				for i, v := range g {
					sum[i] += v
				}
			}
		}
	}

	sumSq := 0.0
	for _, v := range sum {
		sumSq += v * v
	}
	if sumSq == 0 {
		return panner.Handle(pos)
	}
	norm := math.Sqrt(sumSq)
	for i := range sum {
		sum[i] /= norm
	}
	return sum
}

// extentOffsets returns the basis offsets for one axis's half-extent:
// just {0} when the axis has no extent, else {-half, 0, half}.
func extentOffsets(half float64) []float64 {
	if half == 0 {
		return []float64{0}
	}
	return []float64{-half, 0, half}
}
