// Package hoa implements the ambisonic decoder design: a
// virtual-loudspeaker decoder built by panning a near-uniform set of
// directions through an external point-source panner, projecting that
// through the real spherical harmonics basis, and optionally applying
// max-rE weighting and sphere-power normalization before rescaling to
// the block's requested normalization.
package hoa

import (
	"math"

	"github.com/llehouerou/go-admrender/internal/diag"
	"github.com/llehouerou/go-admrender/internal/geom"
	"github.com/llehouerou/go-admrender/internal/layout"
	"github.com/llehouerou/go-admrender/internal/metadata"
	"github.com/llehouerou/go-admrender/internal/psp"
	"github.com/llehouerou/go-admrender/internal/rendererr"
)

// Normalization names a decoder can be asked to rescale to.
const (
	NormalizationN3D  = "N3D"
	NormalizationSN3D = "SN3D"
	NormalizationFuMa = "FuMa"
)

// Decoder implements metadata's HOA decoder interface over a fixed
// loudspeaker layout and point-source panner.
type Decoder struct {
	layout     layout.Layout
	psp        psp.Panner
	pspIndices []int
	points     []geom.Cartesian
	maxRE      bool
	sphereNorm bool
	diagnostic *diag.Recorder
}

// Option configures optional decoder design steps.
type Option func(*Decoder)

// WithMaxRE enables max-rE per-order weighting of the decoder.
func WithMaxRE() Option { return func(d *Decoder) { d.maxRE = true } }

// WithSpherePowerNormalization enables rescaling the decoder so its
// sphere-averaged output power is 1.
func WithSpherePowerNormalization() Option { return func(d *Decoder) { d.sphereNorm = true } }

// WithDiagnostics records non-fatal HOA block warnings (screenRef
// metadata present on an HOA item, ignored) to rec.
func WithDiagnostics(rec *diag.Recorder) Option { return func(d *Decoder) { d.diagnostic = rec } }

// New builds a Decoder over lay using pspPanner (whose outputs must be
// ordered the same as lay.NonLFEIndices()) for the virtual-loudspeaker
// step, sampling numPoints near-uniform directions as the t-design
// approximation.
func New(lay layout.Layout, pspPanner psp.Panner, numPoints int, opts ...Option) *Decoder {
	d := &Decoder{
		layout:     lay,
		psp:        pspPanner,
		pspIndices: lay.NonLFEIndices(),
		points:     fibonacciSphere(numPoints),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode implements metadata.HOADecoder, returning a dense [L x K]
// matrix (L = number of non-LFE output channels, K = len(block.Orders)).
func (d *Decoder) Decode(block metadata.HOABlock) ([][]float64, error) {
	if block.ScreenRef && d.diagnostic != nil {
		d.diagnostic.Warnf(diag.CodeScreenRefOnHOA, "screenRef on HOA block ignored")
	}

	k := len(block.Orders)
	l := len(d.pspIndices)
	n := len(d.points)

	maxOrder := 0
	for _, o := range block.Orders {
		if o > maxOrder {
			maxOrder = o
		}
	}
	if block.Normalization == NormalizationFuMa && maxOrder > 3 {
		return nil, &rendererr.UnsupportedConfigError{What: "FuMa normalization is only defined up to 3rd order"}
	}
	// A t-design needs at least (order+1)^2 points to resolve every
	// spherical harmonic up to maxOrder without aliasing; fewer than
	// that and the requested order's design points aren't available.
	if n < (maxOrder+1)*(maxOrder+1) {
		return nil, &rendererr.UnsupportedConfigError{What: "not enough HOA design points for the requested order"}
	}

	// Steps 1/2: virtual-loudspeaker gains at every design point.
	gVirt := make([][]float64, l)
	for i := range gVirt {
		gVirt[i] = make([]float64, n)
	}
	for p, dir := range d.points {
		gains := d.psp.Handle(dir)
		for i := range gVirt {
			gVirt[i][p] = gains[i]
		}
	}

	// Step 3: spherical harmonics at the design points (N3D), then
	// D = G_virt . Y_virt^T / n.
	yVirt := make([][]float64, k)
	for c := 0; c < k; c++ {
		yVirt[c] = make([]float64, n)
		for p, dir := range d.points {
			pol := dir.ToPolar()
			yVirt[c][p] = realSH(block.Orders[c], block.Degrees[c], pol.Azimuth, pol.Elevation, NormalizationN3D)
		}
	}

	decoder := make([][]float64, l)
	for i := 0; i < l; i++ {
		decoder[i] = make([]float64, k)
		for c := 0; c < k; c++ {
			sum := 0.0
			for p := 0; p < n; p++ {
				sum += gVirt[i][p] * yVirt[c][p]
			}
			decoder[i][c] = sum / float64(n)
		}
	}

	// Step 4: optional max-rE weighting.
	if d.maxRE {
		rE := math.Cos(137.9 * math.Pi / 180 / (float64(maxOrder) + 1.51))
		for c := 0; c < k; c++ {
			w := legendre(block.Orders[c], rE)
			for i := 0; i < l; i++ {
				decoder[i][c] *= w
			}
		}
	}

	// Step 5: optional sphere-power normalization.
	if d.sphereNorm {
		sumSq := 0.0
		for i := range decoder {
			for _, v := range decoder[i] {
				sumSq += v * v
			}
		}
		if sumSq > 0 {
			// With N3D harmonics the sphere-averaged output power is the
			// sum of the squared decoder entries.
			scale := math.Sqrt(1 / sumSq)
			for i := range decoder {
				for c := range decoder[i] {
					decoder[i][c] *= scale
				}
			}
		}
	}

	// Step 6: rescale N3D -> the block's requested normalization.
	for c := 0; c < k; c++ {
		ratio := normFactor(block.Orders[c], block.Degrees[c], NormalizationN3D) / normFactor(block.Orders[c], block.Degrees[c], block.Normalization)
		for i := 0; i < l; i++ {
			decoder[i][c] *= ratio
		}
	}

	return decoder, nil
}

// realSH evaluates the real spherical harmonic of order n, degree m
// (|m| <= n) at azimuth/elevation in degrees, normalized per norm.
func realSH(n, m int, azimuthDeg, elevationDeg float64, norm string) float64 {
	az := azimuthDeg * math.Pi / 180
	el := elevationDeg * math.Pi / 180
	x := math.Sin(el) // the renderer's elevation is measured from the horizon, so sin(el) plays the role of cos(polar angle)

	am := m
	if am < 0 {
		am = -am
	}
	p := associatedLegendre(n, am, x)

	var trig float64
	if m >= 0 {
		trig = math.Cos(float64(m) * az)
	} else {
		trig = math.Sin(float64(am) * az)
	}

	return normFactor(n, m, norm) * p * trig
}

// normFactor returns the normalization coefficient for order n, degree
// m under norm, expressed relative to the unnormalized associated
// Legendre polynomial: N3D is sqrt(2n+1) times the semi-normalized
// factor, SN3D is the semi-normalized factor alone, and FuMa matches
// SN3D except for the n=0 (W) channel, which carries the classic
// B-format 1/sqrt(2) scaling.
func normFactor(n, m int, norm string) float64 {
	am := m
	if am < 0 {
		am = -am
	}
	delta := 0.0
	if am == 0 {
		delta = 1
	}
	semi := math.Sqrt((2 - delta) * factorial(n-am) / factorial(n+am))

	switch norm {
	case NormalizationSN3D:
		return semi
	case NormalizationFuMa:
		if n == 0 {
			return semi / math.Sqrt2
		}
		return semi
	default: // NormalizationN3D
		return math.Sqrt(float64(2*n+1)) * semi
	}
}

// factorial returns n! for n >= 0.
func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}

// associatedLegendre evaluates P_n^m(x) (m >= 0) via the standard
// three-term recurrence, starting from the closed form for P_m^m.
func associatedLegendre(n, m int, x float64) float64 {
	pmm := 1.0
	if m > 0 {
		somx2 := math.Sqrt((1 - x) * (1 + x))
		fact := 1.0
		for i := 1; i <= m; i++ {
			pmm *= -fact * somx2
			fact += 2
		}
	}
	if n == m {
		return pmm
	}

	pmmp1 := x * float64(2*m+1) * pmm
	if n == m+1 {
		return pmmp1
	}

	pnm := 0.0
	for l := m + 2; l <= n; l++ {
		pnm = (x*float64(2*l-1)*pmmp1 - float64(l+m-1)*pmm) / float64(l-m)
		pmm, pmmp1 = pmmp1, pnm
	}
	return pnm
}

// legendre evaluates the (unassociated) Legendre polynomial P_n(x),
// used for max-rE per-order weighting.
func legendre(n int, x float64) float64 {
	return associatedLegendre(n, 0, x)
}

// fibonacciSphere returns n near-uniformly distributed unit directions
// on the sphere via the Fibonacci lattice construction, used as a
// practical substitute for a precomputed algebraic spherical t-design.
func fibonacciSphere(n int) []geom.Cartesian {
	if n < 2 {
		n = 2
	}
	points := make([]geom.Cartesian, n)
	goldenAngle := math.Pi * (3 - math.Sqrt(5))
	for i := 0; i < n; i++ {
		z := 1 - 2*float64(i)/float64(n-1)
		r := math.Sqrt(math.Max(0, 1-z*z))
		theta := goldenAngle * float64(i)
		points[i] = geom.Cartesian{X: r * math.Cos(theta), Y: r * math.Sin(theta), Z: z}
	}
	return points
}
