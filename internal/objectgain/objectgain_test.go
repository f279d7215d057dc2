package objectgain

import (
	"math"
	"testing"

	"github.com/llehouerou/go-admrender/internal/geom"
	"github.com/llehouerou/go-admrender/internal/metadata"
	"github.com/llehouerou/go-admrender/internal/psp"
	"github.com/llehouerou/go-admrender/internal/screen"
	"github.com/stretchr/testify/require"
)

// stereoPanner's two speakers are 90 degrees apart so that a source
// exactly on one speaker projects to zero on the other, making the
// pan-gain math easy to check by hand in tests.
func stereoPanner() *psp.ProjectionPanner {
	return psp.New([]psp.Speaker{
		{Name: "Front", Position: geom.Polar{Azimuth: 0, Elevation: 0, Distance: 1}.ToCartesian()},
		{Name: "Left", Position: geom.Polar{Azimuth: 90, Elevation: 0, Distance: 1}.ToCartesian()},
	})
}

func TestCalcGainsDirectDiffuseSplitPreservesSquaredGain(t *testing.T) {
	calc := New(stereoPanner(), screen.DefaultReferenceScreen)
	format := metadata.ObjectBlockFormat{
		Position: metadata.Position{Polar: geom.Polar{Azimuth: 30, Elevation: 0, Distance: 1}},
		Gain:     0.5,
		Diffuse:  0.25,
	}

	gains, err := calc.CalcGains(format, metadata.ObjectExtraData{})
	if err != nil {
		t.Fatalf("CalcGains: %v", err)
	}

	l := len(gains) / 2
	for i := 0; i < l; i++ {
		direct := gains[i]
		diffuse := gains[l+i]
		// The pre-split per-channel gain is the point-source pan gain
		// times format.Gain; direct^2+diffuse^2 must equal its square.
		panGain, err := pointSourcePanGain(calc, format)
		if err != nil {
			t.Fatalf("pointSourcePanGain: %v", err)
		}
		want := panGain[i] * panGain[i] * format.Gain * format.Gain
		got := direct*direct + diffuse*diffuse
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("channel %d: direct^2+diffuse^2 = %v, want %v", i, got, want)
		}
	}
}

// pointSourcePanGain recomputes the pre-gain, pre-split pan vector for
// a zero-diffuse, unity-gain version of format, for use as an oracle.
func pointSourcePanGain(calc *Calculator, format metadata.ObjectBlockFormat) ([]float64, error) {
	f := format
	f.Gain = 1
	f.Diffuse = 0
	g, err := calc.CalcGains(f, metadata.ObjectExtraData{})
	if err != nil {
		return nil, err
	}
	return g[:len(g)/2], nil
}

func TestCalcGainsFullyDiffuseHasNoDirect(t *testing.T) {
	calc := New(stereoPanner(), screen.DefaultReferenceScreen)
	format := metadata.ObjectBlockFormat{
		Position: metadata.Position{Polar: geom.Polar{Azimuth: 30, Elevation: 0, Distance: 1}},
		Gain:     1,
		Diffuse:  1,
	}

	gains, err := calc.CalcGains(format, metadata.ObjectExtraData{})
	if err != nil {
		t.Fatalf("CalcGains: %v", err)
	}
	l := len(gains) / 2
	for i := 0; i < l; i++ {
		if gains[i] != 0 {
			t.Errorf("direct[%d] = %v, want 0 for diffuse=1", i, gains[i])
		}
	}
}

func TestCalcGainsOnAxisHitsSingleSpeaker(t *testing.T) {
	calc := New(stereoPanner(), screen.DefaultReferenceScreen)
	format := metadata.ObjectBlockFormat{
		Position: metadata.Position{Polar: geom.Polar{Azimuth: 0, Elevation: 0, Distance: 1}},
		Gain:     1,
	}

	gains, err := calc.CalcGains(format, metadata.ObjectExtraData{})
	if err != nil {
		t.Fatalf("CalcGains: %v", err)
	}
	require.InDelta(t, 1, gains[0], 1e-9, "direct[Front] should be ~1 (source exactly at Front)")
	require.InDelta(t, 0, gains[1], 1e-9, "direct[Left] should be ~0 (Left is 90 degrees off-axis)")
}

func TestCalcGainsNoNaN(t *testing.T) {
	calc := New(stereoPanner(), screen.DefaultReferenceScreen)
	format := metadata.ObjectBlockFormat{
		Position: metadata.Position{Polar: geom.Polar{Azimuth: 0, Elevation: 90, Distance: 1}},
		Gain:     1,
		Diffuse:  0.5,
	}

	gains, err := calc.CalcGains(format, metadata.ObjectExtraData{})
	if err != nil {
		t.Fatalf("CalcGains: %v", err)
	}
	for i, g := range gains {
		if math.IsNaN(g) {
			t.Errorf("gains[%d] is NaN", i)
		}
	}
}

func TestDivergenceCollapsesWhenZero(t *testing.T) {
	pos := geom.Polar{Azimuth: 10, Elevation: 0, Distance: 1}.ToCartesian()
	positions, weights := divergence(pos, metadata.Divergence{Value: 0})
	if len(positions) != 1 || weights[0] != 1 {
		t.Errorf("divergence(value=0) = %v, %v, want single unit-weight position", positions, weights)
	}
}

func TestDivergenceSplitsIntoThree(t *testing.T) {
	pos := geom.Polar{Azimuth: 0, Elevation: 0, Distance: 1}.ToCartesian()
	positions, weights := divergence(pos, metadata.Divergence{Value: 0.5, AzimuthRange: 45})
	if len(positions) != 3 {
		t.Fatalf("len(positions) = %d, want 3", len(positions))
	}
	sum := weights[0] + weights[1] + weights[2]
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("weights sum to %v, want 1", sum)
	}
}

func TestExtentPanFallsBackToPointSourceWhenNoExtent(t *testing.T) {
	panner := stereoPanner()
	pos := geom.Polar{Azimuth: 30, Elevation: 0, Distance: 1}.ToCartesian()
	g := extentPan(panner, pos, 0, 0, 0)
	direct := panner.Handle(pos)
	for i := range g {
		if g[i] != direct[i] {
			t.Errorf("extentPan without extent diverged from Handle at %d: %v != %v", i, g[i], direct[i])
		}
	}
}

func TestExtentPanWithWidthIsUnitPower(t *testing.T) {
	panner := stereoPanner()
	pos := geom.Polar{Azimuth: 30, Elevation: 0, Distance: 1}.ToCartesian()
	g := extentPan(panner, pos, 20, 0, 0)

	sumSq := 0.0
	for _, v := range g {
		sumSq += v * v
	}
	if math.Abs(sumSq-1) > 1e-9 {
		t.Errorf("sum of squares = %v, want 1", sumSq)
	}
}
