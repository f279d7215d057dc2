// Package screen implements the two screen-related position handlers
// the object gain calculator and DirectSpeakers panner both need: a
// screen-scale handler that remaps an authored position from a
// reference screen onto the playback screen, and a screen-edge-lock
// handler that clips a position's azimuth (or X coordinate) onto the
// edge of the playback screen.
//
// A screen is modeled as the simple trapezoid ear.core.screen uses:
// an azimuth/elevation extent and an aspect ratio, both expressed in
// the same polar terms as the positions it scales.
package screen

import (
	"math"

	"github.com/llehouerou/go-admrender/internal/geom"
)

// Screen describes a (real or reference) viewing screen: its angular
// extent from the listening position and its aspect ratio.
type Screen struct {
	AspectRatio      float64
	CentrePosition   geom.Polar
	WidthAzimuth     float64 // half-width, degrees, symmetric about CentrePosition.Azimuth
	HeightElevation  float64 // half-height, degrees, symmetric about CentrePosition.Elevation
}

// DefaultReferenceScreen is the ADM default reference screen: centred
// at (az=0, el=0), 58.5 degrees wide, 16:9.
var DefaultReferenceScreen = Screen{
	AspectRatio:     16.0 / 9.0,
	WidthAzimuth:    58.5 / 2,
	HeightElevation: (58.5 / (16.0 / 9.0)) / 2,
}

// Scale remaps a position authored relative to ref onto the equivalent
// position on play, linearly rescaling azimuth and elevation by the
// ratio of the two screens' extents. Cartesian positions are converted
// to polar, scaled, and converted back, matching the ADM convention
// that screen scaling always operates in polar terms.
func Scale(pos geom.Cartesian, cartesian bool, ref, play Screen) geom.Cartesian {
	p := pos.ToPolar()

	azRatio := play.WidthAzimuth / ref.WidthAzimuth
	elRatio := play.HeightElevation / ref.HeightElevation

	relAz := p.Azimuth - ref.CentrePosition.Azimuth
	relEl := p.Elevation - ref.CentrePosition.Elevation

	scaled := geom.Polar{
		Azimuth:   play.CentrePosition.Azimuth + relAz*azRatio,
		Elevation: play.CentrePosition.Elevation + relEl*elRatio,
		Distance:  p.Distance,
	}

	result := scaled.ToCartesian()
	if cartesian {
		// Cartesian callers only care about the scaled position's
		// coordinates, which are identical regardless of how it was
		// derived, so no further conversion is needed here.
		return result
	}
	return result
}

// EdgeLockMode selects which axis (if any) of a position should be
// clipped to the playback screen's edge.
type EdgeLockMode struct {
	Horizontal bool
	Vertical   bool
}

// HandleAzEl clips az/el to the edge of scr when the corresponding
// EdgeLockMode flag is set, leaving the other axis (and distance)
// unchanged.
func HandleAzEl(az, el, dist float64, mode EdgeLockMode, scr Screen) (float64, float64, float64) {
	if mode.Horizontal {
		edge := scr.CentrePosition.Azimuth + math.Copysign(scr.WidthAzimuth, az-scr.CentrePosition.Azimuth)
		if math.Abs(az-scr.CentrePosition.Azimuth) > scr.WidthAzimuth {
			az = edge
		}
	}
	if mode.Vertical {
		edge := scr.CentrePosition.Elevation + math.Copysign(scr.HeightElevation, el-scr.CentrePosition.Elevation)
		if math.Abs(el-scr.CentrePosition.Elevation) > scr.HeightElevation {
			el = edge
		}
	}
	return az, el, dist
}

// HandleVector clips a Cartesian position the same way as HandleAzEl,
// by converting to polar, clipping, and converting back.
func HandleVector(pos geom.Cartesian, mode EdgeLockMode, scr Screen) geom.Cartesian {
	p := pos.ToPolar()
	az, el, dist := HandleAzEl(p.Azimuth, p.Elevation, p.Distance, mode, scr)
	return geom.Polar{Azimuth: az, Elevation: el, Distance: dist}.ToCartesian()
}
