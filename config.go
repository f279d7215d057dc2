package admrender

import (
	"github.com/llehouerou/go-admrender/internal/diag"
	"github.com/llehouerou/go-admrender/internal/geom"
	"github.com/llehouerou/go-admrender/internal/layout"
	"github.com/llehouerou/go-admrender/internal/screen"
)

func polar(azimuth, elevation, distance float64) geom.Polar {
	return geom.Polar{Azimuth: azimuth, Elevation: elevation, Distance: distance}
}

// Config holds every tunable of a Renderer. Zero-value fields are
// invalid (a Renderer built from Config{} has no layout and no sample
// rate); start from DefaultConfig and override only what you need.
type Config struct {
	SampleRate     int64
	Layout         layout.Layout
	PlaybackScreen screen.Screen

	// DecorrelationBlockSize is the inner block size the diffuse path's
	// overlap-save convolver and variable-block-size adapter operate at.
	DecorrelationBlockSize int
	// DecorrelationFilterLength is the length (samples) of each
	// channel's random-phase all-pass decorrelation filter. Must be even.
	DecorrelationFilterLength int

	// HOADesignPoints is the number of directions sampled for the HOA
	// virtual-loudspeaker decoder design.
	HOADesignPoints        int
	HOAMaxRE               bool
	HOASpherePowerNorm     bool
	DirectSpeakersSubs     map[string]string

	Diagnostics *diag.Recorder
}

// DefaultConfig returns a Config for the "0+5+0" (5.0) layout at 48 kHz,
// with a 512-sample decorrelation block/filter size and 240 HOA design
// points, logging warnings through a fresh diag.Recorder.
func DefaultConfig() Config {
	lay := layout.Layout{
		Name: "0+5+0",
		Channels: []layout.Channel{
			{Name: "M+030", Position: polar(30, 0, 1)},
			{Name: "M-030", Position: polar(-30, 0, 1)},
			{Name: "M+000", Position: polar(0, 0, 1)},
			{Name: "LFE1", Position: polar(45, -30, 1), IsLFE: true},
			{Name: "M+110", Position: polar(110, 0, 1)},
			{Name: "M-110", Position: polar(-110, 0, 1)},
		},
	}

	return Config{
		SampleRate:                48000,
		Layout:                    lay,
		PlaybackScreen:            screen.DefaultReferenceScreen,
		DecorrelationBlockSize:    512,
		DecorrelationFilterLength: 512,
		HOADesignPoints:           240,
		Diagnostics:               diag.NewRecorder(nil),
	}
}

// Merge applies overrides on top of base, keyed by option name, the way
// a renderer's configuration is normally handed in from a host
// application's own config object: unrecognised keys are not errors,
// they are recorded as warnings through rec (which may be nil to
// discard them) and otherwise ignored, per the renderer's "never fail
// on an unknown option" rule.
func Merge(base Config, overrides map[string]any, rec *diag.Recorder) Config {
	out := base
	for key, value := range overrides {
		switch key {
		case "sample_rate":
			if n, ok := asInt64(value); ok {
				out.SampleRate = n
				continue
			}
		case "playback_screen":
			if s, ok := value.(screen.Screen); ok {
				out.PlaybackScreen = s
				continue
			}
		case "decorrelation_block_size":
			if n, ok := asInt64(value); ok {
				out.DecorrelationBlockSize = int(n)
				continue
			}
		case "decorrelation_filter_length":
			if n, ok := asInt64(value); ok {
				out.DecorrelationFilterLength = int(n)
				continue
			}
		case "hoa_design_points":
			if n, ok := asInt64(value); ok {
				out.HOADesignPoints = int(n)
				continue
			}
		case "hoa_max_re":
			if b, ok := value.(bool); ok {
				out.HOAMaxRE = b
				continue
			}
		case "hoa_sphere_power_norm":
			if b, ok := value.(bool); ok {
				out.HOASpherePowerNorm = b
				continue
			}
		case "direct_speakers_substitutions":
			if m, ok := value.(map[string]string); ok {
				out.DirectSpeakersSubs = m
				continue
			}
		default:
			if rec != nil {
				rec.Warnf(diag.CodeUnknownConfigKey, "unknown option key %q", key)
			}
			continue
		}
		// A recognised key with a value of the wrong type is treated the
		// same as an unrecognised one: warn and keep the existing value.
		if rec != nil {
			rec.Warnf(diag.CodeUnknownConfigKey, "option key %q has the wrong type", key)
		}
	}
	return out
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
