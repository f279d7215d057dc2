package admrender

import (
	"testing"

	"github.com/llehouerou/go-admrender/internal/diag"
	"github.com/llehouerou/go-admrender/internal/geom"
	"github.com/llehouerou/go-admrender/internal/layout"
	"github.com/llehouerou/go-admrender/internal/metadata"
	"github.com/llehouerou/go-admrender/internal/screen"
	"github.com/llehouerou/go-admrender/internal/trackspec"
	"github.com/stretchr/testify/require"
)

// stereoLayout's two non-LFE channels are 90 degrees apart, same as
// objectgain's stereoPanner helper, so a source aimed exactly at one
// channel projects to zero on the other and every expected gain is
// hand-verifiable.
func stereoLayout() layout.Layout {
	return layout.Layout{
		Name: "test-stereo",
		Channels: []layout.Channel{
			{Name: "Front", Position: geom.Polar{Azimuth: 0, Elevation: 0, Distance: 1}},
			{Name: "Left", Position: geom.Polar{Azimuth: 90, Elevation: 0, Distance: 1}},
		},
	}
}

func testConfig(decorrelationSize int) Config {
	return Config{
		SampleRate:                48000,
		Layout:                    stereoLayout(),
		PlaybackScreen:            screen.DefaultReferenceScreen,
		DecorrelationBlockSize:    decorrelationSize,
		DecorrelationFilterLength: decorrelationSize,
		HOADesignPoints:           4,
		Diagnostics:               diag.NewRecorder(nil),
	}
}

// objectBlockSource replays a fixed slice of ObjectBlocks, in order,
// one per Next call.
type objectBlockSource struct {
	blocks []metadata.ObjectBlock
	i      int
}

func (s *objectBlockSource) Next() (metadata.ObjectBlock, bool, error) {
	if s.i >= len(s.blocks) {
		return metadata.ObjectBlock{}, false, nil
	}
	b := s.blocks[s.i]
	s.i++
	return b, true, nil
}

// directSpeakersBlockSource replays a fixed slice of DirectSpeakersBlocks.
type directSpeakersBlockSource struct {
	blocks []metadata.DirectSpeakersBlock
	i      int
}

func (s *directSpeakersBlockSource) Next() (metadata.DirectSpeakersBlock, bool, error) {
	if s.i >= len(s.blocks) {
		return metadata.DirectSpeakersBlock{}, false, nil
	}
	b := s.blocks[s.i]
	s.i++
	return b, true, nil
}

func ones(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}

// TestRendererObjectFixedGain exercises an Object item panned straight
// at "Front" with a constant gain and no diffuseness (spec.md S1): the
// delivered output must be the constant panned/scaled input on Front
// and zero on Left, with no priming junk ever surfacing from the
// aligner's [0, objectDelay) region.
func TestRendererObjectFixedGain(t *testing.T) {
	cfg := testConfig(8) // objectDelay = 8 + (8-1)/2 = 11
	r, err := New(cfg)
	require.NoError(t, err)

	const gain = 0.1
	src := &objectBlockSource{blocks: []metadata.ObjectBlock{
		{Format: metadata.ObjectBlockFormat{
			Position: metadata.Position{Polar: geom.Polar{Azimuth: 0, Elevation: 0, Distance: 1}},
			Gain:     gain,
		}},
	}}
	item := ObjectItem{Name: "obj", TrackSpec: trackspec.Direct(0), Source: src}
	require.NoError(t, r.SetRenderingItems([]Item{item}))
	require.Equal(t, int64(11), r.objectDelay)

	front := cfg.Layout.IndexOf("Front")
	left := cfg.Layout.IndexOf("Left")

	const n1 = 30
	out, err := r.Render([][]float64{ones(n1)})
	require.NoError(t, err)
	require.Len(t, out[front], n1-11, "priming must discard exactly objectDelay samples, never fewer or more")
	for i, v := range out[front] {
		require.InDelta(t, gain, v, 1e-9, "front sample %d", i)
	}
	for i, v := range out[left] {
		require.InDelta(t, 0, v, 1e-9, "left sample %d", i)
	}

	const n2 = 5
	out, err = r.Render([][]float64{ones(n2)})
	require.NoError(t, err)
	require.Len(t, out[front], n2, "once primed, output length must match input length exactly")
	for i, v := range out[front] {
		require.InDelta(t, gain, v, 1e-9, "front sample %d", i)
	}

	tail, err := r.GetTail()
	require.NoError(t, err)
	require.Len(t, tail[front], 11)
	for i, v := range tail[front] {
		require.InDelta(t, gain, v, 1e-9, "tail sample %d", i)
	}
}

// TestRendererDirectSpeakersLabelMatch exercises a DirectSpeakers item
// whose label names a layout channel directly, with no Object item
// present (spec.md S4): the named channel must carry the input
// one-hot, every other channel silent, from the very first sample.
func TestRendererDirectSpeakersLabelMatch(t *testing.T) {
	cfg := testConfig(8)
	r, err := New(cfg)
	require.NoError(t, err)

	src := &directSpeakersBlockSource{blocks: []metadata.DirectSpeakersBlock{
		{Format: metadata.DirectSpeakersBlockFormat{SpeakerLabels: []string{"Front"}}},
	}}
	item := DirectSpeakersItem{Name: "ds", TrackSpec: trackspec.Direct(0), Source: src}
	require.NoError(t, r.SetRenderingItems([]Item{item}))
	require.Equal(t, int64(0), r.objectDelay, "no Object item means no priming latency")

	front := cfg.Layout.IndexOf("Front")
	left := cfg.Layout.IndexOf("Left")

	const n = 16
	out, err := r.Render([][]float64{ones(n)})
	require.NoError(t, err)
	require.Len(t, out[front], n, "with objectDelay == 0 every sample is deliverable immediately")
	for i, v := range out[front] {
		require.InDelta(t, 1, v, 1e-9, "front sample %d", i)
	}
	for i, v := range out[left] {
		require.InDelta(t, 0, v, 1e-9, "left sample %d", i)
	}
}

// TestRendererObjectPlusDirectSpeakers combines an Object item (which
// forces objectDelay > 0) with a DirectSpeakers item whose metadata
// block starts at rtime 0, the exact scenario that used to trip
// MetadataUnderrunError: ds.render was being asked to time its
// metadata lookup against the aligner-shifted start+objectDelay rather
// than the stream's true absolute sample position, so a block at
// firstSample 0 looked objectDelay samples late on the very first
// call. It must no longer do so, and the two paths' outputs must still
// land on the same delivered sample index once both clear the priming
// prefix.
func TestRendererObjectPlusDirectSpeakers(t *testing.T) {
	cfg := testConfig(8) // objectDelay = 11
	r, err := New(cfg)
	require.NoError(t, err)

	const objGain = 0.1
	objSrc := &objectBlockSource{blocks: []metadata.ObjectBlock{
		{Format: metadata.ObjectBlockFormat{
			Position: metadata.Position{Polar: geom.Polar{Azimuth: 0, Elevation: 0, Distance: 1}},
			Gain:     objGain,
		}},
	}}
	objItem := ObjectItem{Name: "obj", TrackSpec: trackspec.Direct(0), Source: objSrc}

	dsSrc := &directSpeakersBlockSource{blocks: []metadata.DirectSpeakersBlock{
		// RTime/Duration both nil resolves to [0, +Inf): a block whose
		// firstSample is exactly 0, the case review comment 1 flagged.
		{Format: metadata.DirectSpeakersBlockFormat{SpeakerLabels: []string{"Front"}}},
	}}
	dsItem := DirectSpeakersItem{Name: "ds", TrackSpec: trackspec.Direct(1), Source: dsSrc}

	require.NoError(t, r.SetRenderingItems([]Item{objItem, dsItem}))
	require.Equal(t, int64(11), r.objectDelay)

	front := cfg.Layout.IndexOf("Front")
	left := cfg.Layout.IndexOf("Left")

	const n1 = 30
	out, err := r.Render([][]float64{ones(n1), ones(n1)})
	require.NoError(t, err, "a DirectSpeakers block at rtime 0 must not raise MetadataUnderrunError just because an Object item has nonzero objectDelay")
	require.Len(t, out[front], n1-11)
	for i, v := range out[front] {
		// Object's direct contribution (objGain) plus DirectSpeakers'
		// one-hot contribution (1) land on the same delivered sample.
		require.InDelta(t, objGain+1, v, 1e-9, "front sample %d", i)
	}
	for i, v := range out[left] {
		require.InDelta(t, 0, v, 1e-9, "left sample %d", i)
	}

	const n2 = 5
	out, err = r.Render([][]float64{ones(n2), ones(n2)})
	require.NoError(t, err)
	require.Len(t, out[front], n2)
	for i, v := range out[front] {
		require.InDelta(t, objGain+1, v, 1e-9, "front sample %d", i)
	}
}
