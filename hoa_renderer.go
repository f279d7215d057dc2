package admrender

import (
	"github.com/llehouerou/go-admrender/internal/gain"
	"github.com/llehouerou/go-admrender/internal/hoa"
	"github.com/llehouerou/go-admrender/internal/metadata"
	"github.com/llehouerou/go-admrender/internal/trackspec"
)

// hoaRenderer runs the single HOA item's path: a multi-track processor
// stacks the item's channels into (K, N), and the metadata interpreter's
// FixedMatrix blocks multiply by the decoder matrix into the L non-LFE
// output channels.
type hoaRenderer struct {
	name      string
	processor *trackspec.MultiTrackProcessor
	channel   *gain.BlockProcessingChannel
	numTracks int
	numOut    int
}

func newHOARenderer(item HOAItem, decoder *hoa.Decoder, sampleRate int64, numOut int) *hoaRenderer {
	outputChannels := make([]int, numOut)
	for i := range outputChannels {
		outputChannels[i] = i
	}

	interp := metadata.NewHOAInterpreter(item.Name, item.Source, decoder, outputChannels, sampleRate)
	return &hoaRenderer{
		name:      item.Name,
		processor: trackspec.NewMultiTrackProcessor(item.TrackSpecs, sampleRate),
		channel:   gain.NewBlockProcessingChannel(interp),
		numTracks: len(item.TrackSpecs),
		numOut:    numOut,
	}
}

func (r *hoaRenderer) render(startSample int64, tracks [][]float64) ([][]float64, error) {
	n := len(tracks[0])

	stacked := make([][]float64, r.numTracks)
	for i := range stacked {
		stacked[i] = make([]float64, n)
	}
	r.processor.Process(tracks, stacked)

	out := make([][]float64, r.numOut)
	for i := range out {
		out[i] = make([]float64, n)
	}

	if err := r.channel.Process(r.name, startSample, stacked, out); err != nil {
		return nil, err
	}
	return out, nil
}
