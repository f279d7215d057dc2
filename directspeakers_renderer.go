package admrender

import (
	"github.com/llehouerou/go-admrender/internal/directspeakers"
	"github.com/llehouerou/go-admrender/internal/gain"
	"github.com/llehouerou/go-admrender/internal/metadata"
	"github.com/llehouerou/go-admrender/internal/trackspec"
)

// directSpeakersRenderer runs one DirectSpeakers item's single path: a
// track processor feeds a block-processing channel that writes FixedGains
// directly into the full output layout (LFE channel included).
type directSpeakersRenderer struct {
	name      string
	processor *trackspec.Processor
	channel   *gain.BlockProcessingChannel
	numOut    int // full layout channel count
}

func newDirectSpeakersRenderer(item DirectSpeakersItem, panner *directspeakers.Panner, sampleRate int64, numOut int) *directSpeakersRenderer {
	interp := metadata.NewDirectSpeakersInterpreter(item.Name, item.Source, panner, item.Extra, sampleRate)
	return &directSpeakersRenderer{
		name:      item.Name,
		processor: trackspec.NewProcessor(item.TrackSpec, sampleRate),
		channel:   gain.NewBlockProcessingChannel(interp),
		numOut:    numOut,
	}
}

func (r *directSpeakersRenderer) render(startSample int64, tracks [][]float64) ([][]float64, error) {
	n := len(tracks[0])

	track := make([]float64, n)
	r.processor.Process(tracks, track)

	out := make([][]float64, r.numOut)
	for i := range out {
		out[i] = make([]float64, n)
	}

	if err := r.channel.Process(r.name, startSample, [][]float64{track}, out); err != nil {
		return nil, err
	}
	return out, nil
}
