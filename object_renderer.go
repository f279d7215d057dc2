package admrender

import (
	"github.com/llehouerou/go-admrender/internal/dsp"
	"github.com/llehouerou/go-admrender/internal/gain"
	"github.com/llehouerou/go-admrender/internal/metadata"
	"github.com/llehouerou/go-admrender/internal/objectgain"
	"github.com/llehouerou/go-admrender/internal/trackspec"
)

// objectRenderer runs one Object item's direct/diffuse dual path: a
// track processor feeds a block-processing channel that writes gains
// into a (2L, N) scratch (direct in the first L rows, diffuse in the
// next L), the diffuse rows are decorrelated through a per-channel
// all-pass filter bank, the direct rows are delayed to match the
// filter bank's latency, and the two are summed.
type objectRenderer struct {
	name      string
	processor *trackspec.Processor
	channel   *gain.BlockProcessingChannel
	numOut    int // L: non-LFE output channels

	directDelay   *dsp.DelayLine
	decorrelators []*dsp.VariableBlockSizeAdapter
	delaySamples  int64 // B + (filterLength-1)/2, reported to the top-level renderer
}

func newObjectRenderer(item ObjectItem, calc *objectgain.Calculator, sampleRate int64, numOut int, blockSize, filterLength int, seeds []uint32) (*objectRenderer, error) {
	interp := metadata.NewObjectInterpreter(item.Name, item.Source, calc, item.Extra, sampleRate)

	decorrelators := make([]*dsp.VariableBlockSizeAdapter, numOut)
	for i := 0; i < numOut; i++ {
		filter, err := designDecorrelationFilter(filterLength, seeds[i])
		if err != nil {
			return nil, err
		}
		conv, err := dsp.NewOverlapSaveConvolver(filter, blockSize)
		if err != nil {
			return nil, err
		}
		decorrelators[i] = dsp.NewVariableBlockSizeAdapter(conv, blockSize)
	}

	delaySamples := int64(blockSize) + int64((filterLength-1)/2)

	return &objectRenderer{
		name:          item.Name,
		processor:     trackspec.NewProcessor(item.TrackSpec, sampleRate),
		channel:       gain.NewBlockProcessingChannel(interp),
		numOut:        numOut,
		directDelay:   dsp.NewDelayLine(numOut, int(delaySamples)),
		decorrelators: decorrelators,
		delaySamples:  delaySamples,
	}, nil
}

// delay reports this renderer's fixed output latency in samples.
func (r *objectRenderer) delay() int64 { return r.delaySamples }

// render processes one block of raw multi-track input, starting at
// startSample, returning L channels of N samples: the sum of the
// delay-aligned direct path and the decorrelated diffuse path.
func (r *objectRenderer) render(startSample int64, tracks [][]float64) ([][]float64, error) {
	n := len(tracks[0])

	track := make([]float64, n)
	r.processor.Process(tracks, track)

	scratch := make([][]float64, 2*r.numOut)
	for i := range scratch {
		scratch[i] = make([]float64, n)
	}

	if err := r.channel.Process(r.name, startSample, [][]float64{track}, scratch); err != nil {
		return nil, err
	}

	direct := scratch[:r.numOut]
	diffuse := scratch[r.numOut:]

	delayedDirect := make([][]float64, r.numOut)
	for i := range delayedDirect {
		delayedDirect[i] = make([]float64, n)
	}
	r.directDelay.Process(direct, delayedDirect)

	out := make([][]float64, r.numOut)
	for i := 0; i < r.numOut; i++ {
		decorrelated := r.decorrelators[i].Process(diffuse[i], make([]float64, 0, n))
		row := make([]float64, n)
		for t := 0; t < n; t++ {
			row[t] = delayedDirect[i][t] + decorrelated[t]
		}
		out[i] = row
	}
	return out, nil
}
