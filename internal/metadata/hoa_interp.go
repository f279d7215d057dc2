package metadata

import (
	"github.com/llehouerou/go-admrender/internal/gain"
	"github.com/llehouerou/go-admrender/internal/rational"
)

// HOADecoder turns one HOA metadata block into a decode matrix: one row
// per non-LFE output channel, one column per HOA input channel (the
// length and ordering of block.Orders/block.Degrees).
type HOADecoder interface {
	Decode(block HOABlock) (matrix [][]float64, err error)
}

// HOAInterpreter turns an HOASource into a stream of gain.ProcessingBlocks:
// one FixedMatrix per block, scattered into the non-LFE channels of the
// playback layout. Like DirectSpeakers and unlike Object, an HOA block's
// rtime/duration describe its own span directly; there is no
// object_start/object_duration wrapper.
type HOAInterpreter struct {
	channel        string
	source         HOASource
	decoder        HOADecoder
	outputChannels []int // absolute non-LFE output indices, row order matches decoder output
	sampleRate     int64

	hasPrev bool
	prevEnd rational.Time
}

// NewHOAInterpreter builds an interpreter reading from source, decoding
// each block via decoder and scattering the result into outputChannels.
func NewHOAInterpreter(channel string, source HOASource, decoder HOADecoder, outputChannels []int, sampleRate int64) *HOAInterpreter {
	return &HOAInterpreter{channel: channel, source: source, decoder: decoder, outputChannels: outputChannels, sampleRate: sampleRate}
}

// Next implements gain.Interpreter.
func (in *HOAInterpreter) Next() ([]gain.ProcessingBlock, bool, error) {
	block, ok, err := in.source.Next()
	if err != nil || !ok {
		return nil, ok, err
	}

	start, end, err := BlockTiming(in.channel, block.RTime, block.Duration, nil, nil, in.prevEnd, in.hasPrev)
	if err != nil {
		return nil, false, err
	}

	matrix, err := in.decoder.Decode(block)
	if err != nil {
		return nil, false, err
	}

	in.prevEnd = end
	in.hasPrev = true

	return []gain.ProcessingBlock{
		&gain.FixedMatrix{
			Span:           gain.ToSampleInterval(start, end, in.sampleRate),
			Matrix:         matrix,
			OutputChannels: in.outputChannels,
		},
	}, true, nil
}
