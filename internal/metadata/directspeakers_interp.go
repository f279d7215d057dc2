package metadata

import (
	"github.com/llehouerou/go-admrender/internal/gain"
	"github.com/llehouerou/go-admrender/internal/rational"
)

// DirectSpeakersPanner computes the one-hot-or-panned gain vector for
// one DirectSpeakers block format.
type DirectSpeakersPanner interface {
	CalcGains(format DirectSpeakersBlockFormat, extra DirectSpeakersExtraData) (gains []float64, err error)
}

// DirectSpeakersInterpreter turns a DirectSpeakersSource into a stream
// of gain.ProcessingBlocks: one FixedGains per block, per §4.9 (no
// interpolation between DirectSpeakers blocks).
type DirectSpeakersInterpreter struct {
	channel    string
	source     DirectSpeakersSource
	panner     DirectSpeakersPanner
	extra      DirectSpeakersExtraData
	sampleRate int64

	hasPrev bool
	prevEnd rational.Time
}

// NewDirectSpeakersInterpreter builds an interpreter reading from
// source, computing gains via panner.
func NewDirectSpeakersInterpreter(channel string, source DirectSpeakersSource, panner DirectSpeakersPanner, extra DirectSpeakersExtraData, sampleRate int64) *DirectSpeakersInterpreter {
	return &DirectSpeakersInterpreter{channel: channel, source: source, panner: panner, extra: extra, sampleRate: sampleRate}
}

// Next implements gain.Interpreter.
func (in *DirectSpeakersInterpreter) Next() ([]gain.ProcessingBlock, bool, error) {
	block, ok, err := in.source.Next()
	if err != nil || !ok {
		return nil, ok, err
	}

	start, end, err := BlockTiming(in.channel, block.RTime, block.Duration, nil, nil, in.prevEnd, in.hasPrev)
	if err != nil {
		return nil, false, err
	}

	gains, err := in.panner.CalcGains(block.Format, in.extra)
	if err != nil {
		return nil, false, err
	}

	in.prevEnd = end
	in.hasPrev = true

	return []gain.ProcessingBlock{
		&gain.FixedGains{
			Span:  gain.ToSampleInterval(start, end, in.sampleRate),
			Gains: gains,
		},
	}, true, nil
}
