package metadata

import (
	"github.com/llehouerou/go-admrender/internal/gain"
	"github.com/llehouerou/go-admrender/internal/rational"
	"github.com/llehouerou/go-admrender/internal/rendererr"
)

// ObjectGainCalculator computes the direct/diffuse gain vector for one
// Object block format, given the item's extra data (reference screen,
// channel frequency). The returned slice has length 2*L: the first L
// entries are the direct gains, the next L the diffuse gains, matching
// the (N, 2L) scratch layout the object renderer writes into.
type ObjectGainCalculator interface {
	CalcGains(format ObjectBlockFormat, extra ObjectExtraData) (gains []float64, err error)
}

// ObjectInterpreter turns an ObjectSource into a stream of
// gain.ProcessingBlocks, handling interpolation continuity across
// blocks and jumpPosition per the object metadata interpretation rule.
type ObjectInterpreter struct {
	channel    string
	source     ObjectSource
	calc       ObjectGainCalculator
	extra      ObjectExtraData
	sampleRate int64

	hasPrev  bool
	prevEnd  rational.Time
	lastGain []float64
}

// NewObjectInterpreter builds an interpreter reading from source,
// computing gains via calc, for an item with the given extra data at
// sampleRate samples per second.
func NewObjectInterpreter(channel string, source ObjectSource, calc ObjectGainCalculator, extra ObjectExtraData, sampleRate int64) *ObjectInterpreter {
	return &ObjectInterpreter{channel: channel, source: source, calc: calc, extra: extra, sampleRate: sampleRate}
}

// Next implements gain.Interpreter.
func (in *ObjectInterpreter) Next() ([]gain.ProcessingBlock, bool, error) {
	block, ok, err := in.source.Next()
	if err != nil || !ok {
		return nil, ok, err
	}

	start, end, err := BlockTiming(in.channel, block.RTime, block.Duration, in.extra.ObjectStart, in.extra.ObjectDuration, in.prevEnd, in.hasPrev)
	if err != nil {
		return nil, false, err
	}

	blockDuration := rational.Zero
	if !end.IsInf() {
		blockDuration = end.Sub(start)
	}

	var interpLength rational.Time
	if block.Format.JumpPosition.Flag {
		interpLength = rational.Zero
		if l := block.Format.JumpPosition.InterpolationLength; l != nil {
			interpLength = *l
		}
	} else {
		interpLength = blockDuration
	}
	if !end.IsInf() && interpLength.Cmp(blockDuration) > 0 {
		return nil, false, &rendererr.TimingError{Channel: in.channel, Detail: "jumpPosition.interpolationLength exceeds block duration"}
	}

	target := start.Add(interpLength)

	gainsTo, err := in.calc.CalcGains(block.Format, in.extra)
	if err != nil {
		return nil, false, err
	}

	var blocks []gain.ProcessingBlock

	continuous := in.hasPrev && !in.prevEnd.Less(start) && !start.Less(in.prevEnd)
	if continuous && in.lastGain != nil && target.Cmp(start) != 0 {
		startIv := gain.ToSampleInterval(start, target, in.sampleRate)
		blocks = append(blocks, &gain.InterpGains{
			Span:          startIv,
			GainsStart:    in.lastGain,
			GainsEnd:      gainsTo,
			LengthSamples: sampleLength(startIv),
		})
	} else {
		target = start
	}

	if target.Cmp(end) != 0 {
		blocks = append(blocks, &gain.FixedGains{
			Span:  gain.ToSampleInterval(target, end, in.sampleRate),
			Gains: gainsTo,
		})
	}

	in.prevEnd = end
	in.hasPrev = true
	in.lastGain = gainsTo

	return blocks, true, nil
}

func sampleLength(iv gain.Interval) int {
	if iv.End.IsInf() {
		return 0
	}
	return gain.LengthSamples(iv)
}
