package metadata

import (
	"github.com/llehouerou/go-admrender/internal/rational"
	"github.com/llehouerou/go-admrender/internal/rendererr"
)

// BlockTiming derives a block's (start, end) time from its rtime/
// duration and its item's object_start/object_duration, per the
// renderer's timing rule: both present computes an explicit interval
// bounded by the object's own span; both absent takes the whole object
// span; one present without the other is a timing error. start must
// not precede prevEnd (hasPrev false for the first block of a source).
func BlockTiming(channel string, rtime, duration, objectStart, objectDuration *rational.Time, prevEnd rational.Time, hasPrev bool) (start, end rational.Time, err error) {
	oStart := rational.Zero
	if objectStart != nil {
		oStart = *objectStart
	}
	oEnd := rational.Inf
	if objectDuration != nil {
		oEnd = oStart.Add(*objectDuration)
	}

	switch {
	case rtime != nil && duration != nil:
		start = oStart.Add(*rtime)
		end = start.Add(*duration)
		if end.Cmp(oEnd) > 0 {
			return rational.Zero, rational.Zero, &rendererr.TimingError{
				Channel: channel,
				Detail:  "block end exceeds object bounds",
			}
		}
	case rtime == nil && duration == nil:
		start, end = oStart, oEnd
	default:
		return rational.Zero, rational.Zero, &rendererr.TimingError{
			Channel: channel,
			Detail:  "rtime and duration must both be present or both absent",
		}
	}

	if hasPrev && start.Less(prevEnd) {
		return rational.Zero, rational.Zero, &rendererr.TimingError{
			Channel: channel,
			Detail:  "block overlaps previous block",
		}
	}

	return start, end, nil
}
