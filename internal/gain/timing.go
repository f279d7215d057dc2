package gain

import "github.com/llehouerou/go-admrender/internal/rational"

// BlockStartEnd converts a metadata block's rtime/duration (exact
// seconds) into a sample Interval at the given sample rate. Both
// endpoints are rounded with Ceil, matching the convention that a
// block's first affected sample is the first whole sample at or after
// its rtime, and likewise for its end: this is what keeps adjacent
// blocks' sample ranges exactly adjacent (no gap, no overlap) even when
// rtime/duration aren't whole numbers of samples.
func BlockStartEnd(rtime, duration rational.Time, sampleRate int64) Interval {
	if duration.IsInf() {
		return ToSampleInterval(rtime, rational.Inf, sampleRate)
	}
	return ToSampleInterval(rtime, rtime.Add(duration), sampleRate)
}

// ToSampleInterval converts a (start, end) pair given in seconds into a
// sample-domain Interval at sampleRate, rounding each endpoint up with
// Ceil. end may be rational.Inf.
func ToSampleInterval(start, end rational.Time, sampleRate int64) Interval {
	s := rational.FromInt(start.MulInt64(sampleRate).Ceil())
	if end.IsInf() {
		return Interval{Start: s, End: rational.Inf}
	}
	e := rational.FromInt(end.MulInt64(sampleRate).Ceil())
	return Interval{Start: s, End: e}
}

// LengthSamples returns iv.End - iv.Start as a plain int, for use as
// InterpGains.LengthSamples. Must not be called when iv.End is Inf.
func LengthSamples(iv Interval) int {
	return int(iv.End.Ceil() - iv.Start.Ceil())
}
