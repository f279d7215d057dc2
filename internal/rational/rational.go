// Package rational provides exact rational time arithmetic for the
// renderer's timing interpreter.
//
// Block boundaries in ADM metadata are given as rtime/duration fractions
// of a second; converting these to sample indices by first rounding to
// float64 would accumulate drift across a long stream. Keeping time as a
// big.Rat until a block's interval is turned into whole sample indices
// (rounded up, see gain.ToSampleInterval) avoids that.
package rational

import (
	"math/big"
)

// Time is an exact point in time (in seconds, or in samples once
// multiplied by a sample rate), or positive infinity. The zero Time is
// 0: a nil r is always treated as big.NewRat(0, 1), so Time{} (as
// appears inside a zero-valued Interval, for instance) behaves exactly
// like Zero rather than panicking.
type Time struct {
	r   *big.Rat
	inf bool
}

// rat returns t's value as a *big.Rat, substituting 0 for an
// unconstructed zero value.
func (t Time) rat() *big.Rat {
	if t.r == nil {
		return big.NewRat(0, 1)
	}
	return t.r
}

// Zero is the Time at 0.
var Zero = Time{r: big.NewRat(0, 1)}

// Inf is positive infinity, used for block ends with no explicit duration.
var Inf = Time{inf: true}

// FromInt builds a Time representing an integer number of seconds/samples.
func FromInt(n int64) Time {
	return Time{r: big.NewRat(n, 1)}
}

// FromFraction builds a Time representing num/den.
func FromFraction(num, den int64) Time {
	return Time{r: big.NewRat(num, den)}
}

// FromRat wraps an existing big.Rat. The Rat is copied defensively.
func FromRat(r *big.Rat) Time {
	return Time{r: new(big.Rat).Set(r)}
}

// IsInf reports whether t is positive infinity.
func (t Time) IsInf() bool { return t.inf }

// Add returns t + u. Adding to Inf yields Inf.
func (t Time) Add(u Time) Time {
	if t.inf || u.inf {
		return Inf
	}
	return Time{r: new(big.Rat).Add(t.rat(), u.rat())}
}

// Sub returns t - u. Panics if u is Inf; Inf minus a finite Time is
// Inf.
func (t Time) Sub(u Time) Time {
	if u.inf {
		panic("rational: cannot subtract infinity")
	}
	if t.inf {
		return Inf
	}
	return Time{r: new(big.Rat).Sub(t.rat(), u.rat())}
}

// Cmp compares t and u: -1 if t<u, 0 if t==u, 1 if t>u. Inf compares
// greater than any finite Time and equal to Inf.
func (t Time) Cmp(u Time) int {
	switch {
	case t.inf && u.inf:
		return 0
	case t.inf:
		return 1
	case u.inf:
		return -1
	default:
		return t.rat().Cmp(u.rat())
	}
}

// Less reports whether t < u.
func (t Time) Less(u Time) bool { return t.Cmp(u) < 0 }

// MulInt64 returns t * n, used to convert a time in seconds to a time in
// samples by multiplying by the sample rate.
func (t Time) MulInt64(n int64) Time {
	if t.inf {
		return Inf
	}
	return Time{r: new(big.Rat).Mul(t.rat(), big.NewRat(n, 1))}
}

// Ceil returns the smallest integer >= t. It panics on Inf, so callers
// must check IsInf before calling Ceil.
func (t Time) Ceil() int64 {
	if t.inf {
		panic("rational: Ceil of infinity")
	}
	r := t.rat()
	num := r.Num()
	den := r.Denom()
	q := new(big.Int)
	m := new(big.Int)
	q.DivMod(num, den, m)
	if m.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return q.Int64()
}

// Float64 converts t to a float64. Must not be called on Inf.
func (t Time) Float64() float64 {
	if t.inf {
		panic("rational: Float64 of infinity")
	}
	f, _ := t.rat().Float64()
	return f
}

// String renders t for diagnostics.
func (t Time) String() string {
	if t.inf {
		return "+inf"
	}
	return t.rat().RatString()
}
