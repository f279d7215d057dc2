package metadata

import (
	"errors"
	"testing"

	"github.com/llehouerou/go-admrender/internal/rational"
	"github.com/llehouerou/go-admrender/internal/rendererr"
)

func rt(n, d int64) *rational.Time {
	t := rational.FromFraction(n, d)
	return &t
}

func TestBlockTimingBothPresent(t *testing.T) {
	start, end, err := BlockTiming("c", rt(1, 1), rt(2, 1), nil, nil, rational.Zero, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Cmp(rational.FromInt(1)) != 0 || end.Cmp(rational.FromInt(3)) != 0 {
		t.Errorf("start=%v end=%v, want 1, 3", start, end)
	}
}

func TestBlockTimingBothAbsentUsesObjectSpan(t *testing.T) {
	start, end, err := BlockTiming("c", nil, nil, rt(1, 1), rt(4, 1), rational.Zero, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Cmp(rational.FromInt(1)) != 0 || end.Cmp(rational.FromInt(5)) != 0 {
		t.Errorf("start=%v end=%v, want 1, 5", start, end)
	}
}

func TestBlockTimingOneOnlyIsError(t *testing.T) {
	_, _, err := BlockTiming("c", rt(1, 1), nil, nil, nil, rational.Zero, false)
	var te *rendererr.TimingError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *TimingError", err)
	}
}

func TestBlockTimingExceedsObjectBoundsIsError(t *testing.T) {
	_, _, err := BlockTiming("c", rt(0, 1), rt(5, 1), rt(0, 1), rt(2, 1), rational.Zero, false)
	var te *rendererr.TimingError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *TimingError", err)
	}
}

func TestBlockTimingOverlapPreviousIsError(t *testing.T) {
	prevEnd := rational.FromInt(2)
	_, _, err := BlockTiming("c", rt(1, 1), rt(1, 1), nil, nil, prevEnd, true)
	var te *rendererr.TimingError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *TimingError", err)
	}
}

func TestBlockTimingAdjacentToPreviousIsFine(t *testing.T) {
	prevEnd := rational.FromInt(2)
	start, _, err := BlockTiming("c", rt(2, 1), rt(1, 1), nil, nil, prevEnd, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Cmp(prevEnd) != 0 {
		t.Errorf("start = %v, want %v", start, prevEnd)
	}
}
