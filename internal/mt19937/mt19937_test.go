package mt19937

import "testing"

// TestReferenceVector checks against the literal reference sequence for
// seed 5489 (the MT19937 default seed): the 10000th draw must be
// 4123659995, per the canonical mt19937ar.c output file.
func TestReferenceVector(t *testing.T) {
	s := New(5489)

	var last uint32
	for i := 0; i < 10000; i++ {
		last = s.Uint32()
	}

	const want = 4123659995
	if last != want {
		t.Fatalf("10000th draw = %d, want %d", last, want)
	}
}

func TestSeedIsDeterministic(t *testing.T) {
	a := New(42)
	b := New(42)

	for i := 0; i < 1000; i++ {
		x, y := a.Uint32(), b.Uint32()
		if x != y {
			t.Fatalf("draw %d: %d != %d", i, x, y)
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := New(1)
	b := New(2)

	same := true
	for i := 0; i < 8; i++ {
		if a.Uint32() != b.Uint32() {
			same = false
		}
	}
	if same {
		t.Fatalf("seeds 1 and 2 produced identical first 8 draws")
	}
}

func TestFloat64Range(t *testing.T) {
	s := New(7)
	for i := 0; i < 10000; i++ {
		f := s.Float64()
		if f < 0 || f >= 1 {
			t.Fatalf("Float64() = %v, want in [0, 1)", f)
		}
	}
}
