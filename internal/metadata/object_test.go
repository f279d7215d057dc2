package metadata

import (
	"testing"

	"github.com/llehouerou/go-admrender/internal/gain"
)

type fakeObjectSource struct {
	blocks []ObjectBlock
	i      int
}

func (s *fakeObjectSource) Next() (ObjectBlock, bool, error) {
	if s.i >= len(s.blocks) {
		return ObjectBlock{}, false, nil
	}
	b := s.blocks[s.i]
	s.i++
	return b, true, nil
}

type fakeGainCalc struct {
	gains map[float64][]float64 // keyed by Gain field, for test distinction
}

func (c *fakeGainCalc) CalcGains(format ObjectBlockFormat, extra ObjectExtraData) ([]float64, error) {
	if g, ok := c.gains[format.Gain]; ok {
		return g, nil
	}
	return []float64{format.Gain, 0}, nil
}

func TestObjectInterpreterFirstBlockIsFixedOnly(t *testing.T) {
	src := &fakeObjectSource{blocks: []ObjectBlock{
		{RTime: rt(0, 1), Duration: rt(1, 1), Format: ObjectBlockFormat{Gain: 1}},
	}}
	calc := &fakeGainCalc{}
	interp := NewObjectInterpreter("ch", src, calc, ObjectExtraData{}, 48000)

	blocks, ok, err := interp.Next()
	if err != nil || !ok {
		t.Fatalf("Next() = %v, %v, %v", blocks, ok, err)
	}
	if len(blocks) != 1 {
		t.Fatalf("len(blocks) = %d, want 1 (no previous gain to interpolate from)", len(blocks))
	}
}

func TestObjectInterpreterContinuousBlocksInterpolate(t *testing.T) {
	src := &fakeObjectSource{blocks: []ObjectBlock{
		{RTime: rt(0, 1), Duration: rt(1, 1), Format: ObjectBlockFormat{Gain: 1}},
		{RTime: rt(1, 1), Duration: rt(1, 1), Format: ObjectBlockFormat{Gain: 2}},
	}}
	calc := &fakeGainCalc{}
	interp := NewObjectInterpreter("ch", src, calc, ObjectExtraData{}, 48000)

	if _, _, err := interp.Next(); err != nil {
		t.Fatalf("first Next(): %v", err)
	}
	blocks, ok, err := interp.Next()
	if err != nil || !ok {
		t.Fatalf("second Next() = %v, %v, %v", blocks, ok, err)
	}
	if len(blocks) != 1 {
		t.Fatalf("len(blocks) = %d, want 1 (InterpGains ramp spanning the whole block)", len(blocks))
	}
	if _, isInterp := blocks[0].(*gain.InterpGains); !isInterp {
		t.Fatalf("blocks[0] = %T, want *gain.InterpGains", blocks[0])
	}
}

func TestObjectInterpreterJumpPositionSkipsRamp(t *testing.T) {
	src := &fakeObjectSource{blocks: []ObjectBlock{
		{RTime: rt(0, 1), Duration: rt(1, 1), Format: ObjectBlockFormat{Gain: 1}},
		{RTime: rt(1, 1), Duration: rt(1, 1), Format: ObjectBlockFormat{
			Gain:         2,
			JumpPosition: JumpPosition{Flag: true},
		}},
	}}
	calc := &fakeGainCalc{}
	interp := NewObjectInterpreter("ch", src, calc, ObjectExtraData{}, 48000)

	if _, _, err := interp.Next(); err != nil {
		t.Fatalf("first Next(): %v", err)
	}
	blocks, ok, err := interp.Next()
	if err != nil || !ok {
		t.Fatalf("second Next() = %v, %v, %v", blocks, ok, err)
	}
	if len(blocks) != 1 {
		t.Fatalf("len(blocks) = %d, want 1 (jump suppresses interpolation entirely)", len(blocks))
	}
}

func TestObjectInterpreterExhaustion(t *testing.T) {
	src := &fakeObjectSource{}
	interp := NewObjectInterpreter("ch", src, &fakeGainCalc{}, ObjectExtraData{}, 48000)
	_, ok, err := interp.Next()
	if err != nil || ok {
		t.Fatalf("Next() on empty source = ok=%v err=%v, want ok=false err=nil", ok, err)
	}
}
