// Package metadata defines the typed per-block ADM metadata the
// renderer consumes (Object, DirectSpeakers, HOA), the lazy source
// each is pulled from, and the per-type interpreters that turn a
// stream of metadata blocks into a stream of gain.ProcessingBlocks.
//
// The interpreters depend on the actual gain/decoder geometry (the
// object gain calculator, the DirectSpeakers panner, the HOA decoder
// design) only through small interfaces defined here; the concrete
// implementations live in sibling packages that import this one, not
// the other way around.
package metadata

import (
	"github.com/llehouerou/go-admrender/internal/geom"
	"github.com/llehouerou/go-admrender/internal/rational"
	"github.com/llehouerou/go-admrender/internal/screen"
)

// Frequency is a channel's declared low-pass/high-pass corner
// frequencies, used for LFE detection.
type Frequency struct {
	LowPass  *float64
	HighPass *float64
}

// JumpPosition describes a block's interpolation-suppression flag and,
// when set, the interval over which the jump itself should still ramp.
type JumpPosition struct {
	Flag                bool
	InterpolationLength *rational.Time
}

// Divergence describes an Object block's objectDivergence element.
type Divergence struct {
	Value        float64
	AzimuthRange float64
}

// Position is a tagged union of the two ways a position can be given:
// polar or Cartesian. Exactly one of the two fields is meaningful,
// selected by Cartesian.
type Position struct {
	Cartesian bool
	Polar     geom.Polar
	Vector    geom.Cartesian
}

// ToCartesian returns the position as a Cartesian vector regardless of
// how it was authored.
func (p Position) ToCartesian() geom.Cartesian {
	if p.Cartesian {
		return p.Vector
	}
	return p.Polar.ToCartesian()
}

// ObjectBlockFormat is the Object type metadata carried by one block.
type ObjectBlockFormat struct {
	Position           Position
	Width, Height, Depth float64
	Gain               float64
	Diffuse            float64
	JumpPosition       JumpPosition
	Divergence         Divergence
	ScreenRef          bool
	Cartesian          bool
	Importance         float64
}

// ObjectBlock is one Object metadata block together with its timing.
type ObjectBlock struct {
	RTime    *rational.Time
	Duration *rational.Time
	Format   ObjectBlockFormat
}

// ObjectExtraData is the item-level data accompanying an Object
// rendering item's metadata stream.
type ObjectExtraData struct {
	ObjectStart    *rational.Time
	ObjectDuration *rational.Time
	ReferenceScreen screen.Screen
	ChannelFrequency *Frequency
}

// ObjectSource is a lazy, finite sequence of Object metadata blocks in
// strictly non-overlapping, increasing time order.
type ObjectSource interface {
	Next() (block ObjectBlock, ok bool, err error)
}

// Bound is a value together with the range within which it may vary
// while still being considered a match (used for DirectSpeakers
// bounded position matching).
type Bound struct {
	Min, Value, Max float64
}

// BoundedPosition is a DirectSpeakers block's position, each component
// given as a nominal value plus an allowed range.
type BoundedPosition struct {
	Cartesian bool
	Azimuth   Bound
	Elevation Bound
	Distance  Bound
	X, Y, Z   Bound
}

// Nominal returns the position's nominal (non-range) value as Cartesian.
func (p BoundedPosition) Nominal() geom.Cartesian {
	if p.Cartesian {
		return geom.Cartesian{X: p.X.Value, Y: p.Y.Value, Z: p.Z.Value}
	}
	return geom.Polar{Azimuth: p.Azimuth.Value, Elevation: p.Elevation.Value, Distance: p.Distance.Value}.ToCartesian()
}

// ScreenEdgeLockSpec is a DirectSpeakers block's screenEdgeLock element.
type ScreenEdgeLockSpec struct {
	Horizontal string // "", "left", "right"
	Vertical   string // "", "top", "bottom"
}

// DirectSpeakersBlockFormat is the DirectSpeakers type metadata carried
// by one block.
type DirectSpeakersBlockFormat struct {
	Position       BoundedPosition
	SpeakerLabels  []string
	ScreenEdgeLock ScreenEdgeLockSpec
	JumpPosition   JumpPosition
}

// DirectSpeakersBlock is one DirectSpeakers metadata block with timing.
type DirectSpeakersBlock struct {
	RTime    *rational.Time
	Duration *rational.Time
	Format   DirectSpeakersBlockFormat
}

// DirectSpeakersExtraData is the item-level data accompanying a
// DirectSpeakers rendering item's metadata stream.
type DirectSpeakersExtraData struct {
	ChannelFrequency *Frequency
}

// DirectSpeakersSource is a lazy sequence of DirectSpeakers metadata
// blocks.
type DirectSpeakersSource interface {
	Next() (block DirectSpeakersBlock, ok bool, err error)
}

// HOABlock is one HOA type metadata block. As with ObjectBlock and
// DirectSpeakersBlock, its timing (RTime/Duration) is carried directly
// on the block.
type HOABlock struct {
	RTime         *rational.Time
	Duration      *rational.Time
	Orders        []int
	Degrees       []int
	Normalization string
	NFCRefDist    *float64
	ScreenRef     bool
}

// HOASource is a lazy sequence of HOA metadata blocks.
type HOASource interface {
	Next() (block HOABlock, ok bool, err error)
}
