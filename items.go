package admrender

import (
	"github.com/llehouerou/go-admrender/internal/metadata"
	"github.com/llehouerou/go-admrender/internal/trackspec"
)

// Item is a rendering item: a track spec bound to a metadata source,
// contributing to one of the three rendering modes. The concrete types
// are ObjectItem, DirectSpeakersItem and HOAItem.
type Item interface {
	itemName() string
}

// ObjectItem renders one Object-type channel: a single logical audio
// channel (extracted from the input tracks via TrackSpec) panned and
// diffused per a stream of Object metadata blocks.
type ObjectItem struct {
	Name       string
	TrackSpec  trackspec.Spec
	Source     metadata.ObjectSource
	Extra      metadata.ObjectExtraData
	Importance float64
}

func (it ObjectItem) itemName() string { return it.Name }

// DirectSpeakersItem renders one DirectSpeakers-type channel: a single
// logical audio channel routed to one loudspeaker (by label, bounded
// position, or point-source fallback) per a stream of DirectSpeakers
// metadata blocks.
type DirectSpeakersItem struct {
	Name       string
	TrackSpec  trackspec.Spec
	Source     metadata.DirectSpeakersSource
	Extra      metadata.DirectSpeakersExtraData
	Importance float64
}

func (it DirectSpeakersItem) itemName() string { return it.Name }

// HOAItem renders the HOA-type channels: the one item covering every
// ambisonic channel in the scene, one TrackSpec per channel (ordered to
// match the metadata source's Orders/Degrees), decoded to the output
// layout per a stream of HOA metadata blocks.
type HOAItem struct {
	Name        string
	TrackSpecs  []trackspec.Spec
	Source      metadata.HOASource
	Importances []float64
}

func (it HOAItem) itemName() string { return it.Name }
