// Package layout loads the loudspeaker layout catalogue (ITU-R BS.2051
// style layouts: names, nominal positions, LFE flags) from embedded
// YAML, so new layouts are added as data rather than code.
package layout

import (
	_ "embed"
	"fmt"

	"github.com/llehouerou/go-admrender/internal/geom"
	"gopkg.in/yaml.v3"
)

//go:embed layouts.yaml
var catalogueYAML []byte

// Channel is one loudspeaker in a Layout.
type Channel struct {
	Name     string
	Position geom.Polar
	IsLFE    bool
}

// Layout is a named loudspeaker arrangement.
type Layout struct {
	Name     string
	Channels []Channel
}

// NonLFEIndices returns the indices of l.Channels that are not LFE
// channels, in layout order. This is the "output_channels" selector
// the HOA decoder and the object/direct-speakers renderers restrict
// their non-LFE gain vectors to.
func (l Layout) NonLFEIndices() []int {
	var idx []int
	for i, c := range l.Channels {
		if !c.IsLFE {
			idx = append(idx, i)
		}
	}
	return idx
}

// IndexOf returns the index of the channel named name, or -1 if none
// matches.
func (l Layout) IndexOf(name string) int {
	for i, c := range l.Channels {
		if c.Name == name {
			return i
		}
	}
	return -1
}

type rawCatalogue struct {
	Layouts []rawLayout `yaml:"layouts"`
}

type rawLayout struct {
	Name     string       `yaml:"name"`
	Channels []rawChannel `yaml:"channels"`
}

type rawChannel struct {
	Name      string  `yaml:"name"`
	Azimuth   float64 `yaml:"azimuth"`
	Elevation float64 `yaml:"elevation"`
	Distance  float64 `yaml:"distance"`
	LFE       bool    `yaml:"lfe"`
}

// Catalogue is an in-memory collection of named Layouts, keyed by name.
type Catalogue struct {
	layouts map[string]Layout
}

// LoadEmbedded parses the catalogue built into the binary.
func LoadEmbedded() (*Catalogue, error) {
	return Parse(catalogueYAML)
}

// Parse decodes a layout catalogue from YAML in the embedded schema.
func Parse(data []byte) (*Catalogue, error) {
	var raw rawCatalogue
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("layout: parsing catalogue: %w", err)
	}

	c := &Catalogue{layouts: make(map[string]Layout, len(raw.Layouts))}
	for _, rl := range raw.Layouts {
		l := Layout{Name: rl.Name}
		for _, rc := range rl.Channels {
			dist := rc.Distance
			if dist == 0 {
				dist = 1
			}
			l.Channels = append(l.Channels, Channel{
				Name:     rc.Name,
				Position: geom.Polar{Azimuth: rc.Azimuth, Elevation: rc.Elevation, Distance: dist},
				IsLFE:    rc.LFE,
			})
		}
		c.layouts[rl.Name] = l
	}
	return c, nil
}

// Get returns the layout named name, or false if the catalogue has no
// such layout.
func (c *Catalogue) Get(name string) (Layout, bool) {
	l, ok := c.layouts[name]
	return l, ok
}

// Names returns every layout name in the catalogue, in no particular
// order.
func (c *Catalogue) Names() []string {
	names := make([]string, 0, len(c.layouts))
	for n := range c.layouts {
		names = append(names, n)
	}
	return names
}
