// Package station defines the station record and the ordered catalog the
// player is built around.
package station

import (
	"errors"
	"fmt"

	"tuner/internal/httputil"
)

// Station is a named network audio stream.
type Station struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
	URL  string `toml:"url"`
}

// Validate checks that the record is usable.
func (s Station) Validate() error {
	if err := httputil.ValidateID(s.ID); err != nil {
		return fmt.Errorf("station id: %w", err)
	}
	if s.Name == "" {
		return fmt.Errorf("station %q has no name", s.ID)
	}
	if err := httputil.ValidateURL(s.URL); err != nil {
		return fmt.Errorf("station %q url: %w", s.ID, err)
	}
	return nil
}

// ErrDuplicateID is returned when two records share an ID.
var ErrDuplicateID = errors.New("duplicate station id")

// Catalog is an immutable ordered sequence of stations with unique IDs.
type Catalog struct {
	stations []Station
	index    map[string]int
}

// NewCatalog validates stations and builds a catalog preserving their order.
func NewCatalog(stations []Station) (*Catalog, error) {
	c := &Catalog{
		stations: make([]Station, 0, len(stations)),
		index:    make(map[string]int, len(stations)),
	}
	for _, s := range stations {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, ok := c.index[s.ID]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, s.ID)
		}
		c.index[s.ID] = len(c.stations)
		c.stations = append(c.stations, s)
	}
	return c, nil
}

// Stations returns a copy of the stations in catalog order.
func (c *Catalog) Stations() []Station {
	out := make([]Station, len(c.stations))
	copy(out, c.stations)
	return out
}

// Len returns the number of stations.
func (c *Catalog) Len() int { return len(c.stations) }

// Lookup finds a station by ID.
func (c *Catalog) Lookup(id string) (Station, bool) {
	i, ok := c.index[id]
	if !ok {
		return Station{}, false
	}
	return c.stations[i], true
}

// At returns the station at position i.
func (c *Catalog) At(i int) (Station, bool) {
	if i < 0 || i >= len(c.stations) {
		return Station{}, false
	}
	return c.stations[i], true
}
