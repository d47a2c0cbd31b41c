// Package geo derives sub-populations of a crime dataset by force and location.
package geo

import (
	"fmt"

	"github.com/twpayne/go-geom"

	"github.com/KaramelBytes/crimescope-cli/internal/crime"
)

// Bounds is an inclusive longitude/latitude box.
type Bounds struct {
	LonMin float64 `mapstructure:"lon_min" yaml:"lon_min" json:"lon_min" validate:"gte=-180,lte=180,ltefield=LonMax"`
	LonMax float64 `mapstructure:"lon_max" yaml:"lon_max" json:"lon_max" validate:"gte=-180,lte=180"`
	LatMin float64 `mapstructure:"lat_min" yaml:"lat_min" json:"lat_min" validate:"gte=-90,lte=90,ltefield=LatMax"`
	LatMax float64 `mapstructure:"lat_max" yaml:"lat_max" json:"lat_max" validate:"gte=-90,lte=90"`
}

// Geom returns the box as XY bounds (x = longitude, y = latitude).
func (b Bounds) Geom() *geom.Bounds {
	return geom.NewBounds(geom.XY).Set(b.LonMin, b.LatMin, b.LonMax, b.LatMax)
}

// Contains reports whether the point lies inside the box, edges included.
func (b Bounds) Contains(lon, lat float64) bool {
	return b.Geom().OverlapsPoint(geom.XY, geom.Coord{lon, lat})
}

func (b Bounds) String() string {
	return fmt.Sprintf("[%g, %g] x [%g, %g]", b.LonMin, b.LonMax, b.LatMin, b.LatMax)
}

// Region is a named sub-area, optionally tied to one force.
type Region struct {
	Name   string `yaml:"-" json:"name"`
	Force  string `mapstructure:"force" yaml:"force,omitempty" json:"force,omitempty"`
	Bounds `mapstructure:",squash" yaml:",inline"`
}

// Filter selects records satisfying every non-empty condition.
type Filter struct {
	// Force, if set, must equal the record's force exactly.
	Force string
	// Bounds, if set, must contain the record's coordinates.
	Bounds *Bounds
	// CrimeTypes, if non-empty, must include the record's crime type.
	CrimeTypes []string
}

// ForRegion builds the filter for a configured region.
func ForRegion(r Region) Filter {
	b := r.Bounds
	return Filter{Force: r.Force, Bounds: &b}
}

// WithCrimeTypes returns a copy of f that also restricts crime types.
func (f Filter) WithCrimeTypes(types ...string) Filter {
	f.CrimeTypes = append(append([]string(nil), f.CrimeTypes...), types...)
	return f
}

// Match reports whether r satisfies the filter.
func (f Filter) Match(r crime.Record) bool {
	if f.Force != "" && r.Force != f.Force {
		return false
	}
	if f.Bounds != nil {
		if !r.Longitude.Valid || !r.Latitude.Valid {
			return false
		}
		if !f.Bounds.Contains(r.Longitude.Value, r.Latitude.Value) {
			return false
		}
	}
	if len(f.CrimeTypes) > 0 {
		found := false
		for _, t := range f.CrimeTypes {
			if r.CrimeType == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Apply returns the matching records as a new dataset. The input is not modified.
func (f Filter) Apply(ds *crime.Dataset) *crime.Dataset {
	if ds == nil {
		return &crime.Dataset{}
	}
	if f.Bounds == nil {
		return ds.Subset(f.Match)
	}
	box := f.Bounds.Geom()
	inner := f
	inner.Bounds = nil
	return ds.Subset(func(r crime.Record) bool {
		if !r.Longitude.Valid || !r.Latitude.Valid {
			return false
		}
		return box.OverlapsPoint(geom.XY, geom.Coord{r.Longitude.Value, r.Latitude.Value}) && inner.Match(r)
	})
}
