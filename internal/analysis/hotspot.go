package analysis

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/crimescope-cli/internal/crime"
	"github.com/KaramelBytes/crimescope-cli/internal/geo"
)

// TheftTypes is the crime-type preset used for theft hotspot maps.
var TheftTypes = []string{
	"Bicycle theft",
	"Shoplifting",
	"Theft from the person",
	"Other theft",
	"Burglary",
	"Robbery",
	"Vehicle crime",
}

// Grid is a regular lon/lat binning of record locations inside a box.
// Cell (c, r) covers column c from the west edge and row r from the south edge.
type Grid struct {
	Bounds  geo.Bounds
	Cols    int
	Rows    int
	Counts  []float64 // row-major, len Cols*Rows
	Total   int
	Outside int
}

// Hotspot bins every located record of ds into a cols x rows grid over b.
// Points on the east or north edge fall in the last cell.
func Hotspot(ds *crime.Dataset, b geo.Bounds, cols, rows int) (*Grid, error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("hotspot: grid must be at least 1x1, got %dx%d", cols, rows)
	}
	if b.LonMax <= b.LonMin || b.LatMax <= b.LatMin {
		return nil, fmt.Errorf("hotspot: degenerate bounds %s", b)
	}
	g := &Grid{Bounds: b, Cols: cols, Rows: rows, Counts: make([]float64, cols*rows)}
	if ds == nil {
		return g, nil
	}
	w := (b.LonMax - b.LonMin) / float64(cols)
	h := (b.LatMax - b.LatMin) / float64(rows)
	for _, r := range ds.Records {
		if !r.Longitude.Valid || !r.Latitude.Valid {
			continue
		}
		lon, lat := r.Longitude.Value, r.Latitude.Value
		if !b.Contains(lon, lat) {
			g.Outside++
			continue
		}
		c := min(int((lon-b.LonMin)/w), cols-1)
		rr := min(int((lat-b.LatMin)/h), rows-1)
		g.Counts[rr*cols+c]++
		g.Total++
	}
	return g, nil
}

// Dims, Z, X and Y let the grid feed a heat map directly.
func (g *Grid) Dims() (c, r int) { return g.Cols, g.Rows }

func (g *Grid) Z(c, r int) float64 { return g.Counts[r*g.Cols+c] }

// X is the longitude at the centre of column c.
func (g *Grid) X(c int) float64 {
	w := (g.Bounds.LonMax - g.Bounds.LonMin) / float64(g.Cols)
	return g.Bounds.LonMin + w*(float64(c)+0.5)
}

// Y is the latitude at the centre of row r.
func (g *Grid) Y(r int) float64 {
	h := (g.Bounds.LatMax - g.Bounds.LatMin) / float64(g.Rows)
	return g.Bounds.LatMin + h*(float64(r)+0.5)
}

// Max returns the largest cell value.
func (g *Grid) Max() float64 {
	var m float64
	for _, v := range g.Counts {
		m = math.Max(m, v)
	}
	return m
}

// Peak returns the centre of the busiest cell and its value.
func (g *Grid) Peak() (lon, lat, value float64) {
	best := -1
	for i, v := range g.Counts {
		if best < 0 || v > g.Counts[best] {
			best = i
		}
	}
	if best < 0 {
		return 0, 0, 0
	}
	return g.X(best % g.Cols), g.Y(best / g.Cols), g.Counts[best]
}

// Smooth returns a copy blurred with a Gaussian kernel of sigma cells,
// approximating a kernel density surface. The total mass is preserved
// up to edge losses.
func (g *Grid) Smooth(sigma float64) *Grid {
	out := *g
	out.Counts = append([]float64(nil), g.Counts...)
	if sigma <= 0 {
		return &out
	}
	radius := int(math.Ceil(3 * sigma))
	kernel := make([]float64, 2*radius+1)
	var sum float64
	for i := range kernel {
		d := float64(i - radius)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	tmp := make([]float64, len(g.Counts))
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			var v float64
			for k, kv := range kernel {
				cc := c + k - radius
				if cc >= 0 && cc < g.Cols {
					v += g.Counts[r*g.Cols+cc] * kv
				}
			}
			tmp[r*g.Cols+c] = v
		}
	}
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			var v float64
			for k, kv := range kernel {
				rr := r + k - radius
				if rr >= 0 && rr < g.Rows {
					v += tmp[rr*g.Cols+c] * kv
				}
			}
			out.Counts[r*g.Cols+c] = v
		}
	}
	return &out
}

// Table lists non-empty cells by their centre coordinates, busiest first.
func (g *Grid) Table() *Table {
	t := &Table{
		Name:       fmt.Sprintf("hotspot grid %dx%d over %s", g.Cols, g.Rows, g.Bounds),
		Dimensions: []Dimension{DimCellLon, DimCellLat},
		Measures:   []string{MeasureCount},
	}
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			v := g.Z(c, r)
			if v == 0 {
				continue
			}
			t.Rows = append(t.Rows, Row{
				Keys:   []string{fmt.Sprintf("%.4f", g.X(c)), fmt.Sprintf("%.4f", g.Y(r))},
				Values: []float64{v},
			})
		}
	}
	t.SortBy(MeasureCount, true)
	if g.Outside > 0 {
		t.Warnings = append(t.Warnings, fmt.Sprintf("%d located records fell outside %s", g.Outside, g.Bounds))
	}
	return t
}
