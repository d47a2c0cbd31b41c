package render

import (
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/KaramelBytes/crimescope-cli/internal/analysis"
)

var unsafeName = regexp.MustCompile(`[^a-z0-9_\-]+`)

// Slug lower-cases s and replaces whitespace with underscores, dropping
// characters that are unsafe in file names.
func Slug(s string) string {
	s = cases.Lower(language.English).String(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), "_")
	return strings.Trim(unsafeName.ReplaceAllString(s, ""), "_")
}

// ImageName builds <region>_<artifact>_<crime-type>.png. Empty parts are skipped.
func ImageName(region, artifact, crimeType string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{region, artifact, crimeType} {
		if s := Slug(p); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "chart")
	}
	return strings.Join(parts, "_") + ".png"
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

func save(p *plot.Plot, w, h vg.Length, path string) error {
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("save chart %s: %w", filepath.Base(path), err)
	}
	return nil
}

// GroupedBars draws measure per category as bars. A second dimension, if
// present, splits each category into one bar per series.
func GroupedBars(t *analysis.Table, measure, title, path string) error {
	if len(t.Dimensions) < 1 || len(t.Dimensions) > 2 {
		return fmt.Errorf("bar chart needs one or two dimensions, table %q has %d", t.Name, len(t.Dimensions))
	}
	mi := t.MeasureIndex(measure)
	if mi < 0 {
		return fmt.Errorf("table %q has no measure %q", t.Name, measure)
	}
	categories := t.Distinct(t.Dimensions[0])
	if len(categories) == 0 {
		return fmt.Errorf("table %q is empty", t.Name)
	}
	series := []string{""}
	if len(t.Dimensions) == 2 {
		series = t.Distinct(t.Dimensions[1])
	}

	p := newPlot(title, t.Dimensions[0].Label(), measure)
	width := vg.Points(40 / float64(len(series)))
	for si, s := range series {
		vals := make(plotter.Values, len(categories))
		for ci, c := range categories {
			keys := []string{c}
			if len(t.Dimensions) == 2 {
				keys = append(keys, s)
			}
			v, _ := t.Lookup(measure, keys...)
			vals[ci] = v
		}
		bars, err := plotter.NewBarChart(vals, width)
		if err != nil {
			return err
		}
		bars.Color = plotutil.Color(si)
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = width * vg.Length(float64(si)-float64(len(series)-1)/2)
		p.Add(bars)
		if len(t.Dimensions) == 2 {
			p.Legend.Add(s, bars)
		}
	}
	p.Legend.Top = true
	p.NominalX(categories...)
	p.X.Tick.Label.Rotation = math.Pi / 6
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Add(plotter.NewGrid())
	return save(p, 14*vg.Inch, 7*vg.Inch, path)
}

// SeasonalLines plots measure against month of year, one line per value of series.
func SeasonalLines(t *analysis.Table, series analysis.Dimension, measure, title, path string) error {
	si, mo := t.DimIndex(series), t.DimIndex(analysis.DimMonthNum)
	mi := t.MeasureIndex(measure)
	if si < 0 || mo < 0 || mi < 0 {
		return fmt.Errorf("table %q lacks %s/%s/%s", t.Name, series, analysis.DimMonthNum, measure)
	}
	p := newPlot(title, "Month", measure)
	for i, name := range t.Distinct(series) {
		var pts plotter.XYs
		for _, r := range t.Rows {
			if r.Keys[si] != name {
				continue
			}
			var m int
			if _, err := fmt.Sscanf(r.Keys[mo], "%d", &m); err != nil {
				continue
			}
			pts = append(pts, plotter.XY{X: float64(m), Y: r.Values[mi]})
		}
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add(name, line)
	}
	p.X.Min, p.X.Max = 1, 12
	p.X.Tick.Marker = plot.ConstantTicks(monthTicks())
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	return save(p, 12*vg.Inch, 6*vg.Inch, path)
}

func monthTicks() []plot.Tick {
	names := []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	ticks := make([]plot.Tick, len(names))
	for i, n := range names {
		ticks[i] = plot.Tick{Value: float64(i + 1), Label: n}
	}
	return ticks
}

var quadrantColors = map[analysis.Quadrant]color.Color{
	analysis.ChronicProblems:  color.RGBA{R: 220, G: 20, B: 60, A: 255},
	analysis.NicheChallenges:  color.RGBA{R: 255, G: 165, B: 0, A: 255},
	analysis.WellManaged:      color.RGBA{R: 65, G: 105, B: 225, A: 255},
	analysis.EffectiveProcess: color.RGBA{R: 34, G: 139, B: 34, A: 255},
}

// PriorityScatter draws volume against rate with dashed median lines and a
// colour per quadrant.
func PriorityScatter(m analysis.PriorityMatrix, title, path string) error {
	if len(m.Points) == 0 {
		return fmt.Errorf("priority matrix has no points")
	}
	p := newPlot(title, "Volume (records)", "Unsolved rate (%)")
	pts := make(plotter.XYs, len(m.Points))
	labels := make([]string, len(m.Points))
	maxVol := 0.0
	for i, pt := range m.Points {
		pts[i] = plotter.XY{X: pt.Volume, Y: pt.Rate}
		labels[i] = pt.Label
		maxVol = math.Max(maxVol, pt.Volume)

		s, err := plotter.NewScatter(plotter.XYs{pts[i]})
		if err != nil {
			return err
		}
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(6)
		s.GlyphStyle.Color = quadrantColors[m.Quadrant(pt)]
		p.Add(s)
	}

	dashes := []vg.Length{vg.Points(5), vg.Points(5)}
	rateLine := plotter.NewFunction(func(float64) float64 { return m.RateMedian })
	rateLine.Dashes = dashes
	rateLine.Color = color.Gray{Y: 100}
	p.Add(rateLine)

	volLine, err := plotter.NewLine(plotter.XYs{{X: m.VolumeMedian, Y: 0}, {X: m.VolumeMedian, Y: 100}})
	if err != nil {
		return err
	}
	volLine.Dashes = dashes
	volLine.Color = color.Gray{Y: 100}
	p.Add(volLine)

	lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: labels})
	if err != nil {
		return err
	}
	p.Add(lbl)
	for _, q := range []analysis.Quadrant{analysis.ChronicProblems, analysis.NicheChallenges, analysis.WellManaged, analysis.EffectiveProcess} {
		s, err := plotter.NewScatter(plotter.XYs{})
		if err != nil {
			return err
		}
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Color = quadrantColors[q]
		p.Legend.Add(q.String(), s)
	}
	p.Legend.Top = true
	p.X.Min, p.X.Max = 0, maxVol*1.1+1
	p.Y.Min, p.Y.Max = 0, 105
	p.Add(plotter.NewGrid())
	return save(p, 12*vg.Inch, 9*vg.Inch, path)
}

// Heatmap draws a hotspot grid with a heat palette.
func Heatmap(g *analysis.Grid, title, path string) error {
	p := newPlot(title, "Longitude", "Latitude")
	hm := plotter.NewHeatMap(g, palette.Heat(12, 1))
	hm.Min, hm.Max = 0, math.Max(g.Max(), 1)
	p.Add(hm)
	p.X.Min, p.X.Max = g.Bounds.LonMin, g.Bounds.LonMax
	p.Y.Min, p.Y.Max = g.Bounds.LatMin, g.Bounds.LatMax
	return save(p, 8*vg.Inch, 8*vg.Inch, path)
}
