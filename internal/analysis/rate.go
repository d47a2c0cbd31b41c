package analysis

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/KaramelBytes/crimescope-cli/internal/crime"
)

// Population maps a force name to its resident population.
type Population map[string]int

// Lookup finds a force's population. Exact names win; otherwise names are
// compared case-insensitively, since config loaders may lower-case map keys.
func (p Population) Lookup(force string) (int, bool) {
	if n, ok := p[force]; ok {
		return n, true
	}
	fold := cases.Fold()
	want := fold.String(strings.TrimSpace(force))
	for name, n := range p {
		if fold.String(strings.TrimSpace(name)) == want {
			return n, true
		}
	}
	return 0, false
}

// RateOptions control per-capita normalisation.
type RateOptions struct {
	// Measure is the numerator column; defaults to count.
	Measure string
	// Scale expresses the rate per Scale people (1000, 100000).
	Scale float64
	// Divisor spreads the numerator over an observation span, e.g. years. Zero means 1.
	Divisor float64
	// Name of the produced measure; defaults to rate_per_<scale>.
	Name string
	// Strict turns a force without population into a MissingConfigurationError.
	Strict bool
}

func (o RateOptions) withDefaults() RateOptions {
	if o.Measure == "" {
		o.Measure = MeasureCount
	}
	if o.Scale <= 0 {
		o.Scale = 1000
	}
	if o.Divisor <= 0 {
		o.Divisor = 1
	}
	if o.Name == "" {
		o.Name = fmt.Sprintf("rate_per_%s", FormatValue(o.Scale))
	}
	return o
}

// Rate appends population and a per-capita rate to t:
//
//	rate = value / population / divisor * scale
//
// t must carry a force dimension. Forces with no population are dropped with a
// warning unless opt.Strict is set.
func Rate(t *Table, pop Population, opt RateOptions) (*Table, error) {
	opt = opt.withDefaults()
	fi := t.DimIndex(DimForce)
	if fi < 0 {
		return nil, fmt.Errorf("rate: table %q has no %s dimension", t.Name, DimForce)
	}
	mi := t.MeasureIndex(opt.Measure)
	if mi < 0 {
		return nil, fmt.Errorf("rate: table %q has no measure %q", t.Name, opt.Measure)
	}
	out := &Table{
		Name:       t.Name,
		Dimensions: append([]Dimension(nil), t.Dimensions...),
		Measures:   append(append([]string(nil), t.Measures...), MeasurePopulation, opt.Name),
		Warnings:   append([]string(nil), t.Warnings...),
	}
	missing := map[string]bool{}
	var missingOrder []string
	for _, r := range t.Rows {
		force := r.Keys[fi]
		n, ok := pop.Lookup(force)
		if !ok || n <= 0 {
			if opt.Strict {
				return nil, &crime.MissingConfigurationError{Force: force}
			}
			if !missing[force] {
				missing[force] = true
				missingOrder = append(missingOrder, force)
			}
			continue
		}
		vals := append(append([]float64(nil), r.Values...), float64(n), r.Values[mi]/float64(n)/opt.Divisor*opt.Scale)
		out.Rows = append(out.Rows, Row{Keys: append([]string(nil), r.Keys...), Values: vals})
	}
	for _, f := range missingOrder {
		out.Warnings = append(out.Warnings, (&crime.MissingConfigurationError{Force: f}).Error()+"; excluded from rates")
	}
	return out, nil
}

// AnnualRate counts crimes per force (plus any extra dims) and divides by
// population and the number of observed years.
func AnnualRate(ds *crime.Dataset, pop Population, scale float64, years int, strict bool, extra ...Dimension) (*Table, error) {
	dims := []Dimension{DimForce}
	for _, d := range extra {
		if d != DimForce {
			dims = append(dims, d)
		}
	}
	t := Count(ds, dims...)
	t.Name = "annual crime rate by " + dimNames(dims)
	if years <= 0 {
		years = 1
	}
	out, err := Rate(t, pop, RateOptions{Scale: scale, Divisor: float64(years), Strict: strict})
	if err != nil {
		return nil, err
	}
	out.SortBy(out.Measures[len(out.Measures)-1], true)
	return out, nil
}
