package analysis

import (
	"strconv"

	"github.com/KaramelBytes/crimescope-cli/internal/crime"
)

// Seasonal averages monthly counts across years. Records are first counted per
// (dims, year, month of year); each (dims, month of year) cell is then the mean
// over the years in which that cell has records. Rows are ordered by dims in
// first-seen order, then month of year ascending.
func Seasonal(ds *crime.Dataset, dims ...Dimension) *Table {
	full := append(append([]Dimension(nil), dims...), DimYear, DimMonthNum)
	monthly := Count(ds, full...)

	type cell struct {
		keys   []string
		counts []float64
	}
	var order []string
	cells := map[string]*cell{}
	for _, r := range monthly.Rows {
		if r.Keys[len(dims)] == "" {
			continue // unparsed month
		}
		keys := append(append([]string(nil), r.Keys[:len(dims)]...), r.Keys[len(dims)+1])
		k := joinKey(keys)
		c, ok := cells[k]
		if !ok {
			c = &cell{keys: keys}
			cells[k] = c
			order = append(order, k)
		}
		c.counts = append(c.counts, r.Values[0])
	}

	t := &Table{
		Name:       "average monthly count by " + dimNames(append(append([]Dimension(nil), dims...), DimMonthNum)),
		Dimensions: append(append([]Dimension(nil), dims...), DimMonthNum),
		Measures:   []string{MeasureAvgCount, MeasureYears},
	}
	for _, k := range order {
		c := cells[k]
		t.Rows = append(t.Rows, Row{Keys: c.keys, Values: []float64{mean(c.counts), float64(len(c.counts))}})
	}

	groupRank := map[string]int{}
	for _, k := range order {
		g := joinKey(cells[k].keys[:len(dims)])
		if _, ok := groupRank[g]; !ok {
			groupRank[g] = len(groupRank)
		}
	}
	sortRows(t.Rows, func(a, b Row) bool {
		ga, gb := groupRank[joinKey(a.Keys[:len(dims)])], groupRank[joinKey(b.Keys[:len(dims)])]
		if ga != gb {
			return ga < gb
		}
		ma, _ := strconv.Atoi(a.Keys[len(dims)])
		mb, _ := strconv.Atoi(b.Keys[len(dims)])
		return ma < mb
	})
	return t
}

// SeasonalRate is Seasonal by (force, crime type) normalised per scale residents.
func SeasonalRate(ds *crime.Dataset, pop Population, scale float64, strict bool) (*Table, error) {
	t := Seasonal(ds, DimForce, DimCrimeType)
	return Rate(t, pop, RateOptions{Measure: MeasureAvgCount, Scale: scale, Strict: strict})
}
