// Package analysis turns a cleaned crime dataset into small summary tables.
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Measure names produced by the aggregators.
const (
	MeasureCount        = "count"
	MeasurePopulation   = "population"
	MeasureAvgCount     = "avg_count"
	MeasureYears        = "years"
	MeasureTotal        = "total"
	MeasureUnsolved     = "unsolved"
	MeasureUnsolvedRate = "unsolved_rate"
)

// Table is a summary relation keyed by one or more dimensions with numeric measures.
type Table struct {
	Name       string
	Dimensions []Dimension
	Measures   []string
	Rows       []Row
	Warnings   []string
}

// Row holds one group's keys (aligned with Dimensions) and values (aligned with Measures).
type Row struct {
	Keys   []string
	Values []float64
}

// DimIndex returns the position of d, or -1.
func (t *Table) DimIndex(d Dimension) int {
	for i, x := range t.Dimensions {
		if x == d {
			return i
		}
	}
	return -1
}

// MeasureIndex returns the position of the named measure, or -1.
func (t *Table) MeasureIndex(name string) int {
	for i, m := range t.Measures {
		if m == name {
			return i
		}
	}
	return -1
}

// Column returns every row's value for a measure.
func (t *Table) Column(measure string) []float64 {
	idx := t.MeasureIndex(measure)
	if idx < 0 {
		return nil
	}
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Values[idx]
	}
	return out
}

// Total sums a measure over all rows.
func (t *Table) Total(measure string) float64 {
	var sum float64
	for _, v := range t.Column(measure) {
		sum += v
	}
	return sum
}

// Lookup returns the measure value for the row with exactly these keys.
func (t *Table) Lookup(measure string, keys ...string) (float64, bool) {
	idx := t.MeasureIndex(measure)
	if idx < 0 {
		return 0, false
	}
	want := joinKey(keys)
	for _, r := range t.Rows {
		if joinKey(r.Keys) == want {
			return r.Values[idx], true
		}
	}
	return 0, false
}

// Distinct returns the values of a dimension in row order, without repeats.
func (t *Table) Distinct(d Dimension) []string {
	idx := t.DimIndex(d)
	if idx < 0 {
		return nil
	}
	var out []string
	seen := map[string]bool{}
	for _, r := range t.Rows {
		if !seen[r.Keys[idx]] {
			seen[r.Keys[idx]] = true
			out = append(out, r.Keys[idx])
		}
	}
	return out
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := &Table{
		Name:       t.Name,
		Dimensions: append([]Dimension(nil), t.Dimensions...),
		Measures:   append([]string(nil), t.Measures...),
		Warnings:   append([]string(nil), t.Warnings...),
		Rows:       make([]Row, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = Row{Keys: append([]string(nil), r.Keys...), Values: append([]float64(nil), r.Values...)}
	}
	return out
}

// Where returns a copy holding only rows whose dimension value is in values.
func (t *Table) Where(d Dimension, values ...string) *Table {
	out := t.Clone()
	idx := t.DimIndex(d)
	if idx < 0 {
		return out
	}
	keep := map[string]bool{}
	for _, v := range values {
		keep[v] = true
	}
	rows := out.Rows[:0]
	for _, r := range out.Rows {
		if keep[r.Keys[idx]] {
			rows = append(rows, r)
		}
	}
	out.Rows = rows
	return out
}

// Head returns a copy limited to the first n rows; n <= 0 keeps all.
func (t *Table) Head(n int) *Table {
	out := t.Clone()
	if n > 0 && len(out.Rows) > n {
		out.Rows = out.Rows[:n]
	}
	return out
}

// SortBy orders rows by a measure; equal values fall back to key order.
func (t *Table) SortBy(measure string, desc bool) {
	idx := t.MeasureIndex(measure)
	if idx < 0 {
		return
	}
	sort.SliceStable(t.Rows, func(i, j int) bool {
		a, b := t.Rows[i].Values[idx], t.Rows[j].Values[idx]
		if a == b {
			return lessKeys(t.Rows[i].Keys, t.Rows[j].Keys)
		}
		if desc {
			return a > b
		}
		return a < b
	})
}

// SortByKeys orders rows by their keys, numerically where both keys are integers.
func (t *Table) SortByKeys() {
	sort.SliceStable(t.Rows, func(i, j int) bool { return lessKeys(t.Rows[i].Keys, t.Rows[j].Keys) })
}

func sortRows(rows []Row, less func(a, b Row) bool) {
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
}

func lessKeys(a, b []string) bool {
	for k := 0; k < len(a) && k < len(b); k++ {
		if a[k] == b[k] {
			continue
		}
		ai, errA := strconv.Atoi(a[k])
		bi, errB := strconv.Atoi(b[k])
		if errA == nil && errB == nil {
			return ai < bi
		}
		return a[k] < b[k]
	}
	return len(a) < len(b)
}

// Header returns dimension labels followed by measure names.
func (t *Table) Header() []string {
	h := make([]string, 0, len(t.Dimensions)+len(t.Measures))
	for _, d := range t.Dimensions {
		h = append(h, d.Label())
	}
	return append(h, t.Measures...)
}

// Strings formats every row as text cells aligned with Header.
func (t *Table) Strings() [][]string {
	out := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		cells := append([]string(nil), r.Keys...)
		for _, v := range r.Values {
			cells = append(cells, FormatValue(v))
		}
		out[i] = cells
	}
	return out
}

// FormatValue prints integers without decimals and other values with up to four.
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// Markdown renders the table as a compact report.
func (t *Table) Markdown() string {
	var b strings.Builder
	b.WriteString("[SUMMARY TABLE]\n")
	if t.Name != "" {
		b.WriteString(fmt.Sprintf("Table: %s\n", t.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n\n", len(t.Rows)))

	header := t.Header()
	b.WriteString("| ")
	b.WriteString(strings.Join(mapStrings(header, safeVal), " | "))
	b.WriteString(" |\n|")
	for range header {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, row := range t.Strings() {
		b.WriteString("| ")
		b.WriteString(strings.Join(mapStrings(row, safeVal), " | "))
		b.WriteString(" |\n")
	}
	if len(t.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range t.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func mapStrings(in []string, f func(string) string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = f(s)
	}
	return out
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
