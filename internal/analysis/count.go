package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/crimescope-cli/internal/crime"
)

// TieBreak decides the order of equally frequent values in a top-N selection.
type TieBreak string

const (
	// TieFirstSeen keeps the value that appears earliest in the dataset.
	TieFirstSeen TieBreak = "first-seen"
	// TieLexical keeps the alphabetically smaller value.
	TieLexical TieBreak = "lexical"
)

// ParseTieBreak validates a tie-break name; empty means first-seen.
func ParseTieBreak(s string) (TieBreak, error) {
	switch TieBreak(strings.ToLower(strings.TrimSpace(s))) {
	case "", TieFirstSeen:
		return TieFirstSeen, nil
	case TieLexical:
		return TieLexical, nil
	default:
		return "", fmt.Errorf("unknown tie-break %q (use first-seen|lexical)", s)
	}
}

// groupCounter tallies records per key tuple, remembering first-seen order.
type groupCounter struct {
	order  []string
	keys   map[string][]string
	counts map[string]float64
}

func newGroupCounter() *groupCounter {
	return &groupCounter{keys: map[string][]string{}, counts: map[string]float64{}}
}

func (g *groupCounter) add(keys []string, n float64) {
	k := joinKey(keys)
	if _, ok := g.keys[k]; !ok {
		g.order = append(g.order, k)
		g.keys[k] = keys
	}
	g.counts[k] += n
}

// Count returns the record frequency per combination of dims, in first-seen order.
// Counts sum to ds.Len().
func Count(ds *crime.Dataset, dims ...Dimension) *Table {
	g := newGroupCounter()
	if ds != nil {
		for _, r := range ds.Records {
			g.add(keyOf(r, dims), 1)
		}
	}
	t := &Table{
		Name:       "frequency by " + dimNames(dims),
		Dimensions: append([]Dimension(nil), dims...),
		Measures:   []string{MeasureCount},
	}
	for _, k := range g.order {
		t.Rows = append(t.Rows, Row{Keys: g.keys[k], Values: []float64{g.counts[k]}})
	}
	return t
}

func dimNames(dims []Dimension) string {
	names := make([]string, len(dims))
	for i, d := range dims {
		names[i] = string(d)
	}
	return strings.Join(names, ", ")
}

// Selection is the outcome of a per-group top-N pick.
type Selection struct {
	// Values is the union of every group's picks, most frequent overall first.
	Values []string
	// PerGroup maps a group key to its own picks in rank order.
	PerGroup map[string][]string
	// Groups lists group keys in first-seen order.
	Groups []string
}

// Contains reports whether v was picked for any group.
func (s Selection) Contains(v string) bool {
	for _, x := range s.Values {
		if x == v {
			return true
		}
	}
	return false
}

// TopNPerGroup picks, for each value of group, the n most frequent values of item
// and returns their union.
func TopNPerGroup(ds *crime.Dataset, group, item Dimension, n int, tie TieBreak) Selection {
	sel := Selection{PerGroup: map[string][]string{}}
	if ds == nil || n <= 0 {
		return sel
	}
	firstSeen := map[string]int{}
	overall := map[string]float64{}
	perGroup := map[string]map[string]float64{}
	for i, r := range ds.Records {
		gk, iv := group.Value(r), item.Value(r)
		if _, ok := firstSeen[iv]; !ok {
			firstSeen[iv] = i
		}
		m, ok := perGroup[gk]
		if !ok {
			m = map[string]float64{}
			perGroup[gk] = m
			sel.Groups = append(sel.Groups, gk)
		}
		m[iv]++
		overall[iv]++
	}

	rank := func(counts map[string]float64) []string {
		vals := make([]string, 0, len(counts))
		for v := range counts {
			vals = append(vals, v)
		}
		sort.Slice(vals, func(i, j int) bool {
			a, b := vals[i], vals[j]
			if counts[a] != counts[b] {
				return counts[a] > counts[b]
			}
			if tie == TieLexical {
				return a < b
			}
			return firstSeen[a] < firstSeen[b]
		})
		return vals
	}

	picked := map[string]float64{}
	for _, g := range sel.Groups {
		top := rank(perGroup[g])
		if len(top) > n {
			top = top[:n]
		}
		sel.PerGroup[g] = top
		for _, v := range top {
			picked[v] = overall[v]
		}
	}
	sel.Values = rank(picked)
	return sel
}

// Profile counts crimes per (crime type, force) restricted to the top n crime
// types of every force. Rows follow the selection's overall rank, then force.
func Profile(ds *crime.Dataset, n int, tie TieBreak) (*Table, Selection) {
	sel := TopNPerGroup(ds, DimForce, DimCrimeType, n, tie)
	var sub *crime.Dataset
	if ds != nil {
		sub = ds.Subset(func(r crime.Record) bool { return sel.Contains(r.CrimeType) })
	}
	t := Count(sub, DimCrimeType, DimForce)
	t.Name = fmt.Sprintf("top %d crime types per force", n)

	rankOf := map[string]int{}
	for i, v := range sel.Values {
		rankOf[v] = i
	}
	sort.SliceStable(t.Rows, func(i, j int) bool {
		a, b := t.Rows[i].Keys, t.Rows[j].Keys
		if rankOf[a[0]] != rankOf[b[0]] {
			return rankOf[a[0]] < rankOf[b[0]]
		}
		return a[1] < b[1]
	})
	return t, sel
}
